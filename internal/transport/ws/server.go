// Package ws exposes the call stream: one websocket connection per caller,
// utterance frames in, decision bundles out.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shaswatnaman/Nirnay-112/internal/config"
	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/engine"
	"github.com/shaswatnaman/Nirnay-112/internal/session"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
)

// Inbound frame types.
const (
	frameStart     = "start"
	frameUtterance = "utterance"
	frameSummary   = "summary"
	frameEnd       = "end"
)

type inboundFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`

	// utterance payload; Signals carries the full perception bundle,
	// Transcript alone is accepted for transcript-only clients
	Transcript string             `json:"transcript,omitempty"`
	Signals    *core.SignalBundle `json:"signals,omitempty"`

	// Clarity is a pointer so an omitted value is distinguishable from an
	// explicit 0.0 (a perception failure)
	Clarity *float64 `json:"clarity,omitempty"`
}

type outboundFrame struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"session_id,omitempty"`
	Greeting  string                  `json:"greeting,omitempty"`
	Decision  *core.DecisionBundle    `json:"decision,omitempty"`
	Summary   *engine.IncidentSummary `json:"summary,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

type Server struct {
	cfg     *config.ServerConfig
	store   *session.Store
	baseCtx context.Context

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(ctx context.Context, cfg *config.ServerConfig, store *session.Store) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		baseCtx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// callers connect from dispatch frontends on other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/call", s.handleCall)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.ListenAddr).Msg("websocket server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	log.FromCtx(ctx).Info().Msg("websocket server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	ctx := s.baseCtx
	logger := log.FromCtx(ctx)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// the first frame may name the session; anything else starts a fresh one
	sessionID, first := s.initSession(conn)
	sess := s.store.GetOrCreate(sessionID)
	defer s.store.Remove(sessionID)

	sessionLogger := logger.With().Str("session_id", sessionID).Logger()
	ctx = sessionLogger.WithContext(ctx)

	_, greeting := sess.Greet()
	s.send(ctx, conn, outboundFrame{
		Type:      "session_initialized",
		SessionID: sessionID,
		Greeting:  greeting,
	})

	if first != nil && first.Type == frameUtterance {
		if !s.handleFrame(ctx, conn, sess, *first) {
			return
		}
	}

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sessionLogger.Warn().Err(err).Msg("connection dropped")
			}
			return
		}
		if !s.handleFrame(ctx, conn, sess, frame) {
			return
		}
	}
}

// initSession reads the first frame. A start frame (or an utterance frame
// naming a session) binds the connection to that id; otherwise a fresh uuid
// is assigned and the frame is replayed into the normal loop.
func (s *Server) initSession(conn *websocket.Conn) (string, *inboundFrame) {
	var frame inboundFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return uuid.NewString(), nil
	}
	sessionID := frame.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if frame.Type == frameStart {
		return sessionID, nil
	}
	return sessionID, &frame
}

// handleFrame processes one inbound frame. It returns false when the
// connection should close.
func (s *Server) handleFrame(ctx context.Context, conn *websocket.Conn, sess *engine.Session, frame inboundFrame) bool {
	switch frame.Type {
	case frameUtterance:
		bundle := sess.Process(ctx, s.buildSignals(frame))
		s.send(ctx, conn, outboundFrame{
			Type:      "decision",
			SessionID: sess.ID(),
			Decision:  &bundle,
		})
		return true

	case frameSummary:
		summary := sess.Summary(ctx)
		s.send(ctx, conn, outboundFrame{
			Type:      "summary",
			SessionID: sess.ID(),
			Summary:   &summary,
		})
		return true

	case frameEnd:
		summary := sess.Summary(ctx)
		s.send(ctx, conn, outboundFrame{
			Type:      "call_ended",
			SessionID: sess.ID(),
			Summary:   &summary,
		})
		return false

	default:
		s.send(ctx, conn, outboundFrame{
			Type:    "error",
			Message: "unknown frame type: " + frame.Type,
		})
		return true
	}
}

func (s *Server) buildSignals(frame inboundFrame) core.SignalBundle {
	if frame.Signals != nil {
		signals := *frame.Signals
		if signals.Transcript == "" {
			signals.Transcript = frame.Transcript
		}
		return signals
	}

	// transcript-only client: full clarity unless stated otherwise
	clarity := 1.0
	if frame.Clarity != nil {
		clarity = *frame.Clarity
	}
	return core.SignalBundle{
		Transcript: frame.Transcript,
		Clarity:    clarity,
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, frame outboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("frame_type", frame.Type).Msg("failed to marshal frame")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("frame_type", frame.Type).Msg("failed to write frame")
	}
}
