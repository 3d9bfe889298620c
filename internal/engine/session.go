package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/intent"
	"github.com/shaswatnaman/Nirnay-112/internal/nlp"
	"github.com/shaswatnaman/Nirnay-112/internal/stress"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
)

// uncertainIntentThreshold: classifier output below this is demoted to
// "uncertain" and never stored for continuity.
const uncertainIntentThreshold = 0.6

// classifierLabelToIntent maps the local classifier's label set onto the
// canonical intent vocabulary the scoring and merge layers speak.
var classifierLabelToIntent = map[string]string{
	intent.LabelFire:            "fire",
	intent.LabelMedical:         "medical_emergency",
	intent.LabelCrime:           "crime",
	intent.LabelAccident:        "road_accident",
	intent.LabelNaturalDisaster: "natural_disaster",
	intent.LabelOther:           core.IntentNonEmergency,
}

// Session orchestrates the decision pipeline for one caller: perception
// fusion, context merge, urgency scoring, escalation and prompt selection.
// All methods are safe for concurrent use; utterances for one session are
// processed strictly in order.
type Session struct {
	mu sync.Mutex

	sessionID  string
	clock      core.Clock
	memory     *Memory
	classifier core.IntentClassifier
	sink       core.EventSink

	createdAt   time.Time
	lastUpdated time.Time

	questionCount int
	lastPrompt    string
	inputBuffer   string

	escalationRequired bool
	escalationReason   string
	escalationPriority core.UrgencyLevel
	escalationAckSent  bool

	lastIntent           string
	lastIntentConfidence float64
}

// NewSession builds a session around fresh context memory. A nil sink
// disables audit events, a nil classifier forces the fallback intent path.
func NewSession(sessionID string, clock core.Clock, classifier core.IntentClassifier, sink core.EventSink) *Session {
	if sink == nil {
		sink = core.NopSink{}
	}
	now := clock.Now()
	return &Session{
		sessionID:   sessionID,
		clock:       clock,
		memory:      NewMemory(sessionID, clock),
		classifier:  classifier,
		sink:        sink,
		createdAt:   now,
		lastUpdated: now,
	}
}

func (s *Session) ID() string { return s.sessionID }

// Memory exposes the context for configuration (decay rate overrides).
func (s *Session) Memory() *Memory { return s.memory }

// Process runs one utterance through the full pipeline and returns the
// decision bundle. An empty transcript returns the current state without
// mutating anything.
func (s *Session) Process(ctx context.Context, signals core.SignalBundle) core.DecisionBundle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isBlank(signals.Transcript) {
		return s.currentState()
	}

	logger := log.FromCtx(ctx)
	s.record(ctx, core.EventTranscriptionReceived, map[string]interface{}{
		"transcript": signals.Transcript,
		"clarity":    signals.Clarity,
	})

	// local extraction fills gaps in the supplied entities and competes on
	// confidence where both observed the same field
	s.fuseLocalEntities(&signals)

	// local intent classification with cross-turn continuity
	s.fuseIntent(ctx, &signals)

	result := s.memory.UpdateFromSignals(ctx, signals)
	if result.RolledBack {
		s.record(ctx, core.EventRollbackOccurred, map[string]interface{}{
			"reason": result.RollbackReason,
		})
	} else if len(result.UpdatedFields) > 0 {
		s.record(ctx, core.EventContextUpdated, map[string]interface{}{
			"fields": result.UpdatedFields,
		})
	}

	s.inputBuffer = joinBuffer(s.inputBuffer, signals.Transcript)

	elapsed := s.clock.Now().Sub(s.createdAt).Seconds()
	stressResult := stress.Estimate(stress.Input{
		Transcript:          signals.Transcript,
		RepetitionCount:     s.memory.RepetitionCount(),
		TimeElapsedSeconds:  elapsed,
		HasTimeElapsed:      true,
		PreviousTranscripts: s.memory.RecentTranscripts(5),
	})

	urgency := ScoreUrgency(UrgencyInput{
		Intent:             signals.Intent,
		StressScore:        stressResult.Score,
		RepetitionCount:    s.memory.RepetitionCount(),
		ClarityAvg:         s.memory.ClarityAvg(),
		TimeElapsedSeconds: elapsed,
		Transcript:         signals.Transcript,
	})
	s.memory.SetUrgency(urgency.Score, urgency.Level)

	var escalation core.Escalation
	if s.escalationAckSent {
		// the decision is sticky once acknowledged; no re-evaluation
		escalation = core.Escalation{
			Required: true,
			Reason:   s.escalationReason,
			Priority: s.escalationPriority,
		}
	} else {
		escalation = CheckEscalation(EscalationInput{
			UrgencyScore:         urgency.Score,
			UrgencyLevel:         urgency.Level,
			ClarityAvg:           s.memory.ClarityAvg(),
			EmotionHistory:       s.memory.RecentEmotions(5),
			MissingFields:        s.memory.MissingFields(),
			QuestionCount:        s.questionCount,
			ExplicitHumanRequest: DetectExplicitHumanRequest(signals.Transcript),
			ImmediateDanger:      s.memory.ImmediateDanger(),
		})
		s.escalationRequired = escalation.Required
		s.escalationReason = escalation.Reason
		s.escalationPriority = escalation.Priority
		if escalation.Required {
			logger.Warn().
				Str("session_id", s.sessionID).
				Str("reason", escalation.Reason).
				Str("priority", string(escalation.Priority)).
				Msg("escalation triggered")
			s.record(ctx, core.EventEscalationTriggered, map[string]interface{}{
				"reason":        escalation.Reason,
				"priority":      string(escalation.Priority),
				"urgency_score": urgency.Score,
			})
		}
	}

	explanation := Explain(s.memory, urgency.Score, escalation)

	promptKey, prompt := s.nextPrompt()
	if isBlank(prompt) {
		// conversational flow must never stall on an empty prompt
		logger.Warn().Str("session_id", s.sessionID).Msg("prompt generation returned empty, using fallback")
		promptKey, prompt = PromptGeneric, genericFallbackPrompt
		s.lastPrompt = prompt
	}

	s.lastUpdated = s.clock.Now()

	return core.DecisionBundle{
		Context:       s.memory.View(),
		Urgency:       urgency,
		Escalation:    escalation,
		Explanation:   explanation,
		NextPromptKey: promptKey,
		NextPrompt:    prompt,
	}
}

// Greet returns the opening prompt without consuming an utterance.
func (s *Session) Greet() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPrompt()
}

// localEvidenceFloor keeps weak heuristic extractions (first-word names,
// bare prepositions) away from the contradiction-sensitive merge. Only
// extractions backed by an explicit indicator, a known place or an incident
// pattern clear it.
const localEvidenceFloor = 0.7

func (s *Session) fuseLocalEntities(signals *core.SignalBundle) {
	local := nlp.ExtractEntities(signals.Transcript)
	signals.Entities.Name = pickObservation(signals.Entities.Name, strongObservation(local.Name))
	signals.Entities.Location = pickObservation(signals.Entities.Location, strongObservation(local.Location))
	signals.Entities.Incident = pickObservation(signals.Entities.Incident, strongObservation(local.IncidentType))

	if signals.Entities.ImmediateDanger == nil && nlp.DetectImmediateDanger(signals.Transcript) {
		signals.Entities.ImmediateDanger = &core.Observation{
			Value:      "true",
			Confidence: core.DefaultObservationConfidence,
			Source:     core.SourceLocalNLP,
		}
	}
}

func (s *Session) fuseIntent(ctx context.Context, signals *core.SignalBundle) {
	logger := log.FromCtx(ctx)

	var prediction core.IntentResult
	if s.classifier != nil {
		prediction = s.classifier.Predict(signals.Transcript)
	} else {
		prediction = core.IntentResult{Status: core.IntentUnavailable}
	}

	if prediction.Status != core.IntentOK {
		if prediction.Err != nil {
			logger.Error().Err(prediction.Err).Str("session_id", s.sessionID).Msg("intent classifier failed")
			s.record(ctx, core.EventPerceptionFailure, map[string]interface{}{
				"component": "intent_classifier",
				"error":     prediction.Err.Error(),
			})
		} else {
			logger.Warn().Str("session_id", s.sessionID).Msg("intent classifier unavailable, using fallback")
		}
		if signals.Intent == "" {
			signals.Intent = core.IntentUnclear
		}
		signals.IntentConfidence = 0
		signals.IntentSource = core.SourceFallback
		return
	}

	label := classifierLabelToIntent[prediction.Label]
	if label == "" {
		label = core.IntentUnclear
	}
	confidence := prediction.Confidence

	// continuity: a previously established intent with higher confidence
	// wins over this turn's weaker prediction
	if s.lastIntent != "" && s.lastIntent != core.IntentUnclear && s.lastIntent != core.IntentUncertain {
		if s.lastIntentConfidence > confidence {
			label = s.lastIntent
			confidence = s.lastIntentConfidence
		}
	}

	if confidence < uncertainIntentThreshold {
		label = core.IntentUncertain
	}

	signals.Intent = label
	signals.IntentConfidence = confidence
	signals.IntentSource = core.SourceLocalML

	if label != core.IntentUncertain {
		s.lastIntent = label
		s.lastIntentConfidence = confidence
	}
}

func (s *Session) nextPrompt() (string, string) {
	if !s.escalationAckSent && s.escalationRequired {
		s.escalationAckSent = true
		s.lastPrompt = escalationAckPrompt
		return PromptEscalationAck, escalationAckPrompt
	}

	s.questionCount++

	if s.questionCount == 1 && s.lastPrompt == "" {
		s.lastPrompt = greetingPrompt
		return PromptGreeting, greetingPrompt
	}

	missing := map[string]bool{}
	for _, f := range s.memory.MissingFields() {
		missing[f] = true
	}

	if missing["location"] {
		p := rotatePrompt(locationPrompts, s.questionCount-2, s.lastPrompt)
		s.lastPrompt = p
		return PromptAskLocation, p
	}

	if missing["incident_type"] {
		p := rotatePrompt(incidentPrompts, s.questionCount-2, s.lastPrompt)
		s.lastPrompt = p
		return PromptAskIncident, p
	}

	if s.memory.PeopleAffected() == nil && wantsPeopleCount(s.memory.IncidentType()) {
		p := rotatePrompt(peoplePrompts, s.questionCount-2, s.lastPrompt)
		s.lastPrompt = p
		return PromptAskPeople, p
	}

	if s.memory.CallerName() == "" && s.questionCount > 2 {
		p := rotatePrompt(namePrompts, s.questionCount-3, s.lastPrompt)
		s.lastPrompt = p
		return PromptAskName, p
	}

	if len(s.memory.MissingFields()) == 0 {
		p := rotatePrompt(followUpPrompts, s.questionCount-2, s.lastPrompt)
		s.lastPrompt = p
		return PromptFollowUp, p
	}

	p := rotatePrompt(genericPrompts, s.questionCount-1, s.lastPrompt)
	s.lastPrompt = p
	return PromptGeneric, p
}

func (s *Session) currentState() core.DecisionBundle {
	elapsed := s.clock.Now().Sub(s.createdAt).Seconds()

	stressResult := stress.Estimate(stress.Input{
		Transcript:          "",
		RepetitionCount:     s.memory.RepetitionCount(),
		TimeElapsedSeconds:  elapsed,
		HasTimeElapsed:      true,
		PreviousTranscripts: s.memory.RecentTranscripts(5),
	})

	urgency := ScoreUrgency(UrgencyInput{
		Intent:             core.IntentUnclear,
		StressScore:        stressResult.Score,
		RepetitionCount:    s.memory.RepetitionCount(),
		ClarityAvg:         s.memory.ClarityAvg(),
		TimeElapsedSeconds: elapsed,
	})

	return core.DecisionBundle{
		Context: s.memory.View(),
		Urgency: urgency,
		Escalation: core.Escalation{
			Required: s.escalationRequired,
			Reason:   s.escalationReason,
			Priority: s.escalationPriority,
		},
		Explanation: Explain(s.memory, urgency.Score, core.Escalation{
			Required: s.escalationRequired,
			Reason:   s.escalationReason,
			Priority: s.escalationPriority,
		}),
	}
}

// IncidentSummary is the structured hand-off document for dispatchers.
type IncidentSummary struct {
	Incident struct {
		IncidentType    string  `json:"incident_type"`
		Location        string  `json:"location"`
		Urgency         string  `json:"urgency"`
		UrgencyScore    float64 `json:"urgency_score"`
		Name            string  `json:"name,omitempty"`
		PeopleAffected  *int    `json:"people_affected"`
		ImmediateDanger bool    `json:"immediate_danger"`
		HumanRequired   bool    `json:"human_required"`
	} `json:"incident"`
	MissingFields            []string           `json:"missing_fields"`
	MissingOperationalFields []string           `json:"missing_operational_fields"`
	Confidence               map[string]float64 `json:"confidence"`
	Signals                  struct {
		Emotion         core.Emotion `json:"emotion"`
		ClarityAvg      float64      `json:"clarity_avg"`
		Language        string       `json:"language"`
		RepetitionCount int          `json:"repetition_count"`
	} `json:"signals"`
}

// Summary builds the incident hand-off document. Urgency is recomputed from
// the accumulated input when it was never derived, or when a known incident
// is still sitting at the medium default.
func (s *Session) Summary(ctx context.Context) IncidentSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	score := s.memory.UrgencyScore()
	level := s.memory.UrgencyLevel()

	staleMedium := level == core.UrgencyMedium &&
		s.memory.IncidentType() != "" && s.memory.IncidentType() != core.CategoryUnknown
	if score == 0 || staleMedium {
		elapsed := s.clock.Now().Sub(s.createdAt).Seconds()
		summaryIntent := core.IntentUnclear
		if cat := s.memory.IncidentType(); cat != "" && cat != core.CategoryUnknown {
			summaryIntent = string(cat)
		}
		stressResult := stress.Estimate(stress.Input{
			Transcript:          s.inputBuffer,
			RepetitionCount:     s.memory.RepetitionCount(),
			TimeElapsedSeconds:  elapsed,
			HasTimeElapsed:      true,
			PreviousTranscripts: s.memory.RecentTranscripts(5),
		})
		urgency := ScoreUrgency(UrgencyInput{
			Intent:             summaryIntent,
			StressScore:        stressResult.Score,
			RepetitionCount:    s.memory.RepetitionCount(),
			ClarityAvg:         s.memory.ClarityAvg(),
			TimeElapsedSeconds: elapsed,
			Transcript:         s.inputBuffer,
		})
		s.memory.SetUrgency(urgency.Score, urgency.Level)
		score, level = urgency.Score, urgency.Level
	}

	view := s.memory.View()

	var out IncidentSummary
	out.Incident.IncidentType = string(s.memory.IncidentType())
	out.Incident.Location = s.memory.Location()
	out.Incident.Urgency = string(level)
	out.Incident.UrgencyScore = score
	out.Incident.Name = s.memory.CallerName()
	out.Incident.PeopleAffected = s.memory.PeopleAffected()
	out.Incident.ImmediateDanger = s.memory.ImmediateDanger()
	out.Incident.HumanRequired = s.escalationRequired
	out.MissingFields = s.memory.MissingFields()
	out.MissingOperationalFields = s.memory.MissingOperationalFields()
	out.Confidence = map[string]float64{
		"name":             view.CallerName.Confidence,
		"location":         view.Location.Confidence,
		"incident_type":    view.IncidentType.Confidence,
		"people_affected":  view.PeopleAffected.Confidence,
		"immediate_danger": view.ImmediateDanger.Confidence,
	}
	out.Signals.Emotion = s.memory.DominantEmotion()
	out.Signals.ClarityAvg = s.memory.ClarityAvg()
	out.Signals.Language = s.memory.Language()
	out.Signals.RepetitionCount = s.memory.RepetitionCount()
	return out
}

func (s *Session) record(ctx context.Context, eventType string, payload map[string]interface{}) {
	s.sink.Record(ctx, core.Event{
		Timestamp: s.clock.Now(),
		Type:      eventType,
		SessionID: s.sessionID,
		Payload:   payload,
	})
}

func strongObservation(obs *core.Observation) *core.Observation {
	if obs == nil || obs.Confidence < localEvidenceFloor {
		return nil
	}
	return obs
}

// pickObservation keeps the higher-confidence observation when both the
// perception layer and the local extractor saw the same field.
func pickObservation(supplied, local *core.Observation) *core.Observation {
	if supplied == nil || supplied.Value == "" {
		return local
	}
	if local == nil || local.Value == "" {
		return supplied
	}
	suppliedConf, _ := observationMeta(supplied)
	localConf, _ := observationMeta(local)
	if localConf > suppliedConf {
		return local
	}
	return supplied
}

func wantsPeopleCount(cat core.Category) bool {
	switch cat {
	case core.CategoryRoadAccident, core.CategoryFire, core.CategoryNaturalDisaster:
		return true
	}
	return false
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func joinBuffer(buffer, transcript string) string {
	if buffer == "" {
		return transcript
	}
	return buffer + " " + transcript
}
