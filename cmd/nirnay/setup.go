package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/shaswatnaman/Nirnay-112/internal/audit"
	"github.com/shaswatnaman/Nirnay-112/internal/config"
	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/engine"
	"github.com/shaswatnaman/Nirnay-112/internal/intent"
	"github.com/shaswatnaman/Nirnay-112/internal/session"
	"github.com/shaswatnaman/Nirnay-112/internal/storage/sqlite"
	"github.com/shaswatnaman/Nirnay-112/internal/transport/ws"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
	"github.com/shaswatnaman/Nirnay-112/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	engineCfg := config.NewEngineConfig(ctx)

	// 2. Audit sink: sqlite when persistence is enabled, bounded memory
	// otherwise
	sink, cleanup := initAudit(ctx, appCfg, engineCfg)
	if cleanup != nil {
		services = append(services, srv.NewCleanup(cleanup))
	}

	// 3. Intent classifier
	classifier := intent.New()

	// 4. Session store; every session shares the classifier and the sink
	store := session.NewStore(func(sessionID string) *engine.Session {
		sess := engine.NewSession(sessionID, core.SystemClock(), classifier, sink)
		sess.Memory().SetDecayRate(engineCfg.DecayRatePerMinute)
		return sess
	})

	// 5. Transports
	if appCfg.EnableWebSocket {
		serverCfg := config.NewServerConfig(ctx)
		services = append(services, ws.NewServer(ctx, serverCfg, store))
	}

	return services
}

func initAudit(ctx context.Context, appCfg *config.AppConfig, engineCfg *config.EngineConfig) (core.EventSink, func() error) {
	logger := log.FromCtx(ctx)

	if appCfg.EnableSQLiteAudit {
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize audit storage")
		}
		logger.Info().Str("path", appCfg.GetDatabasePath()).Msg("audit events persisted to sqlite")
		return sqlite.NewEventsRepo(db), db.Close
	}

	return audit.NewLog(engineCfg.AuditEventLimit), nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
