package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"NIRNAY_RUNTIME_PATH" envDefault:".nirnay"`

	// Transport Flags
	EnableWebSocket bool `env:"ENABLE_WEBSOCKET" envDefault:"true"`

	// Audit Persistence
	EnableSQLiteAudit bool `env:"ENABLE_SQLITE_AUDIT" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "nirnay.db")
}
