package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
)

// EngineConfig tunes the decision engine. Scoring weights and escalation
// thresholds are fixed in the engine itself; only operational knobs live
// here.
type EngineConfig struct {
	// Confidence decay per minute applied to stored fields.
	DecayRatePerMinute float64 `env:"ENGINE_DECAY_RATE_PER_MINUTE" envDefault:"0.05"`

	// Audit events kept in memory per session.
	AuditEventLimit int `env:"ENGINE_AUDIT_EVENT_LIMIT" envDefault:"1000"`
}

func NewEngineConfig(ctx context.Context) *EngineConfig {
	c := &EngineConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Engine config")
	}
	return c
}
