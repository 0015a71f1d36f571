package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.JWT.Secret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 characters")
	}

	if c.DB.Enabled() && c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required when DB_HOST is set")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Enabled() && (c.DB.Port < 1 || c.DB.Port > 65535) {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Enabled() && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	switch c.Engine.Ledger {
	case "memory":
	case "redis":
		if !c.Redis.Enabled() {
			errs = append(errs, "ENGINE_LEDGER=redis requires REDIS_HOST")
		}
	default:
		errs = append(errs, fmt.Sprintf("ENGINE_LEDGER must be memory or redis, got %q", c.Engine.Ledger))
	}

	positive := []struct {
		name string
		ok   bool
	}{
		{"ENGINE_COOLDOWN_*", c.Engine.CooldownLow > 0 && c.Engine.CooldownMedium > 0 && c.Engine.CooldownCritical > 0},
		{"ENGINE_DISPLAY_*", c.Engine.DisplayLow > 0 && c.Engine.DisplayMedium > 0 && c.Engine.DisplayCritical > 0},
		{"ENGINE_DECAY_INTERVAL", c.Engine.DecayInterval > 0},
		{"ENGINE_ENGAGED_THRESHOLD", c.Engine.EngagedThreshold > 0},
		{"REASONING_TIMEOUT", c.Reasoning.Timeout > 0},
		{"CONTEXT_MAX_RECORDS", c.Context.MaxRecords > 0},
		{"CONTEXT_TTL", c.Context.TTL > 0},
		{"SESSION_IDLE_TIMEOUT", c.Session.IdleTimeout > 0},
		{"RATELIMIT_REQUESTS", c.RateLimit.Requests > 0 && c.RateLimit.Window > 0},
	}
	for _, p := range positive {
		if !p.ok {
			errs = append(errs, p.name+" must be positive")
		}
	}
	if c.Engine.MaxScore < c.Engine.EngagedThreshold {
		errs = append(errs, "ENGINE_MAX_SCORE must not be below ENGINE_ENGAGED_THRESHOLD")
	}
	if c.Engine.SuggestionFloor < 0 || c.Engine.SuggestionFloor > 1 {
		errs = append(errs, fmt.Sprintf("ENGINE_SUGGESTION_FLOOR must be within 0-1, got %g", c.Engine.SuggestionFloor))
	}

	// Optional integrations: warn only
	if !c.Reasoning.Enabled() {
		slog.Warn("config: REASONING_URL is empty, chat replies use the local fallback")
	}
	if !c.Redis.Enabled() {
		slog.Warn("config: REDIS_HOST is empty, conversation context is kept in memory")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
