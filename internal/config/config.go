package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	JWT       JWTConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Engine    EngineConfig
	Reasoning ReasoningConfig
	Context   ContextConfig
	Session   SessionConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig points at the profile draft database. An empty Host disables
// snapshot seeding.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) Enabled() bool { return c.Host != "" }

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig is optional. Without it the context store and the cooldown
// ledger stay in memory.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL          string
	EventsMaxAge time.Duration
}

func (c NATSConfig) Enabled() bool { return c.URL != "" }

// JWTConfig holds the secret shared with the hosted auth provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type EngineConfig struct {
	CooldownLow      time.Duration
	CooldownMedium   time.Duration
	CooldownCritical time.Duration
	DisplayLow       time.Duration
	DisplayMedium    time.Duration
	DisplayCritical  time.Duration
	DecayInterval    time.Duration
	EngagedThreshold int
	MaxScore         int
	NudgeDelay       time.Duration
	StepHelpDelay    time.Duration
	SuggestionFloor  float64
	// Ledger is "memory" or "redis".
	Ledger string
}

type ReasoningConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func (c ReasoningConfig) Enabled() bool { return c.URL != "" }

type ContextConfig struct {
	MaxRecords int
	TTL        time.Duration
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path as a dotenv file (a missing file is ignored), then
// lets the environment override it.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	_ = k.Load(file.Provider(path), dotenv.ParserEnv("", ".", envKey))

	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	return fromKoanf(k)
}

func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		JWT: JWTConfig{
			Secret: k.String("jwt.secret"),
			Issuer: k.String("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		RateLimit: RateLimitConfig{
			Requests: k.Int("ratelimit.requests"),
		},
		Engine: EngineConfig{
			EngagedThreshold: k.Int("engine.engaged.threshold"),
			MaxScore:         k.Int("engine.max.score"),
			SuggestionFloor:  k.Float64("engine.suggestion.floor"),
			Ledger:           k.String("engine.ledger"),
		},
		Reasoning: ReasoningConfig{
			URL:    k.String("reasoning.url"),
			APIKey: k.String("reasoning.api.key"),
		},
		Context: ContextConfig{
			MaxRecords: k.Int("context.max.records"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "profilejo"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "profilejo"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 120
	}
	if cfg.Engine.EngagedThreshold == 0 {
		cfg.Engine.EngagedThreshold = 10
	}
	if cfg.Engine.MaxScore == 0 {
		cfg.Engine.MaxScore = 20
	}
	if cfg.Engine.SuggestionFloor == 0 {
		cfg.Engine.SuggestionFloor = 0.5
	}
	if cfg.Engine.Ledger == "" {
		cfg.Engine.Ledger = "memory"
	}
	if cfg.Context.MaxRecords == 0 {
		cfg.Context.MaxRecords = 20
	}

	// Parse durations
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"server.shutdown.timeout", "15s", &cfg.Server.ShutdownTimeout},
		{"nats.events.max.age", "168h", &cfg.NATS.EventsMaxAge},
		{"ratelimit.window", "1m", &cfg.RateLimit.Window},
		{"engine.cooldown.low", "60s", &cfg.Engine.CooldownLow},
		{"engine.cooldown.medium", "30s", &cfg.Engine.CooldownMedium},
		{"engine.cooldown.critical", "15s", &cfg.Engine.CooldownCritical},
		{"engine.display.low", "4s", &cfg.Engine.DisplayLow},
		{"engine.display.medium", "6s", &cfg.Engine.DisplayMedium},
		{"engine.display.critical", "8s", &cfg.Engine.DisplayCritical},
		{"engine.decay.interval", "30s", &cfg.Engine.DecayInterval},
		{"engine.nudge.delay", "3s", &cfg.Engine.NudgeDelay},
		{"engine.step.help.delay", "2s", &cfg.Engine.StepHelpDelay},
		{"reasoning.timeout", "10s", &cfg.Reasoning.Timeout},
		{"context.ttl", "720h", &cfg.Context.TTL},
		{"session.idle.timeout", "30m", &cfg.Session.IdleTimeout},
		{"session.sweep.interval", "1m", &cfg.Session.SweepInterval},
	}
	for _, d := range durations {
		s := k.String(d.key)
		if s == "" {
			s = d.def
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
