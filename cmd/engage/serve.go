package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/profilejoteam/profilejo-website-sub000/internal/api"
	"github.com/profilejoteam/profilejo-website-sub000/internal/auth"
	"github.com/profilejoteam/profilejo-website-sub000/internal/config"
	"github.com/profilejoteam/profilejo-website-sub000/internal/database"
	"github.com/profilejoteam/profilejo-website-sub000/internal/engagement"
	"github.com/profilejoteam/profilejo-website-sub000/internal/events"
	mw "github.com/profilejoteam/profilejo-website-sub000/internal/middleware"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
	iredis "github.com/profilejoteam/profilejo-website-sub000/internal/redis"
	"github.com/profilejoteam/profilejo-website-sub000/internal/scheduler"
	"github.com/profilejoteam/profilejo-website-sub000/internal/server"
	"github.com/profilejoteam/profilejo-website-sub000/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engagement HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	checks := []api.HealthCheck{{Name: "database"}, {Name: "redis"}, {Name: "nats"}}

	// PostgreSQL (optional: seeds sessions from saved drafts)
	var drafts profile.Repository
	if cfg.DB.Enabled() {
		pool, err := database.NewPostgresPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		drafts = profile.NewPostgresRepository(pool)
		checks[0].Check = database.HealthCheck(pool)
	}

	// Redis (optional: context store, cooldown ledger, rate limiter)
	rdb, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	var limiter func(http.Handler) http.Handler
	opts := session.Options{
		Engine:            engagementConfig(cfg.Engine),
		IdleTimeout:       cfg.Session.IdleTimeout,
		ContextMaxRecords: cfg.Context.MaxRecords,
		ContextTTL:        cfg.Context.TTL,
		Drafts:            drafts,
		Logger:            slog.Default(),
	}
	if rdb != nil {
		defer rdb.Close()
		opts.Redis = rdb
		opts.RedisLedger = cfg.Engine.Ledger == "redis"
		limiter = mw.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window).Middleware
		checks[1].Check = iredis.HealthCheck(rdb)
	}

	// NATS (optional: engagement event stream)
	if cfg.NATS.Enabled() {
		nc, err := events.NewClient(ctx, cfg.NATS)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer nc.Close()
		opts.Publisher = events.NewPublisher(nc.JetStream())
		checks[2].Check = func(context.Context) error {
			if !nc.Healthy() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	// Remote reasoning (optional: without it every reply is the local fallback)
	if cfg.Reasoning.Enabled() {
		opts.Reasoner = reasoning.NewClient(cfg.Reasoning.URL, cfg.Reasoning.APIKey, cfg.Reasoning.Timeout)
	}

	reg := session.NewRegistry(opts)
	defer reg.Close()

	h := session.NewHandler(reg)
	verifier := auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter:        limiter,
		HealthChecks:       checks,
	}, api.HandlerSet{
		CreateSession:     h.Create,
		DeleteSession:     h.Delete,
		PostEvents:        h.PostEvents,
		PostMessage:       h.PostMessage,
		GetOutbox:         h.GetOutbox,
		GetAnalysis:       h.GetAnalysis,
		SessionMiddleware: h.SessionMiddleware,
		AuthMiddleware:    auth.Middleware(verifier),
	})

	srv := server.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return reg.Run(gctx, cfg.Session.SweepInterval) })
	return g.Wait()
}

func engagementConfig(c config.EngineConfig) engagement.Config {
	return engagement.Config{
		Scheduler: scheduler.Config{
			Cooldowns: scheduler.PriorityDurations{
				Low:      c.CooldownLow,
				Medium:   c.CooldownMedium,
				Critical: c.CooldownCritical,
			},
			Display: scheduler.PriorityDurations{
				Low:      c.DisplayLow,
				Medium:   c.DisplayMedium,
				Critical: c.DisplayCritical,
			},
			DecayInterval:    c.DecayInterval,
			EngagedThreshold: c.EngagedThreshold,
			MaxScore:         c.MaxScore,
		},
		NudgeDelay:      c.NudgeDelay,
		StepHelpDelay:   c.StepHelpDelay,
		SuggestionFloor: c.SuggestionFloor,
	}
}
