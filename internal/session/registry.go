// Package session keeps one engagement loop per browser session and expires
// sessions that go quiet.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/profilejoteam/profilejo-website-sub000/internal/clock"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/engagement"
	"github.com/profilejoteam/profilejo-website-sub000/internal/events"
	"github.com/profilejoteam/profilejo-website-sub000/internal/metrics"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
	"github.com/profilejoteam/profilejo-website-sub000/internal/scheduler"
)

var (
	ErrNotFound = errors.New("session: not found")
	ErrClosed   = errors.New("session: registry closed")
)

// End reasons attached to session_ended events.
const (
	EndDeleted  = "deleted"
	EndIdle     = "idle"
	EndShutdown = "shutdown"
)

// Session is one user's engagement loop and its outbox.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	loop     *engagement.Loop
	outbox   *engagement.Outbox
	clock    clock.Clock
	lastSeen atomic.Int64
}

func (s *Session) touch() { s.lastSeen.Store(s.clock.Now().UnixNano()) }

// LastSeen is the time of the last call routed to the session.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Do runs f on the session loop.
func (s *Session) Do(ctx context.Context, f func(e *engagement.Engine)) error {
	s.touch()
	return s.loop.Do(ctx, f)
}

// SendMessage hands a chat message to the loop. The reply arrives later
// through the outbox.
func (s *Session) SendMessage(text string) error {
	s.touch()
	return s.loop.SendMessage(text)
}

// Drain returns the pending presenter commands.
func (s *Session) Drain() []engagement.Command {
	s.touch()
	return s.outbox.Drain()
}

// Options configures a Registry. Nil integrations are valid: without Redis
// the context store and ledger stay in memory, without Drafts sessions start
// from an empty form.
type Options struct {
	Engine      engagement.Config
	IdleTimeout time.Duration
	Clock       clock.Clock

	Redis             redis.Cmdable
	RedisLedger       bool
	ContextMaxRecords int
	ContextTTL        time.Duration

	Reasoner  reasoning.Asker
	Publisher engagement.Publisher
	Drafts    profile.Repository
	Logger    *slog.Logger
}

// Registry owns the live sessions.
type Registry struct {
	opts   Options
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		opts:     opts,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for userID. When a draft repository is configured
// and the user has a saved draft, the engine is seeded with it before the
// loop starts, so the seed never produces nudges.
func (r *Registry) Create(ctx context.Context, userID string) (*Session, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	logger := r.logger.With("session_id", id)

	var backend contextstore.Backend
	var ledger scheduler.Ledger
	if r.opts.Redis != nil {
		backend = contextstore.NewRedisBackend(r.opts.Redis, r.opts.ContextMaxRecords, r.opts.ContextTTL)
		if r.opts.RedisLedger {
			ledger = scheduler.NewRedisLedger(r.opts.Redis, id, r.opts.Engine.Scheduler.Cooldowns.Longest(), logger)
		}
	}
	store := contextstore.NewStore(userID, backend, r.opts.ContextMaxRecords, logger)

	loop := engagement.NewLoop(r.ctx, r.opts.Clock, r.opts.Engine.Scheduler.DecayInterval)
	outbox := engagement.NewOutbox(0)
	engine := engagement.New(r.opts.Engine, engagement.Deps{
		SessionID: id,
		UserID:    userID,
		Clock:     loop.Clock(),
		Ledger:    ledger,
		Store:     store,
		Reasoner:  r.opts.Reasoner,
		Presenter: outbox,
		Publisher: r.opts.Publisher,
		Logger:    logger,
		Context:   r.ctx,
	})
	r.seed(ctx, engine, userID, logger)

	s := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: r.opts.Clock.Now(),
		loop:      loop,
		outbox:    outbox,
		clock:     r.opts.Clock,
	}
	s.touch()
	loop.Start(engine)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		loop.Stop()
		return nil, ErrClosed
	}
	r.sessions[id] = s
	r.mu.Unlock()

	metrics.ActiveSessions.Inc()
	r.publish(s, events.TypeSessionStarted, "")
	logger.Info("session: started", "user_id", userID)
	return s, nil
}

func (r *Registry) seed(ctx context.Context, e *engagement.Engine, userID string, logger *slog.Logger) {
	if r.opts.Drafts == nil {
		return
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		logger.Debug("session: user id is not a uuid, skipping draft seed", "user_id", userID)
		return
	}
	snap, ok, err := profile.Snapshot(ctx, r.opts.Drafts, uid)
	if err != nil {
		logger.Warn("session: loading draft failed", "error", err)
		return
	}
	if ok {
		e.OnFormSnapshotChanged(snap)
	}
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete stops a session and forgets it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.end(s, EndDeleted)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep ends every session idle since before now minus the idle timeout.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.opts.IdleTimeout)

	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.end(s, EndIdle)
	}
	return len(idle)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := r.Sweep(r.opts.Clock.Now()); n > 0 {
				r.logger.Info("session: expired idle sessions", "count", n)
			}
		}
	}
}

// Close ends every session and refuses new ones. In-flight replies are
// recorded before their loop stops.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.end(s, EndShutdown)
		}()
	}
	wg.Wait()
	r.cancel()
}

func (r *Registry) end(s *Session, reason string) {
	s.loop.Stop()
	metrics.ActiveSessions.Dec()
	r.publish(s, events.TypeSessionEnded, reason)
	r.logger.Info("session: ended", "session_id", s.ID, "reason", reason)
}

func (r *Registry) publish(s *Session, typ, reason string) {
	if r.opts.Publisher == nil {
		return
	}
	ev := events.Event{
		Type:      typ,
		SessionID: s.ID,
		UserID:    s.UserID,
		Timestamp: r.opts.Clock.Now(),
	}
	if reason != "" {
		ev.Attrs = map[string]string{"reason": reason}
	}
	if err := r.opts.Publisher.Publish(r.ctx, ev); err != nil {
		r.logger.Warn("session: publishing event failed", "type", typ, "error", err)
	}
}
