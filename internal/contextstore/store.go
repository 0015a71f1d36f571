// Package contextstore persists the assistant's conversation history,
// derived conversation context and user preferences.
//
// A Store binds one user to a durable Backend and mirrors every write into
// memory. When the durable backend fails the Store switches to the mirror
// for the rest of the session; callers never see persistence errors.
package contextstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRecords is the history cap.
const DefaultMaxRecords = 20

// Store is one user's conversation state. It is owned by a session loop
// and is not safe for concurrent use.
type Store struct {
	userID   string
	primary  Backend
	mirror   *MemoryBackend
	logger   *slog.Logger
	degraded bool
	hydrated bool
	now      func() time.Time
}

// NewStore creates a Store. A nil primary keeps everything in memory.
func NewStore(userID string, primary Backend, maxRecords int, logger *slog.Logger) *Store {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		userID:   userID,
		primary:  primary,
		mirror:   NewMemoryBackend(maxRecords),
		logger:   logger.With("user_id", userID),
		degraded: primary == nil,
		now:      time.Now,
	}
}

// Degraded reports whether the Store has fallen back to memory.
func (s *Store) Degraded() bool { return s.degraded }

func (s *Store) degrade(op string, err error) {
	if !s.degraded {
		s.logger.Warn("contextstore: backend failed, using memory for this session", "op", op, "error", err)
	}
	s.degraded = true
}

// hydrate copies the durable history into the mirror once, so a later
// degrade keeps what the user had before.
func (s *Store) hydrate(ctx context.Context) {
	if s.hydrated || s.degraded {
		return
	}
	s.hydrated = true
	records, err := s.primary.Load(ctx, s.userID)
	if err != nil {
		s.degrade("load", err)
		return
	}
	s.mirror.replace(s.userID, records)

	c, ok, err := s.primary.LoadContext(ctx, s.userID)
	if err != nil {
		s.degrade("load_context", err)
		return
	}
	if ok {
		_ = s.mirror.SaveContext(ctx, s.userID, c)
	}
}

// NewRecord builds a record stamped with a fresh id and the current time.
func (s *Store) NewRecord(sender Sender, kind, content string) Record {
	return Record{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: s.now(),
		Kind:      kind,
	}
}

// Append adds a turn to the history.
func (s *Store) Append(ctx context.Context, rec Record) {
	s.hydrate(ctx)
	_ = s.mirror.Append(ctx, s.userID, rec)
	if s.degraded {
		return
	}
	if err := s.primary.Append(ctx, s.userID, rec); err != nil {
		s.degrade("append", err)
	}
}

// Load returns the history, oldest first. The first run yields an empty slice.
func (s *Store) Load(ctx context.Context) []Record {
	s.hydrate(ctx)
	if !s.degraded {
		records, err := s.primary.Load(ctx, s.userID)
		if err == nil {
			return records
		}
		s.degrade("load", err)
	}
	records, _ := s.mirror.Load(ctx, s.userID)
	return records
}

// Recent returns at most n of the newest records.
func (s *Store) Recent(ctx context.Context, n int) []Record {
	records := s.Load(ctx)
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records
}

// Context derives the conversation context from the current history and
// caches it under the context key. When no history can be read the last
// cached context is returned instead.
func (s *Store) Context(ctx context.Context) Context {
	records := s.Load(ctx)
	if len(records) == 0 {
		if c, ok, _ := s.mirror.LoadContext(ctx, s.userID); ok {
			return c
		}
	}
	c := DeriveContext(records)
	_ = s.mirror.SaveContext(ctx, s.userID, c)
	if !s.degraded {
		if err := s.primary.SaveContext(ctx, s.userID, c); err != nil {
			s.degrade("save_context", err)
		}
	}
	return c
}

// Preferences returns the stored preferences or the defaults.
func (s *Store) Preferences(ctx context.Context) Preferences {
	if !s.degraded {
		p, ok, err := s.primary.LoadPreferences(ctx, s.userID)
		switch {
		case err != nil:
			s.degrade("load_preferences", err)
		case ok:
			_ = s.mirror.SavePreferences(ctx, s.userID, p)
			return p
		}
	}
	if p, ok, _ := s.mirror.LoadPreferences(ctx, s.userID); ok {
		return p
	}
	return DefaultPreferences()
}

// SetPreferences stores new preferences.
func (s *Store) SetPreferences(ctx context.Context, p Preferences) {
	_ = s.mirror.SavePreferences(ctx, s.userID, p)
	if s.degraded {
		return
	}
	if err := s.primary.SavePreferences(ctx, s.userID, p); err != nil {
		s.degrade("save_preferences", err)
	}
}
