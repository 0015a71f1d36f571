package scheduler

import (
	"context"
	"time"
)

// Ledger remembers when each candidate type was last admitted.
type Ledger interface {
	LastAdmitted(ctx context.Context, key string) (time.Time, bool)
	Record(ctx context.Context, key string, at time.Time)
	// Prune forgets entries admitted before cutoff.
	Prune(ctx context.Context, cutoff time.Time)
}

// MemoryLedger is a Ledger held in process memory. It is owned by a single
// session loop and is not safe for concurrent use.
type MemoryLedger struct {
	entries map[string]time.Time
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]time.Time)}
}

func (l *MemoryLedger) LastAdmitted(_ context.Context, key string) (time.Time, bool) {
	t, ok := l.entries[key]
	return t, ok
}

func (l *MemoryLedger) Record(_ context.Context, key string, at time.Time) {
	l.entries[key] = at
}

func (l *MemoryLedger) Prune(_ context.Context, cutoff time.Time) {
	for k, t := range l.entries {
		if t.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// Len returns the number of remembered types.
func (l *MemoryLedger) Len() int { return len(l.entries) }
