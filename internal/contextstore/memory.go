package contextstore

import (
	"context"
	"sync"
)

type memoryEntry struct {
	history     []Record
	ctx         *Context
	preferences *Preferences
}

// MemoryBackend is a process-local Backend. It is safe for concurrent use.
type MemoryBackend struct {
	mu         sync.Mutex
	maxRecords int
	users      map[string]*memoryEntry
}

// NewMemoryBackend creates an empty in-memory store.
func NewMemoryBackend(maxRecords int) *MemoryBackend {
	return &MemoryBackend{maxRecords: maxRecords, users: make(map[string]*memoryEntry)}
}

func (b *MemoryBackend) entry(userID string) *memoryEntry {
	e, ok := b.users[userID]
	if !ok {
		e = &memoryEntry{}
		b.users[userID] = e
	}
	return e
}

func (b *MemoryBackend) Append(_ context.Context, userID string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(userID)
	e.history = append(e.history, rec)
	if n := len(e.history) - b.maxRecords; n > 0 {
		e.history = append([]Record(nil), e.history[n:]...)
	}
	return nil
}

func (b *MemoryBackend) Load(_ context.Context, userID string) ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.users[userID]
	if !ok {
		return []Record{}, nil
	}
	return append([]Record(nil), e.history...), nil
}

// replace overwrites a user's history, keeping the newest maxRecords.
func (b *MemoryBackend) replace(userID string, records []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(records) - b.maxRecords; n > 0 {
		records = records[n:]
	}
	b.entry(userID).history = append([]Record(nil), records...)
}

func (b *MemoryBackend) SaveContext(_ context.Context, userID string, c Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(userID).ctx = &c
	return nil
}

func (b *MemoryBackend) LoadContext(_ context.Context, userID string) (Context, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.users[userID]
	if !ok || e.ctx == nil {
		return Context{}, false, nil
	}
	return *e.ctx, true, nil
}

func (b *MemoryBackend) SavePreferences(_ context.Context, userID string, p Preferences) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(userID).preferences = &p
	return nil
}

func (b *MemoryBackend) LoadPreferences(_ context.Context, userID string) (Preferences, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.users[userID]
	if !ok || e.preferences == nil {
		return Preferences{}, false, nil
	}
	return *e.preferences, true, nil
}
