package contextstore

import "context"

// Backend persists conversation state per user.
type Backend interface {
	Append(ctx context.Context, userID string, rec Record) error
	// Load returns the retained history, oldest first. Corrupt entries are skipped.
	Load(ctx context.Context, userID string) ([]Record, error)
	SaveContext(ctx context.Context, userID string, c Context) error
	// LoadContext returns the context cached by the last SaveContext.
	LoadContext(ctx context.Context, userID string) (Context, bool, error)
	SavePreferences(ctx context.Context, userID string, p Preferences) error
	LoadPreferences(ctx context.Context, userID string) (Preferences, bool, error)
}
