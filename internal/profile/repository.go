package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads saved form drafts. The form owner writes them; this
// service only seeds new sessions from the latest draft.
type Repository interface {
	GetDraft(ctx context.Context, userID uuid.UUID) (*Draft, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new draft repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetDraft returns the user's draft, or nil when none has been saved yet.
func (r *PostgresRepository) GetDraft(ctx context.Context, userID uuid.UUID) (*Draft, error) {
	var d Draft
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, step, data, updated_at
		 FROM profile_drafts
		 WHERE user_id = $1`,
		userID,
	).Scan(&d.UserID, &d.Step, &d.Data, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting profile draft: %w", err)
	}
	return &d, nil
}

// Snapshot loads the user's draft as a FormSnapshot. The draft's step column
// wins over any step stored inside the JSON document.
func Snapshot(ctx context.Context, repo Repository, userID uuid.UUID) (FormSnapshot, bool, error) {
	d, err := repo.GetDraft(ctx, userID)
	if err != nil {
		return FormSnapshot{}, false, err
	}
	if d == nil {
		return FormSnapshot{}, false, nil
	}
	s := ParseSnapshot(d.Data)
	s.CurrentStep = d.Step
	return s, true, nil
}
