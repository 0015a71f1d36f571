//go:build integration

package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/profilejoteam/profilejo-website-sub000/internal/database"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "engage_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/engage_test?sslmode=disable", host, port.Port())
	require.NoError(t, database.RunMigrations(dsn, "../../migrations"))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresRepository_GetDraft(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	t.Run("missing draft returns nil", func(t *testing.T) {
		d, err := repo.GetDraft(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("stored draft round trips", func(t *testing.T) {
		userID := uuid.New()
		_, err := pool.Exec(ctx,
			`INSERT INTO profile_drafts (user_id, step, data) VALUES ($1, $2, $3)`,
			userID, 3, []byte(`{"job_title": "Civil Engineer", "personal_info": {"email": "a@b.co"}}`))
		require.NoError(t, err)

		s, ok, err := Snapshot(ctx, repo, userID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Civil Engineer", s.JobTitle)
		assert.Equal(t, "a@b.co", s.PersonalInfo.Email)
		assert.Equal(t, 3, s.CurrentStep)
	})
}
