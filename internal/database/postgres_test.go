package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPostgresRepo connects to DATABASE_URL, skipping the test when it is
// not set. Tests use fresh ids so they can share one database.
func openPostgresRepo(t *testing.T) *PostgresRepository {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPostgresTurns(t *testing.T) {
	repo := openPostgresRepo(t)
	ctx := context.Background()
	game, player := uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	turns := []models.TurnRecord{
		{GameID: game, PlayerID: player, Turn: 0, Outcome: "rejected", Reason: "invalid_board", Value: 12, BoardSize: 2, HandSize: 12, CreatedAt: now},
		{GameID: game, PlayerID: player, Turn: 1, Outcome: "accepted", Value: 30, BoardSize: 3, HandSize: 11, CreatedAt: now.Add(time.Second)},
	}
	for _, rec := range turns {
		require.NoError(t, repo.RecordTurn(ctx, rec))
	}

	got, err := repo.ListTurns(ctx, game)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "invalid_board", got[0].Reason)
	assert.Equal(t, "accepted", got[1].Outcome)
	assert.Equal(t, player, got[1].PlayerID)
	assert.True(t, got[1].CreatedAt.Equal(now.Add(time.Second)))

	none, err := repo.ListTurns(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostgresResults(t *testing.T) {
	repo := openPostgresRepo(t)
	ctx := context.Background()
	player := uuid.New()
	start := time.Now().UTC().Truncate(time.Second)

	older := models.GameResult{GameID: uuid.New(), PlayerID: player, Turns: 4, HandLeft: 6, HandValue: 41, StartedAt: start, EndedAt: start.Add(time.Minute)}
	newer := models.GameResult{GameID: uuid.New(), PlayerID: player, Won: true, Turns: 9, StartedAt: start, EndedAt: start.Add(2 * time.Minute)}
	for _, res := range []models.GameResult{older, newer} {
		require.NoError(t, repo.SaveResult(ctx, res))
	}

	got, err := repo.ListResults(ctx, player, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.GameID, got[0].GameID, "most recent first")
	assert.Equal(t, 41, got[1].HandValue)

	older.Won = true
	require.NoError(t, repo.SaveResult(ctx, older))
	got, err = repo.ListResults(ctx, player, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].Won)

	require.NoError(t, repo.Ping(ctx))
}
