// Package database stores finished games and their turn history. Two
// backends share one Repository interface: SQLite for local use and
// PostgreSQL for deployments.
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/models"
)

// Repository persists turn history and game results.
type Repository interface {
	// RecordTurn appends one validation attempt.
	RecordTurn(ctx context.Context, rec models.TurnRecord) error
	// SaveResult stores the result of a game, replacing an earlier one.
	SaveResult(ctx context.Context, res models.GameResult) error
	// ListResults returns the player's most recent games first.
	ListResults(ctx context.Context, playerID uuid.UUID, limit int) ([]models.GameResult, error)
	// ListTurns returns a game's turns in the order they were recorded.
	ListTurns(ctx context.Context, gameID uuid.UUID) ([]models.TurnRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// defaultLimit caps ListResults when no positive limit is given.
const defaultLimit = 20

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultLimit
	}
	return limit
}
