package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/rummikube/internal/models"
)

// PostgresRepository implements Repository on PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and creates the schema if needed.
func OpenPostgres(ctx context.Context, url string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	r := &PostgresRepository{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return r, nil
}

func (r *PostgresRepository) migrate(ctx context.Context) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id UUID PRIMARY KEY,
			player_id UUID NOT NULL,
			won BOOLEAN NOT NULL DEFAULT FALSE,
			turns INTEGER NOT NULL,
			hand_left INTEGER NOT NULL,
			hand_value INTEGER NOT NULL,
			deck_left INTEGER NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			id BIGSERIAL PRIMARY KEY,
			game_id UUID NOT NULL,
			player_id UUID NOT NULL,
			turn INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			value INTEGER NOT NULL,
			board_size INTEGER NOT NULL,
			hand_size INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_player_id ON games(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_game_id ON turns(game_id)`,
	}
	for _, query := range schemas {
		if _, err := r.pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) RecordTurn(ctx context.Context, rec models.TurnRecord) error {
	query := `
		INSERT INTO turns (game_id, player_id, turn, outcome, reason, value, board_size, hand_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.GameID, rec.PlayerID, rec.Turn, rec.Outcome, rec.Reason,
		rec.Value, rec.BoardSize, rec.HandSize, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveResult(ctx context.Context, res models.GameResult) error {
	query := `
		INSERT INTO games (game_id, player_id, won, turns, hand_left, hand_value, deck_left, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id) DO UPDATE SET
			won = EXCLUDED.won,
			turns = EXCLUDED.turns,
			hand_left = EXCLUDED.hand_left,
			hand_value = EXCLUDED.hand_value,
			deck_left = EXCLUDED.deck_left,
			ended_at = EXCLUDED.ended_at
	`
	_, err := r.pool.Exec(ctx, query,
		res.GameID, res.PlayerID, res.Won, res.Turns, res.HandLeft,
		res.HandValue, res.DeckLeft, res.StartedAt, res.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListResults(ctx context.Context, playerID uuid.UUID, limit int) ([]models.GameResult, error) {
	query := `
		SELECT game_id, player_id, won, turns, hand_left, hand_value, deck_left, started_at, ended_at
		FROM games WHERE player_id = $1 ORDER BY ended_at DESC LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, playerID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.GameResult, error) {
		var res models.GameResult
		err := row.Scan(&res.GameID, &res.PlayerID, &res.Won, &res.Turns, &res.HandLeft,
			&res.HandValue, &res.DeckLeft, &res.StartedAt, &res.EndedAt)
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListTurns(ctx context.Context, gameID uuid.UUID) ([]models.TurnRecord, error) {
	query := `
		SELECT game_id, player_id, turn, outcome, reason, value, board_size, hand_size, created_at
		FROM turns WHERE game_id = $1 ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TurnRecord, error) {
		var rec models.TurnRecord
		err := row.Scan(&rec.GameID, &rec.PlayerID, &rec.Turn, &rec.Outcome, &rec.Reason,
			&rec.Value, &rec.BoardSize, &rec.HandSize, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan turns: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
