package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/models"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteRepository implements Repository on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and creates the schema. Use
// ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			won BOOLEAN NOT NULL DEFAULT 0,
			turns INTEGER NOT NULL,
			hand_left INTEGER NOT NULL,
			hand_value INTEGER NOT NULL,
			deck_left INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			value INTEGER NOT NULL,
			board_size INTEGER NOT NULL,
			hand_size INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_player_id ON games(player_id);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_game_id ON turns(game_id);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) RecordTurn(ctx context.Context, rec models.TurnRecord) error {
	query := `
		INSERT INTO turns (game_id, player_id, turn, outcome, reason, value, board_size, hand_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.GameID.String(), rec.PlayerID.String(), rec.Turn, rec.Outcome, rec.Reason,
		rec.Value, rec.BoardSize, rec.HandSize, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveResult(ctx context.Context, res models.GameResult) error {
	query := `
		INSERT INTO games (game_id, player_id, won, turns, hand_left, hand_value, deck_left, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			won = excluded.won,
			turns = excluded.turns,
			hand_left = excluded.hand_left,
			hand_value = excluded.hand_value,
			deck_left = excluded.deck_left,
			ended_at = excluded.ended_at
	`
	_, err := r.db.ExecContext(ctx, query,
		res.GameID.String(), res.PlayerID.String(), res.Won, res.Turns, res.HandLeft,
		res.HandValue, res.DeckLeft, res.StartedAt.UTC(), res.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListResults(ctx context.Context, playerID uuid.UUID, limit int) ([]models.GameResult, error) {
	query := `
		SELECT game_id, player_id, won, turns, hand_left, hand_value, deck_left, started_at, ended_at
		FROM games WHERE player_id = ? ORDER BY ended_at DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, playerID.String(), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []models.GameResult
	for rows.Next() {
		var res models.GameResult
		var gameID, pid string
		var started, ended time.Time
		if err := rows.Scan(&gameID, &pid, &res.Won, &res.Turns, &res.HandLeft, &res.HandValue, &res.DeckLeft, &started, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if res.GameID, err = uuid.Parse(gameID); err != nil {
			return nil, fmt.Errorf("bad game id %q: %w", gameID, err)
		}
		if res.PlayerID, err = uuid.Parse(pid); err != nil {
			return nil, fmt.Errorf("bad player id %q: %w", pid, err)
		}
		res.StartedAt, res.EndedAt = started, ended
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListTurns(ctx context.Context, gameID uuid.UUID) ([]models.TurnRecord, error) {
	query := `
		SELECT game_id, player_id, turn, outcome, reason, value, board_size, hand_size, created_at
		FROM turns WHERE game_id = ? ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gameID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var out []models.TurnRecord
	for rows.Next() {
		var rec models.TurnRecord
		var gid, pid string
		if err := rows.Scan(&gid, &pid, &rec.Turn, &rec.Outcome, &rec.Reason, &rec.Value, &rec.BoardSize, &rec.HandSize, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if rec.GameID, err = uuid.Parse(gid); err != nil {
			return nil, fmt.Errorf("bad game id %q: %w", gid, err)
		}
		if rec.PlayerID, err = uuid.Parse(pid); err != nil {
			return nil, fmt.Errorf("bad player id %q: %w", pid, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *SQLiteRepository) Close() error { return r.db.Close() }
