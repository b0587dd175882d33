package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PlayerResult is one seat of a finished match.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Queens   int    `json:"queens"`
}

// MatchResult is the archived outcome of a finished match.
type MatchResult struct {
	GameID     string         `json:"gameId"`
	WinnerID   string         `json:"winnerId"`
	WinnerName string         `json:"winnerName"`
	Players    []PlayerResult `json:"players"`
	FinishedAt time.Time      `json:"finishedAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	game_id     TEXT PRIMARY KEY,
	winner_id   TEXT NOT NULL,
	winner_name TEXT NOT NULL,
	players     JSONB NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS match_results_finished_at_idx ON match_results (finished_at DESC);
`

// MatchRepository stores finished matches.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a repository on top of db.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// EnsureSchema creates the results table if it does not exist yet.
func (r *MatchRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create match_results: %w", err)
	}
	return nil
}

// RecordResult archives a finished match. Recording the same game twice keeps
// the first result.
func (r *MatchRepository) RecordResult(ctx context.Context, result MatchResult) error {
	tag, err := r.db.pool.Exec(ctx, `
		INSERT INTO match_results (game_id, winner_id, winner_name, players, finished_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO NOTHING`,
		result.GameID, result.WinnerID, result.WinnerName, result.Players, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match result %s: %w", result.GameID, err)
	}

	if r.db.logger != nil {
		r.db.logger.Info("match result recorded",
			zap.String("game_id", result.GameID),
			zap.String("winner_id", result.WinnerID),
			zap.Bool("inserted", tag.RowsAffected() == 1),
		)
	}
	return nil
}

// RecentResults returns up to limit matches, newest first.
func (r *MatchRepository) RecentResults(ctx context.Context, limit int) ([]MatchResult, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT game_id, winner_id, winner_name, players, finished_at
		FROM match_results
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query match results: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MatchResult, error) {
		var m MatchResult
		err := row.Scan(&m.GameID, &m.WinnerID, &m.WinnerName, &m.Players, &m.FinishedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan match results: %w", err)
	}
	return results, nil
}
