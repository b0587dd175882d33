package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sleepingqueens/queens-server-go/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("QUEENS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("QUEENS_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{Enabled: true, URL: url, MaxConns: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestMatchRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation is idempotent")

	// Far in the future so these rows sort first regardless of existing data.
	finished := time.Date(2999, 1, 1, 12, 0, 0, 0, time.UTC)
	older := MatchResult{
		GameID:     uuid.NewString(),
		WinnerID:   "p1",
		WinnerName: "Alice",
		Players: []PlayerResult{
			{PlayerID: "p1", Name: "Alice", Score: 50, Queens: 5},
			{PlayerID: "p2", Name: "Bob", Score: 15, Queens: 1},
		},
		FinishedAt: finished,
	}
	newer := older
	newer.GameID = uuid.NewString()
	newer.FinishedAt = finished.Add(time.Minute)

	t.Cleanup(func() {
		_, _ = db.Pool().Exec(context.Background(),
			"DELETE FROM match_results WHERE game_id = ANY($1)", []string{older.GameID, newer.GameID})
	})

	require.NoError(t, repo.RecordResult(ctx, older))
	require.NoError(t, repo.RecordResult(ctx, newer))

	dup := older
	dup.WinnerName = "Mallory"
	require.NoError(t, repo.RecordResult(ctx, dup))

	results, err := repo.RecentResults(ctx, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, newer.GameID, results[0].GameID)
	assert.Equal(t, older.GameID, results[1].GameID)
	assert.Equal(t, "Alice", results[1].WinnerName)
	assert.Equal(t, older.Players, results[1].Players)
	assert.True(t, older.FinishedAt.Equal(results[1].FinishedAt))
}

func TestNewDBRejectsBadURL(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{URL: "postgres://queens@localhost:notaport/queens"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
