package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"recyclehub/internal/config"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:       "sqlite3",
		URL:          filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	m, err := NewManager(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	require.NoError(t, m.Migrate())
	m.SetTxPolicy(TxPolicy{MaxRetries: 3, InitialDelay: time.Millisecond})
	return m
}

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE users SET current_points = current_points + ? WHERE id = ? AND current_points + ? >= 0"

	assert.Equal(t, query, DialectSQLite.Rebind(query))
	assert.Equal(t,
		"UPDATE users SET current_points = current_points + $1 WHERE id = $2 AND current_points + $3 >= 0",
		DialectPostgres.Rebind(query))
}

func TestDialect_ForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", DialectPostgres.ForUpdate())
	assert.Empty(t, DialectSQLite.ForUpdate())
}

func TestNewManager_RejectsUnknownDriver(t *testing.T) {
	_, err := NewManager(&config.DatabaseConfig{Driver: "mysql", URL: "x"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewManager(&config.DatabaseConfig{Driver: "sqlite3"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrate_CreatesLedgerTables(t *testing.T) {
	m := newTestManager(t)

	for _, table := range []string{"users", "history", "challenges", "daily_progress", "challenge_progress", "rewards", "redemptions"} {
		var name string
		err := m.DB().QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	state, err := m.MigrationStatus()
	require.NoError(t, err)
	assert.Equal(t, uint(1), state.Version)
	assert.False(t, state.Dirty)

	// running again is a no-op
	require.NoError(t, m.Migrate())
}

func TestMigrate_NegativeBalanceRejectedByStore(t *testing.T) {
	m := newTestManager(t)
	now := time.Now().UTC()

	_, err := m.DB().Exec("INSERT INTO users (id, current_points, total_recycled, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		"u1", -1, 0, now, now)
	assert.Error(t, err)
}

func TestWithTransaction_CommitsAndRollsBack(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := m.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO users (id, created_at, updated_at) VALUES (?, ?, ?)", "kept", now, now)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, created_at, updated_at) VALUES (?, ?, ?)", "dropped", now, now); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, m.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RetriesConflicts(t *testing.T) {
	m := newTestManager(t)

	attempts := 0
	err := m.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("update balance: %w", sqlite3.Error{Code: sqlite3.ErrBusy})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithTransaction_ExhaustedRetriesReportConflict(t *testing.T) {
	m := newTestManager(t)

	attempts := 0
	err := m.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		attempts++
		return &pq.Error{Code: "40001"}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionConflict)
	assert.Equal(t, 4, attempts)
}

func TestWithTransaction_DoesNotRetryBusinessErrors(t *testing.T) {
	m := newTestManager(t)
	insufficient := errors.New("insufficient points")

	attempts := 0
	err := m.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		attempts++
		return insufficient
	})

	assert.Same(t, insufficient, err)
	assert.Equal(t, 1, attempts)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"serialization failure", &pq.Error{Code: "40001"}, ErrTransactionConflict},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrTransactionConflict},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, ErrTransactionConflict},
		{"connection failure", &pq.Error{Code: "08006"}, ErrStoreUnavailable},
		{"bad conn", driver.ErrBadConn, ErrStoreUnavailable},
		{"conn done", sql.ErrConnDone, ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}

	plain := errors.New("plain")
	assert.Same(t, plain, Classify(plain))
	assert.Nil(t, Classify(nil))
	assert.False(t, IsUnavailable(context.DeadlineExceeded))
	assert.False(t, IsConflict(&pq.Error{Code: "23505"}))
}

func TestHealth(t *testing.T) {
	m := newTestManager(t)

	status := m.Health(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "sqlite3", status.Driver)
}
