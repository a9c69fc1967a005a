package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"recyclehub/internal/database"

	"go.uber.org/zap"
)

// Querier is satisfied by *sql.DB and *sql.Tx. Every repository method takes
// one so the same code runs inside or outside a ledger transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BaseRepository provides common database operations
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

func (r *BaseRepository) querier(q Querier) Querier {
	if q == nil {
		return r.db.DB()
	}
	return q
}

// ExecContext rebinds and executes a statement, logging slow and failed queries
func (r *BaseRepository) ExecContext(ctx context.Context, q Querier, query string, args ...interface{}) (sql.Result, error) {
	query = r.db.Rebind(query)
	start := time.Now()
	result, err := r.querier(q).ExecContext(ctx, query, args...)
	r.observe(query, start, err)
	return result, err
}

// QueryContext rebinds and runs a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, q Querier, query string, args ...interface{}) (*sql.Rows, error) {
	query = r.db.Rebind(query)
	start := time.Now()
	rows, err := r.querier(q).QueryContext(ctx, query, args...)
	r.observe(query, start, err)
	return rows, err
}

// QueryRowContext rebinds and runs a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, q Querier, query string, args ...interface{}) *sql.Row {
	query = r.db.Rebind(query)
	start := time.Now()
	row := r.querier(q).QueryRowContext(ctx, query, args...)
	r.observe(query, start, nil)
	return row
}

func (r *BaseRepository) observe(query string, start time.Time, err error) {
	if duration := time.Since(start); duration > r.db.SlowQueryThreshold() {
		r.logger.Warn("Slow query detected",
			zap.String("query", database.TruncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	// conflicts are retried by the transaction primitive, not worth an error line
	if err != nil && !database.IsConflict(err) && !errors.Is(err, context.Canceled) {
		r.logger.Error("Query execution failed",
			zap.String("query", database.TruncateQuery(query)),
			zap.Error(err),
		)
	}
}

// ForUpdate returns the dialect's row lock suffix
func (r *BaseRepository) ForUpdate() string {
	return r.db.Dialect().ForUpdate()
}

// ===============================
// UTILITY METHODS
// ===============================

// IsNotFound checks if error is a "not found" error
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetLogger returns the logger instance
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}

// affected reports whether a statement touched at least one row
func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// stamp normalises t for storage: UTC with microsecond precision, the
// finest resolution both dialects keep.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
