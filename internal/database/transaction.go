package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// TxFunc is the body of a transaction. All reads and writes must go
// through tx so they commit or roll back together.
type TxFunc func(tx *sql.Tx) error

// WithTransaction runs fn atomically. A body that fails with a retryable
// conflict is re-run from the start with exponential backoff. Once retries
// are exhausted the error wraps ErrTransactionConflict. Errors returned by
// fn itself are handed back unchanged and the transaction is rolled back.
func (m *Manager) WithTransaction(ctx context.Context, fn TxFunc) error {
	policy := m.txPolicy()
	attempt := 0

	operation := func() error {
		attempt++
		err := m.runTx(ctx, policy, fn)
		if err == nil {
			return nil
		}
		if IsConflict(err) {
			m.logger.Debug("Transaction conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialDelay
	b.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(policy.MaxRetries)), ctx))
	if err == nil {
		return nil
	}

	if IsConflict(err) && !errors.Is(err, ErrTransactionConflict) {
		m.logger.Warn("Transaction retries exhausted",
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return fmt.Errorf("%w after %d attempts: %v", ErrTransactionConflict, attempt, err)
	}
	return Classify(err)
}

func (m *Manager) runTx(ctx context.Context, policy TxPolicy, fn TxFunc) (err error) {
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("Failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
