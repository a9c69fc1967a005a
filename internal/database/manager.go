package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"recyclehub/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Dialect identifies the SQL flavour spoken by the ledger store
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Rebind rewrites ? placeholders into $n for postgres.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// ForUpdate returns the row lock suffix for SELECT statements.
// SQLite serialises writers at the database level so it needs none.
func (d Dialect) ForUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// TxPolicy tunes WithTransaction
type TxPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Timeout      time.Duration
}

// DefaultTxPolicy is used until SetTxPolicy is called
var DefaultTxPolicy = TxPolicy{
	MaxRetries:   5,
	InitialDelay: 20 * time.Millisecond,
	Timeout:      10 * time.Second,
}

// Manager owns the connection pool of the ledger store
type Manager struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	config  *config.DatabaseConfig
	policy  TxPolicy
	mu      sync.RWMutex
}

// NewManager opens the store described by cfg and verifies it answers.
func NewManager(cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dialect := Dialect(cfg.Driver)
	dsn := cfg.URL
	switch dialect {
	case DialectPostgres:
	case DialectSQLite:
		dsn = sqliteDSN(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	configureConnectionPool(db, cfg, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", Classify(err))
	}

	if dialect == DialectSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	logger.Info("✅ Database manager initialized",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return &Manager{
		db:      db,
		dialect: dialect,
		logger:  logger,
		config:  cfg,
		policy:  DefaultTxPolicy,
	}, nil
}

// InitDB builds a manager from the application config, applies the ledger
// transaction policy and runs migrations when enabled.
func InitDB(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	manager.SetTxPolicy(TxPolicy{
		MaxRetries:   cfg.Ledger.TxMaxRetries,
		InitialDelay: cfg.Ledger.TxRetryDelay,
		Timeout:      cfg.Ledger.TxTimeout,
	})

	if cfg.Database.AutoMigrate {
		if err := manager.Migrate(); err != nil {
			manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	return manager, nil
}

func configureConnectionPool(db *sql.DB, cfg *config.DatabaseConfig, dialect Dialect) {
	if dialect == DialectSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(30 * time.Minute)
}

// sqliteDSN appends the connection options every sqlite connection needs.
// _txlock=immediate takes the write lock at BEGIN so two transactions never
// both read and then fail to upgrade.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// SetTxPolicy replaces the retry policy used by WithTransaction.
// Zero fields keep their defaults.
func (m *Manager) SetTxPolicy(p TxPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultTxPolicy.InitialDelay
	}
	m.policy = p
}

func (m *Manager) txPolicy() TxPolicy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy
}

// DB returns the underlying connection pool
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Dialect returns the SQL dialect of the store
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

// Logger returns the manager's logger
func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

// Rebind is shorthand for m.Dialect().Rebind
func (m *Manager) Rebind(query string) string {
	return m.dialect.Rebind(query)
}

// SlowQueryThreshold is the duration above which repositories log a query
func (m *Manager) SlowQueryThreshold() time.Duration {
	if m.config == nil || m.config.SlowQueryThreshold <= 0 {
		return 100 * time.Millisecond
	}
	return m.config.SlowQueryThreshold
}

// Ping checks that the store answers within ctx
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return Classify(err)
	}
	return nil
}

// Stats returns database statistics
func (m *Manager) Stats() sql.DBStats {
	return m.db.Stats()
}

// Close closes the connection pool
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	m.logger.Info("Closing database connection")
	err := m.db.Close()
	m.db = nil
	return err
}

// TruncateQuery shortens long queries for logging
func TruncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
