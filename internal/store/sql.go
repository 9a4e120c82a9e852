package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/taskpilot/internal/config"
	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/internal/shared"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// SQLStore implements Repository over database/sql.
// The users table is owned elsewhere: SQLStore never creates or alters it.
type SQLStore struct {
	db             *sql.DB
	driver         string
	maxRetries     int
	retryBaseDelay time.Duration
}

// Open connects to the row store selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn := "file:" + cfg.Path + "?_pragma=busy_timeout(5000)"
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
	case config.DriverMySQL:
		mcfg, err := mysql.ParseDSN(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mcfg.ParseTime = true
		connector, err := mysql.NewConnector(mcfg)
		if err != nil {
			return nil, fmt.Errorf("create mysql connector: %w", err)
		}
		db = sql.OpenDB(connector)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewSQLStore(db, cfg.Driver), nil
}

// NewSQLStore wraps an already opened database handle.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:             db,
		driver:         driver,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

// Driver returns the configured driver name.
func (s *SQLStore) Driver() string {
	return s.driver
}

// Ping verifies database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListUsers executes ListUsersQuery and decodes every row.
// Busy, locked and deadlock errors are retried with exponential backoff.
func (s *SQLStore) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	for i := 0; ; i++ {
		users, err := s.listUsersOnce(ctx)
		if err == nil {
			return users, nil
		}
		if !shared.IsTransientStoreError(err) || i >= s.maxRetries-1 {
			return nil, err
		}

		delay := s.retryBaseDelay * time.Duration(1<<i)
		slog.Debug("ListUsers hit a transient store error, retrying", "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (s *SQLStore) listUsersOnce(ctx context.Context) ([]domain.UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, ListUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close users rows", "error", closeErr)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read users columns: %w", err)
	}
	if err := checkUserColumns(columns); err != nil {
		return nil, err
	}

	users := make([]domain.UserRecord, 0)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan user row %d: %w", rowNum, err)
		}

		user, err := decodeUserRow(rowNum, values)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
