package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// SQLiteRepository owns the database handle. Its embedded Store runs
// statements outside any transaction; InTx scopes a Store to one.
type SQLiteRepository struct {
	*Store
	db *sql.DB
}

// dsn enables foreign keys, waits on locks instead of failing, and opens
// every transaction with BEGIN IMMEDIATE so read-modify-write sequences on
// the same row are serialized by SQLite.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Default(log.ComponentStorage).Info("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		Store: &Store{q: New(db)},
		db:    db,
	}, nil
}

// InTx runs fn inside one database transaction. The transaction commits
// only when fn returns nil.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(*Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.StorageError{Op: "begin transaction", Err: err}
	}

	if err := fn(&Store{q: r.Store.q.WithTx(tx)}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Default(log.ComponentStorage).ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &core.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
