package storage

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

// mapError turns driver errors into the core taxonomy. ref describes the
// foreign key the statement depends on; when nil a constraint violation is
// reported as a storage failure.
func mapError(op string, err error, ref *core.ReferenceError) error {
	if err == nil {
		return nil
	}
	if ref != nil && isForeignKeyViolation(err) {
		return ref
	}
	return &core.StorageError{Op: op, Err: err}
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "FOREIGN KEY")
}

// notFound maps sql.ErrNoRows to a NotFoundError and everything else through mapError.
func notFound(op, entity, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return mapError(op, err, nil)
}
