package backend

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend holds the wired services over one database.
type Backend struct {
	Repo       *storage.SQLiteRepository
	Categories *services.CategoryService
	Ledger     *services.LedgerService
	Goals      *services.GoalService
	Dashboard  *services.DashboardService
	Caches     *cache.Manager

	// Events is nil when AMQP is disabled or unreachable.
	Events *amqp.Client

	cleanups []CleanupFunc
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.cleanups = nil
	return errors.Join(errs...)
}

func (b *Backend) onClose(fn CleanupFunc) {
	b.cleanups = append(b.cleanups, fn)
}

// Factory creates backends and mirrors based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
	CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	SQLiteDBPath     string
	CategoryCacheTTL time.Duration

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Mirror                   MirrorType
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// MirrorType selects where the worker mirrors transactions.
type MirrorType string

const (
	GoogleMirror MirrorType = "google"
	MemoryMirror MirrorType = "memory"
)

// String implements fmt.Stringer
func (mt MirrorType) String() string {
	return string(mt)
}

// IsValid returns true if the mirror type is valid
func (mt MirrorType) IsValid() bool {
	switch mt {
	case GoogleMirror, MemoryMirror:
		return true
	default:
		return false
	}
}
