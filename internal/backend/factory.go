package backend

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the database and wires the services over it. An
// unreachable broker is logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	b := &Backend{Repo: repo}
	b.onClose(repo.Close)

	b.Events = f.connectEvents(config)
	if b.Events != nil {
		b.onClose(b.Events.Close)
	}

	// A nil *amqp.Client must not reach the services as a non-nil interface.
	var events services.EventPublisher
	if b.Events != nil {
		events = b.Events
	}

	b.Categories = services.NewCategoryService(repo, config.CategoryCacheTTL, f.logger.WithComponent(log.ComponentCategories))
	b.Ledger = services.NewLedgerService(repo, b.Categories, events, f.logger.WithComponent(log.ComponentLedger))
	b.Goals = services.NewGoalService(repo, events, f.logger.WithComponent(log.ComponentGoals))
	b.Dashboard = services.NewDashboardService(repo)

	b.Caches = cache.NewManager(f.logger.WithComponent(log.ComponentCache))
	b.Caches.Register(b.Categories.Cache())

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", b.Events != nil)

	return b, nil
}

func (f *DefaultFactory) connectEvents(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// CreateMirror builds the spreadsheet the worker mirrors transactions into.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error) {
	switch config.Mirror {
	case GoogleMirror:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		}, f.logger.WithComponent(log.ComponentSheets))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
		return cli, nil
	case MemoryMirror, "":
		f.logger.Info("Initialized in-memory mirror")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Mirror)
	}
}
