package backend

import (
	"context"
	"fmt"

	"fintrack/internal/ledger/google"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldBackend, config.Type, "db_path", config.SQLiteDBPath)
		return &BackendResult{Store: repo, Cleanup: repo.Close}, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres backend", log.FieldBackend, config.Type)
		return &BackendResult{Store: repo, Cleanup: repo.Close}, nil

	case SheetsBackend:
		cli, err := google.New(ctx, config.GoogleSpreadsheetID, config.GoogleIncomeSheet, config.GoogleExpensesSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		mem, err := f.memoryStore(config)
		if err != nil {
			return nil, err
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets backend", log.FieldBackend, config.Type,
			"income_sheet", config.GoogleIncomeSheet, "expenses_sheet", config.GoogleExpensesSheet)
		return &BackendResult{Store: google.NewStore(cli, mem)}, nil

	case MemoryBackend:
		mem, err := f.memoryStore(config)
		if err != nil {
			return nil, err
		}
		f.logger.InfoContext(ctx, "Initialized memory backend", log.FieldBackend, config.Type, "data_directory", config.DataDirectory)
		return &BackendResult{Store: mem}, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}

func (f *DefaultFactory) memoryStore(config Config) (*memory.Store, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = "data"
	}
	mem, err := memory.NewFromFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}
	return mem, nil
}
