package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/storage"
	"finanzas/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Ledger: repo, Ping: repo.Ping, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewPostgresRepository(config.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize Postgres repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized Postgres backend")
	return &Result{Ledger: repo, Ping: repo.Ping, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*Result, error) {
	var store *memory.Store
	if config.SeedFile == "" {
		store = memory.New(memory.DefaultSeed())
	} else {
		store = memory.NewFromFile(config.SeedFile)
	}
	f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)
	return &Result{Ledger: store}, nil
}
