package backend

import (
	"context"

	"finanzas/internal/store"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// Result is a ready ledger with its health check and cleanup.
type Result struct {
	Ledger store.Ledger
	// Ping checks the underlying database; nil for the memory backend.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates ledgers based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresDSN  string
	// SeedFile is the JSON the memory backend starts from; empty uses the
	// built in demo household.
	SeedFile string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
