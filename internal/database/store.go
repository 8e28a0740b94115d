package database

import (
	"context"
	"errors"
	"fmt"

	"urly/config"
)

// ErrNotFound is returned by Get when a key does not exist
var ErrNotFound = errors.New("key not found")

// Entry is a single key/value pair
type Entry struct {
	Key   string
	Value []byte
}

// Store is a flat key/value store. Writes to the same key are last-write-wins.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens the store selected by cfg.StoreDriver
func New(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return NewSQLite(cfg.DatabasePath)
	case config.DriverConsul:
		return NewConsul(cfg.ConsulAddress, cfg.ConsulPrefix)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
