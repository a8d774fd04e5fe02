package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Source reads a catalog from a live database.
type Source interface {
	// Connect opens the database named by dsn.
	Connect(ctx context.Context, dsn string) error

	// Load reads every user table, or only those in schemas when given.
	Load(ctx context.Context, schemas []string) (*Catalog, error)

	// Close releases the connection.
	Close() error
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Source)
)

// Register adds a source factory under a driver name. Called from init().
func Register(name string, factory func(*slog.Logger) Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// NewSource creates a source for a registered driver. A nil logger
// discards.
func NewSource(driver string, logger *slog.Logger) (Source, error) {
	registryMu.RLock()
	factory, ok := registry[driver]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownSourceError{Driver: driver, Available: ListSources()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// ListSources returns the registered driver names, sorted.
func ListSources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownSourceError is returned for an unregistered catalog driver.
type UnknownSourceError struct {
	Driver    string
	Available []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown catalog driver %q (available: %v)", e.Driver, e.Available)
}
