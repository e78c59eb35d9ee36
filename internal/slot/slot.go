// Package slot implements the durable key-value slots the application
// persists its state into: one key per concern (events, identity, feed
// cache entries), each holding an opaque JSON payload.
package slot

import (
	"fmt"
	"strings"
)

// Driver identifies a slot backend.
type Driver string

const (
	// DriverFile stores each slot as a file under a data directory.
	DriverFile Driver = "file"
	// DriverSQLite stores slots in a single SQLite database file.
	DriverSQLite Driver = "sqlite"
	// DriverMemory keeps slots in memory only; used in tests.
	DriverMemory Driver = "memory"
)

// Store is a durable key-value slot store. Read reports ok=false when the
// key has never been written. Implementations are safe for use from
// multiple goroutines.
type Store interface {
	Read(key string) (value []byte, ok bool, err error)
	Write(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open constructs a Store for the given driver. dataDir is ignored by the
// memory driver.
func Open(driver Driver, dataDir string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(dataDir)
	case DriverSQLite:
		return NewSQLite(dataDir)
	default:
		return nil, fmt.Errorf("slot: unknown driver %q", driver)
	}
}

// sanitizeKey rejects keys that could escape a storage root or collide
// with backend-internal names.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("slot: empty key")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("slot: invalid key %q", key)
	}
	return key, nil
}
