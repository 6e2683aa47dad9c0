package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for local store operations.
var (
	ErrInvalidKey = errors.New("localstore: key is invalid")
	ErrClosed     = errors.New("localstore: store is closed")
)

// Store is a string-keyed store holding one serialized value per key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations honour cancellation where the backend allows.
// - Errors: a missing key is not an error for Read or Remove.
type Store interface {
	// Read returns the value for key and whether it exists.
	Read(ctx context.Context, key string) (string, bool, error)

	// Write creates or replaces the value for key.
	Write(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key succeeds.
	Remove(ctx context.Context, key string) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis}

// ValidateKey rejects keys no backend can store safely.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, "/\\\x00") || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
