package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// Engine names accepted by KVConfig.Engine.
const (
	EngineBadger = "badger"
	EngineBolt   = "bbolt"
	EngineMemory = "memory"
)

// KVEngine is the minimal key-value contract the session store needs.
//
// Implementations must be safe for concurrent use.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if the key doesn't exist or has expired.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Close releases the engine's resources.
	Close() error
}

// KVConfig configures a storage engine.
type KVConfig struct {
	// Engine is one of "badger", "bbolt" or "memory".
	// Default: "badger"
	Engine string

	// Dir is the storage directory (unused by the memory engine).
	Dir string

	// SyncWrites fsyncs every write (badger only).
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine:     EngineBadger,
		Dir:        dir,
		SyncWrites: true,
	}
}

// Open opens the engine named by cfg.Engine.
func Open(cfg KVConfig, log logger.Logger) (KVEngine, error) {
	if log == nil {
		log = logger.Default()
	}

	switch strings.ToLower(cfg.Engine) {
	case "", EngineBadger:
		e, err := NewBadgerEngine(cfg, log)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineBolt:
		if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
			return nil, fmt.Errorf("bbolt: create dir: %w", err)
		}
		e, err := NewBoltEngine(filepath.Join(cfg.Dir, "session.db"))
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
