package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

func openEngines(t *testing.T) map[string]KVEngine {
	t.Helper()

	badgerEngine, err := NewBadgerEngine(KVConfig{Dir: t.TempDir()}, logger.Nop())
	if err != nil {
		t.Fatalf("NewBadgerEngine: %v", err)
	}
	boltEngine, err := NewBoltEngine(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("NewBoltEngine: %v", err)
	}

	engines := map[string]KVEngine{
		EngineBadger: badgerEngine,
		EngineBolt:   boltEngine,
		EngineMemory: NewMemoryEngine(),
	}
	t.Cleanup(func() {
		for _, e := range engines {
			e.Close()
		}
	})
	return engines
}

func TestKVEngine_Contract(t *testing.T) {
	ctx := context.Background()

	for name, engine := range openEngines(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("session")

			if _, err := engine.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("Get on empty engine: err = %v, want ErrKeyNotFound", err)
			}

			if err := engine.Set(ctx, key, []byte("v1"), time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := engine.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "v1" {
				t.Errorf("Get = %q, want v1", got)
			}

			if err := engine.Set(ctx, key, []byte("v2"), 0); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = engine.Get(ctx, key)
			if string(got) != "v2" {
				t.Errorf("Get after overwrite = %q, want v2", got)
			}

			if err := engine.Delete(ctx, key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := engine.Delete(ctx, key); err != nil {
				t.Fatalf("second Delete: %v", err)
			}
			if _, err := engine.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after Delete: err = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestMemoryEngine_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	e := NewMemoryEngine()
	e.now = func() time.Time { return now }

	if err := e.Set(ctx, []byte("k"), []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Get(ctx, []byte("k")); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := e.Get(ctx, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get at expiry: err = %v, want ErrKeyNotFound", err)
	}
}

func TestBoltEngine_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	e, err := NewBoltEngine(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	e.now = func() time.Time { return now }

	if err := e.Set(ctx, []byte("k"), []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := e.Get(ctx, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after expiry: err = %v, want ErrKeyNotFound", err)
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	e, err := NewBadgerEngine(KVConfig{Dir: t.TempDir()}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := e.Get(context.Background(), []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close: err = %v, want ErrClosed", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{EngineMemory, false},
		{EngineBolt, false},
		{EngineBadger, false},
		{"pebble", true},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			cfg := KVConfig{Engine: tt.engine, Dir: t.TempDir()}
			e, err := Open(cfg, logger.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if e != nil {
				e.Close()
			}
		})
	}
}

func TestNewBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine(KVConfig{}, logger.Nop()); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestOpen_FailureReturnsNilEngine(t *testing.T) {
	boltDir := t.TempDir()
	// A directory where the database file belongs makes bbolt fail to open.
	if err := os.Mkdir(filepath.Join(boltDir, "session.db"), 0o700); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  KVConfig
	}{
		{"badger without dir", KVConfig{Engine: EngineBadger}},
		{"bbolt on a directory", KVConfig{Engine: EngineBolt, Dir: boltDir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Open(tt.cfg, logger.Nop())
			if err == nil {
				e.Close()
				t.Fatal("Open() expected error")
			}
			if e != nil {
				t.Errorf("Open() engine = %#v, want untyped nil on error", e)
			}
		})
	}
}
