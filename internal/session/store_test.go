package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/storage"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, kv storage.KVEngine, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithLogger(logger.Nop())}, opts...)
	return NewStore(kv, opts...), clock
}

// failingKV fails every operation.
type failingKV struct{}

func (failingKV) Get(context.Context, []byte) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingKV) Set(context.Context, []byte, []byte, time.Duration) error {
	return errors.New("disk gone")
}
func (failingKV) Delete(context.Context, []byte) error { return errors.New("disk gone") }
func (failingKV) Close() error                         { return nil }

func TestStore_LoginExpiryScenario(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())
	now := clock.Now()

	err := store.Set(domain.Session{
		Token:     "t1",
		SubjectID: "u1",
		ExpiresAt: now.Add(86400 * time.Second),
	})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := store.Get()
	if !ok {
		t.Fatal("Get() returned no session after Set")
	}
	if got.Token != "t1" || got.SubjectID != "u1" {
		t.Errorf("Get() = %+v, want token t1 subject u1", got)
	}
	if !got.ExpiresAt.Equal(now.Add(86400 * time.Second)) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, now.Add(86400*time.Second))
	}

	clock.Advance(90000 * time.Second)
	if _, ok := store.Get(); ok {
		t.Error("Get() should return no session after expiry")
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())
	exp := clock.Now().Add(time.Hour)

	store.Set(domain.Session{Token: "old", ExpiresAt: exp})
	store.Set(domain.Session{Token: "new", ExpiresAt: exp})

	got, ok := store.Get()
	if !ok || got.Token != "new" {
		t.Errorf("Get() = %+v, want token new", got)
	}
}

func TestStore_SetRejectsInvalid(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())

	if err := store.Set(domain.Session{}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Set(empty) error = %v, want ErrInvalidSession", err)
	}
	err := store.Set(domain.Session{Token: "t1", ExpiresAt: clock.Now().Add(-time.Minute)})
	if !errors.Is(err, ErrExpiredSession) {
		t.Errorf("Set(expired) error = %v, want ErrExpiredSession", err)
	}
	if store.IsAuthenticated() {
		t.Error("store should not be authenticated")
	}
}

func TestStore_DefaultTTLCapsExpiry(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine(), WithTTL(time.Hour))
	now := clock.Now()

	store.Set(domain.Session{Token: "t1", ExpiresAt: now.Add(48 * time.Hour)})
	got, _ := store.Get()
	if !got.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want capped to %v", got.ExpiresAt, now.Add(time.Hour))
	}

	store.Set(domain.Session{Token: "opaque"})
	got, _ = store.Get()
	if !got.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt without hint = %v, want %v", got.ExpiresAt, now.Add(time.Hour))
	}
}

func TestStore_JWTClaims(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())
	now := clock.Now()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u42",
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Set(domain.Session{Token: token}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := store.Get()
	if !ok {
		t.Fatal("expected session")
	}
	if got.SubjectID != "u42" {
		t.Errorf("SubjectID = %q, want u42 from sub claim", got.SubjectID)
	}
	if !got.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want exp claim %v", got.ExpiresAt, now.Add(30*time.Minute))
	}
}

func TestStore_MalformedRecordIsAbsence(t *testing.T) {
	kv := storage.NewMemoryEngine()
	kv.Set(context.Background(), storageKey, []byte("{not json"), 0)

	store, _ := newTestStore(t, kv)
	if _, ok := store.Get(); ok {
		t.Error("malformed record should read as no session")
	}
	if _, err := kv.Get(context.Background(), storageKey); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Error("malformed record should be removed")
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())
	store.Set(domain.Session{Token: "t1", ExpiresAt: clock.Now().Add(time.Hour)})

	for i := 0; i < 2; i++ {
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() #%d error = %v", i+1, err)
		}
	}
	if store.IsAuthenticated() {
		t.Error("store should not be authenticated after Clear")
	}
}

func TestStore_ClearIf(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())
	exp := clock.Now().Add(time.Hour)

	if cleared, err := store.ClearIf("t1"); err != nil || cleared {
		t.Fatalf("ClearIf on empty store = %v, %v; want false, nil", cleared, err)
	}

	if err := store.Set(domain.Session{Token: "t2", ExpiresAt: exp}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"older token", "t1", false},
		{"empty token", "", false},
		{"current token", "t2", true},
		{"already cleared", "t2", false},
	}
	for _, tt := range tests {
		cleared, err := store.ClearIf(tt.token)
		if err != nil {
			t.Fatalf("%s: ClearIf() error = %v", tt.name, err)
		}
		if cleared != tt.want {
			t.Errorf("%s: ClearIf() = %v, want %v", tt.name, cleared, tt.want)
		}
	}
	if store.IsAuthenticated() {
		t.Error("session survived ClearIf with its own token")
	}
}

func TestStore_AuthorizationHeader(t *testing.T) {
	store, clock := newTestStore(t, storage.NewMemoryEngine())

	if _, ok := store.AuthorizationHeader(); ok {
		t.Error("no header expected without a session")
	}

	store.Set(domain.Session{Token: "t1", ExpiresAt: clock.Now().Add(time.Hour)})
	header, ok := store.AuthorizationHeader()
	if !ok || header != "Bearer t1" {
		t.Errorf("AuthorizationHeader() = %q, %v; want \"Bearer t1\", true", header, ok)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	kv := storage.NewMemoryEngine()
	first, clock := newTestStore(t, kv)
	first.Set(domain.Session{Token: "t1", SubjectID: "u1", ExpiresAt: clock.Now().Add(time.Hour)})

	second := NewStore(kv, WithClock(clock.Now), WithLogger(logger.Nop()))
	got, ok := second.Get()
	if !ok || got.Token != "t1" {
		t.Errorf("second store Get() = %+v, %v; want t1", got, ok)
	}

	second.Clear()
	if first.IsAuthenticated() {
		t.Error("clear through one store should be visible to the other")
	}
}

func TestStore_DegradesToMemory(t *testing.T) {
	store, clock := newTestStore(t, failingKV{})

	err := store.Set(domain.Session{Token: "t1", ExpiresAt: clock.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Set() should not fail hard, got %v", err)
	}
	if !store.Degraded() {
		t.Error("store should report degraded")
	}

	got, ok := store.Get()
	if !ok || got.Token != "t1" {
		t.Errorf("Get() = %+v, %v; want in-memory session", got, ok)
	}

	store.Clear()
	if store.IsAuthenticated() {
		t.Error("in-memory session should be cleared")
	}
}

func TestStore_NilEngine(t *testing.T) {
	store, clock := newTestStore(t, nil)
	store.Set(domain.Session{Token: "t1", ExpiresAt: clock.Now().Add(time.Hour)})

	if !store.IsAuthenticated() {
		t.Error("memory-only store should hold the session")
	}
	if !store.Degraded() {
		t.Error("memory-only store reports degraded")
	}
}
