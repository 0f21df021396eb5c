package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/storage"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// storageKey is the single key holding the persisted session.
var storageKey = []byte("session")

var (
	// ErrInvalidSession is returned by Set for a session without a token.
	ErrInvalidSession = errors.New("session: token is required")
	// ErrExpiredSession is returned by Set for a session that is already expired.
	ErrExpiredSession = errors.New("session: already expired")
)

// record is the persisted layout.
type record struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	SubjectID string    `json:"subjectId,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// Store holds the current session.
type Store struct {
	mu       sync.Mutex
	kv       storage.KVEngine
	mem      *domain.Session
	degraded bool

	ttl    time.Duration
	now    func() time.Time
	logger logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the maximum lifetime from issuance. Default: 24h.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store persisting to kv. A nil kv gives a memory-only store.
func NewStore(kv storage.KVEngine, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		ttl:    domain.DefaultSessionTTL,
		now:    time.Now,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// Get returns the current session if one exists and has not expired.
func (s *Store) Get() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.load()
	if sess == nil {
		return nil, false
	}
	if !sess.IsValidAt(s.now()) {
		s.logger.Debug("persisted session expired", "subject_id", sess.SubjectID)
		s.removeLocked()
		return nil, false
	}
	out := *sess
	return &out, true
}

// Set replaces the current session.
//
// The stored expiry is the session's ExpiresAt, or the token's JWT exp
// claim, or IssuedAt+TTL, whichever is known first, and never later than
// IssuedAt+TTL.
func (s *Store) Set(sess domain.Session) error {
	if sess.Token == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess.IssuedAt.IsZero() {
		sess.IssuedAt = now
	}
	claims := readClaims(sess.Token)
	if sess.SubjectID == "" {
		sess.SubjectID = claims.subject
	}
	sess.ExpiresAt = s.resolveExpiry(sess, claims)
	if !sess.IsValidAt(now) {
		return ErrExpiredSession
	}

	s.mem = &sess
	if s.kv == nil || s.degraded {
		return nil
	}

	data, err := json.Marshal(record{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		SubjectID: sess.SubjectID,
		IssuedAt:  sess.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.kv.Set(context.Background(), storageKey, data, sess.TTLAt(now)); err != nil {
		s.degrade("write", err)
		return nil
	}

	s.logger.Debug("session stored", "subject_id", sess.SubjectID, "expires_at", sess.ExpiresAt)
	return nil
}

// Clear removes the session. It is idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked()
	s.logger.Debug("session cleared")
	return nil
}

// ClearIf removes the session only if it still holds token. It reports
// whether a session was removed. A response about an older token then
// cannot discard a session stored after that request was sent.
func (s *Store) ClearIf(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	if cur == nil || token == "" || cur.Token != token {
		return false, nil
	}
	s.removeLocked()
	s.logger.Debug("session cleared")
	return true, nil
}

// IsAuthenticated reports whether a valid session exists.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Get()
	return ok
}

// AuthorizationHeader returns "Bearer <token>" while authenticated.
func (s *Store) AuthorizationHeader() (string, bool) {
	sess, ok := s.Get()
	if !ok {
		return "", false
	}
	return sess.AuthorizationHeader(), true
}

// Degraded reports whether the store has fallen back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv == nil || s.degraded
}

// load reads the current session without validating its expiry.
func (s *Store) load() *domain.Session {
	if s.kv == nil || s.degraded {
		return s.mem
	}

	data, err := s.kv.Get(context.Background(), storageKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("session storage read failed, using in-memory session", "error", err)
		return s.mem
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Token == "" {
		s.logger.Warn("discarding unreadable persisted session", "error", err)
		s.removeLocked()
		return nil
	}
	return &domain.Session{
		Token:     rec.Token,
		SubjectID: rec.SubjectID,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}

func (s *Store) removeLocked() {
	s.mem = nil
	if s.kv == nil || s.degraded {
		return
	}
	if err := s.kv.Delete(context.Background(), storageKey); err != nil {
		s.degrade("delete", err)
	}
}

// degrade switches to memory-only operation for the rest of the process.
func (s *Store) degrade(op string, err error) {
	s.degraded = true
	s.logger.Warn("session storage unavailable, session will not survive restart",
		"op", op,
		"error", err,
	)
}
