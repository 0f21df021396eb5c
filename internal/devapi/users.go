package devapi

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/yndnr/sessiongate/pkg/cmap"
	"github.com/yndnr/sessiongate/pkg/token"
)

var (
	errEmailTaken     = errors.New("email already registered")
	errBadCredentials = errors.New("invalid credentials")
	errUnknownAccount = errors.New("account not found")
	errResetToken     = errors.New("invalid or expired reset token")
)

type user struct {
	ID          string
	DisplayName string
	Email       string
	Hash        []byte
	CreatedAt   time.Time
}

// pendingReset is an outstanding reset token, stored by hash.
type pendingReset struct {
	hash    string
	expires time.Time
}

// directory is the in-memory account table. byEmail is the uniqueness
// index; an account is visible by ID only after it owns its email. Users
// are never mutated in place; a password change stores a copy.
type directory struct {
	byID    *cmap.Map[string, *user]
	byEmail *cmap.Map[string, *user]

	resetMu  sync.Mutex
	resets   *cmap.Map[string, pendingReset] // user ID -> reset
	resetTTL time.Duration

	cost int
	now  func() time.Time
}

func newDirectory(cost int, resetTTL time.Duration, now func() time.Time) *directory {
	return &directory{
		byID:     cmap.New[string, *user](),
		byEmail:  cmap.New[string, *user](),
		resets:   cmap.New[string, pendingReset](),
		resetTTL: resetTTL,
		cost:     cost,
		now:      now,
	}
}

func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

func (d *directory) create(displayName, email, password string) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, err
	}

	u := &user{
		ID:          uuid.NewString(),
		DisplayName: strings.TrimSpace(displayName),
		Email:       foldEmail(email),
		Hash:        hash,
		CreatedAt:   d.now().UTC(),
	}
	if !d.byEmail.SetIfAbsent(u.Email, u) {
		return nil, errEmailTaken
	}
	d.byID.Set(u.ID, u)
	return u, nil
}

// lookup finds a user by ID or email.
func (d *directory) lookup(identifier string) (*user, bool) {
	if u, ok := d.byID.Get(strings.TrimSpace(identifier)); ok {
		return u, true
	}
	return d.byEmail.Get(foldEmail(identifier))
}

func (d *directory) authenticate(identifier, password string) (*user, error) {
	u, ok := d.lookup(identifier)
	if !ok {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return u, nil
}

func (d *directory) byUserID(id string) (*user, error) {
	u, ok := d.byID.Get(id)
	if !ok {
		return nil, errUnknownAccount
	}
	return u, nil
}

// issueReset creates a reset token for u, replacing any earlier one. Only
// its hash is kept.
func (d *directory) issueReset(u *user) (string, error) {
	tok, err := token.Generate()
	if err != nil {
		return "", err
	}
	d.resetMu.Lock()
	d.resets.Set(u.ID, pendingReset{hash: token.Hash(tok), expires: d.now().Add(d.resetTTL)})
	d.resetMu.Unlock()
	return tok, nil
}

// checkReset reports whether tok is the live reset token for email.
func (d *directory) checkReset(email, tok string) bool {
	u, ok := d.byEmail.Get(foldEmail(email))
	if !ok {
		return false
	}
	rec, ok := d.resets.Get(u.ID)
	return ok && d.now().Before(rec.expires) && token.Verify(tok, rec.hash)
}

// redeemReset consumes tok and sets the owner's password. A token is
// accepted once.
func (d *directory) redeemReset(tok, password string) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, err
	}

	d.resetMu.Lock()
	var userID string
	var found pendingReset
	d.resets.Range(func(id string, rec pendingReset) bool {
		if token.Verify(tok, rec.hash) {
			userID, found = id, rec
			return false
		}
		return true
	})
	if userID != "" {
		d.resets.Delete(userID)
	}
	d.resetMu.Unlock()

	if userID == "" || !d.now().Before(found.expires) {
		return nil, errResetToken
	}
	u, ok := d.byID.Get(userID)
	if !ok {
		return nil, errResetToken
	}

	next := *u
	next.Hash = hash
	d.byEmail.Set(next.Email, &next)
	d.byID.Set(next.ID, &next)
	return &next, nil
}

// count returns the number of registered accounts.
func (d *directory) count() int {
	return d.byID.Count()
}
