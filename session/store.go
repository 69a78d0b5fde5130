// Package session tracks who is signed in and keeps their profile identity
// current as auth events arrive.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/maxwellzeha/jonduplastics/models"
	"go.uber.org/zap"
)

// ErrBackendNotProvisioned is returned by collaborators when the backing
// schema does not exist yet. It puts the store into its terminal setup state.
var ErrBackendNotProvisioned = errors.New("backend not provisioned")

// State is the lifecycle state of a Store.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
	StateSetupError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	case StateSetupError:
		return "setup_error"
	}
	return "unknown"
}

// Session is the authenticated principal as reported by the auth service.
type Session struct {
	UserID string
	Email  string
}

// EventKind names an auth state change.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// AuthEvent is delivered to identity change listeners. Session is nil when
// nobody is signed in.
type AuthEvent struct {
	Kind    EventKind
	Session *Session
}

// Identity is the signed-in user as the rest of the application sees it.
type Identity struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	BusinessAddress string
}

// Snapshot is a read-only view of the store.
type Snapshot struct {
	State      State
	Identity   *Identity
	Loading    bool
	SetupError bool
}

// AuthClient is the auth service the store listens to.
type AuthClient interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnAuthChange(fn func(AuthEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// ProfileLoader fetches the profile row of a user. A missing row is reported
// as (nil, nil).
type ProfileLoader interface {
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

// Store holds the current Identity. Consumers read it through Snapshot and
// Subscribe; only auth events and SignOut change it.
type Store struct {
	auth     AuthClient
	profiles ProfileLoader
	logger   *zap.Logger

	mu       sync.Mutex
	ctx      context.Context
	state    State
	identity *Identity
	session  *Session
	// generation discards profile loads that finished after a newer event.
	generation uint64
	subs       map[int]func(Snapshot)
	nextSub    int
	unsubAuth  func()
}

func NewStore(auth AuthClient, profiles ProfileLoader, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:     auth,
		profiles: profiles,
		logger:   logger,
		ctx:      context.Background(),
		state:    StateLoading,
		subs:     make(map[int]func(Snapshot)),
	}
}

// Start subscribes to auth events and resolves the initial session. The
// context is also used for profile loads triggered by later events.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = context.WithoutCancel(ctx)
	if s.unsubAuth == nil {
		s.unsubAuth = s.auth.OnAuthChange(func(ev AuthEvent) {
			s.onIdentityChange(s.baseContext(), ev)
		})
	}
	s.mu.Unlock()

	sess, err := s.auth.CurrentSession(ctx)
	if err != nil {
		s.logger.Warn("Failed to query current session", zap.Error(err))
		s.apply(s.begin(), StateAnonymous, nil, nil)
		return err
	}
	if sess == nil {
		s.apply(s.begin(), StateAnonymous, nil, nil)
		return nil
	}
	s.onIdentityChange(ctx, AuthEvent{Kind: EventSignedIn, Session: sess})
	return nil
}

// Close stops listening to auth events.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsubAuth
	s.unsubAuth = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Store) onIdentityChange(ctx context.Context, ev AuthEvent) {
	gen := s.begin()
	if gen == 0 {
		return
	}
	if ev.Session == nil {
		s.apply(gen, StateAnonymous, nil, nil)
		return
	}

	sess := *ev.Session
	profile, err := s.profiles.Profile(ctx, sess.UserID)
	switch {
	case errors.Is(err, ErrBackendNotProvisioned):
		s.logger.Error("Profile storage is not provisioned", zap.String("user_id", sess.UserID))
		s.apply(gen, StateSetupError, nil, nil)
	case err != nil:
		s.logger.Warn("Failed to load profile, using session identity", zap.String("user_id", sess.UserID), zap.Error(err))
		s.apply(gen, StateAuthenticated, fallbackIdentity(sess), &sess)
	case profile == nil:
		s.apply(gen, StateAuthenticated, fallbackIdentity(sess), &sess)
	default:
		s.apply(gen, StateAuthenticated, identityFromProfile(sess, profile), &sess)
	}
}

// SignOut signs out remotely, then clears the local identity whatever the
// outcome. The remote error is returned.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	if err != nil {
		s.logger.Warn("Remote sign out failed", zap.Error(err))
	}
	if gen := s.begin(); gen != 0 {
		s.apply(gen, StateAnonymous, nil, nil)
	}
	return err
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Session returns the auth session backing the current identity, if any.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

// Subscribe registers fn to be called with a fresh snapshot after every state
// change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// begin starts handling a new event: the previous error is cleared and the
// store reports loading until apply. It returns 0 once in SetupError.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	if s.state == StateSetupError {
		s.mu.Unlock()
		return 0
	}
	s.generation++
	gen := s.generation
	changed := s.state != StateLoading
	s.state = StateLoading
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()

	if changed {
		notify(subs, snap)
	}
	return gen
}

func (s *Store) apply(gen uint64, state State, identity *Identity, sess *Session) {
	s.mu.Lock()
	if gen != s.generation || s.state == StateSetupError {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.identity = identity
	s.session = sess
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Loading:    s.state == StateLoading,
		SetupError: s.state == StateSetupError,
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func fallbackIdentity(sess Session) *Identity {
	return &Identity{ID: sess.UserID, Email: sess.Email}
}

func identityFromProfile(sess Session, p *models.Profile) *Identity {
	email := p.Email
	if email == "" {
		email = sess.Email
	}
	return &Identity{
		ID:              sess.UserID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           email,
		Phone:           p.Phone,
		BusinessAddress: p.BusinessAddress,
	}
}
