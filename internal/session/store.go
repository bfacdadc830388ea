package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"food_marketplace/internal/model"
	"food_marketplace/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Keys the session is persisted under
const (
	TokenKey = "authToken"
	UserKey  = "userData"
)

var (
	ErrInvalidSession = errors.New("session requires a non-empty token and a user")
	ErrNoUserID       = errors.New("stored user profile has no id")
)

// Session is a snapshot of who is logged in
type Session struct {
	Token   string
	User    *model.UserProfile
	Loading bool
}

// IsAuthenticated is true iff both token and user are present
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role of the logged-in user, empty when logged out
func (s Session) Role() model.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger persistence warnings are written to
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithWarningHook registers a callback for every persistence warning
func WithWarningHook(fn func(PersistenceWarning)) Option {
	return func(s *Store) { s.onWarning = fn }
}

type subscriber struct {
	fn    func(Session)
	since uint64 // transitions up to this seq are already in the snapshot Subscribe returned
}

// Store owns the process-wide session. Only Load, Login and Logout mutate it.
type Store struct {
	kv        repository.KVRepository
	logger    *log.Logger
	onWarning func(PersistenceWarning)

	mu      sync.RWMutex
	state   Session
	version uint64 // bumped by Login/Logout so a slower Load cannot overwrite them
	seq     uint64 // bumped by every transition, orders notifications
	subs    map[int]subscriber
	nextSub int

	notifyMu  sync.Mutex
	delivered uint64 // seq of the last transition handed to subscribers

	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates the store in the loading state and starts the initial load in the background
func NewStore(kv repository.KVRepository, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: log.Default(),
		state:  Session{Loading: true},
		subs:   make(map[int]subscriber),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.Load(context.Background())
	return s
}

// Ready is closed once the session has left the loading state
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with the new session after every later change and
// returns the current session taken atomically with the registration. Notifications arrive in transition order; a transition overtaken by a
// newer one that was already delivered is skipped. fn must not call Login, Logout or Load.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Session)) (Session, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscriber{fn: fn, since: s.seq}
	snap := s.state.clone()
	s.mu.Unlock()

	return snap, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load reads the persisted session. Missing, unreadable or corrupt data yields a logged-out
// session; Load never fails and always leaves Loading false.
func (s *Store) Load(ctx context.Context) Session {
	s.mu.RLock()
	startVersion := s.version
	s.mu.RUnlock()

	token, user := s.readPersisted(ctx)

	s.mu.Lock()
	if s.version == startVersion {
		s.state.Token = token
		s.state.User = user
	}
	s.state.Loading = false
	s.seq++
	seq, snap := s.seq, s.state.clone()
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify(seq, snap)
	return snap
}

// Refresh re-reads the persisted session. Loading is a one-time startup gate and is not set again.
func (s *Store) Refresh(ctx context.Context) Session {
	return s.Load(ctx)
}

// Login persists the credentials and marks the session authenticated.
// Write failures are reported as warnings; the in-memory session is updated regardless.
func (s *Store) Login(ctx context.Context, token string, user model.UserProfile) error {
	if token == "" {
		return ErrInvalidSession
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		s.warn(PersistenceWarning{Op: OpSave, Key: TokenKey, Err: err})
	}
	if err := s.kv.Set(ctx, UserKey, string(raw)); err != nil {
		s.warn(PersistenceWarning{Op: OpSave, Key: UserKey, Err: err})
	}

	s.set(Session{Token: token, User: &user})
	return nil
}

// Logout removes the persisted credentials and marks the session logged out. Safe to repeat.
func (s *Store) Logout(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.kv.Remove(ctx, key); err != nil {
			s.warn(PersistenceWarning{Op: OpRemove, Key: key, Err: err})
		}
	}
	s.set(Session{})
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	s.state = next.clone()
	s.state.Loading = false
	s.version++
	s.seq++
	seq, snap := s.seq, s.state.clone()
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify(seq, snap)
}

// readPersisted issues both reads concurrently and decodes the profile
func (s *Store) readPersisted(ctx context.Context) (string, *model.UserProfile) {
	var (
		token, rawUser    string
		hasToken, hasUser bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, ok, err := s.kv.Get(gctx, TokenKey)
		if err != nil {
			return PersistenceWarning{Op: OpLoad, Key: TokenKey, Err: err}
		}
		token, hasToken = v, ok
		return nil
	})
	g.Go(func() error {
		v, ok, err := s.kv.Get(gctx, UserKey)
		if err != nil {
			return PersistenceWarning{Op: OpLoad, Key: UserKey, Err: err}
		}
		rawUser, hasUser = v, ok
		return nil
	})
	if err := g.Wait(); err != nil {
		var w PersistenceWarning
		if !errors.As(err, &w) {
			w = PersistenceWarning{Op: OpLoad, Err: err}
		}
		s.warn(w)
		return "", nil
	}

	if !hasToken || !hasUser || token == "" {
		return "", nil
	}

	var user model.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.warn(PersistenceWarning{Op: OpDecode, Key: UserKey, Err: err})
		return "", nil
	}
	if user.ID == "" {
		s.warn(PersistenceWarning{Op: OpDecode, Key: UserKey, Err: ErrNoUserID})
		return "", nil
	}
	return token, &user
}

// notify delivers transition seq. Deliveries are serialized and never go backwards.
func (s *Store) notify(seq uint64, snap Session) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.mu.RLock()
	subs := make([]func(Session), 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.since < seq {
			subs = append(subs, sub.fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snap.clone())
	}
}

func (s *Store) warn(w PersistenceWarning) {
	if s.logger != nil {
		s.logger.Printf("WARN: %v", w)
	}
	if s.onWarning != nil {
		s.onWarning(w)
	}
}
