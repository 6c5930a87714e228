package session

import (
	"context"
	"sync"

	"spacerh.dev/internal/hr"
)

// API is the slice of the HTTP client the session layer depends on.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (hr.User, error)
	SetToken(token string)
	ClearToken()
}

// Credentials persists the bearer token between runs.
type Credentials interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// State is an immutable snapshot of the session. Loading is true from
// construction until the first Recover resolves.
type State struct {
	User          *hr.User
	Token         string
	Authenticated bool
	Loading       bool
}

// Store owns the session state. All transitions are atomic: observers
// never see a token without its user or a half-cleared logout.
type Store struct {
	api   API
	creds Credentials

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewStore creates a session store in the loading state.
func NewStore(api API, creds Credentials) *Store {
	return &Store{
		api:   api,
		creds: creds,
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers an observer called on every state change. The
// returned function cancels the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Login exchanges credentials for a token and loads the profile behind
// it. The session flips to authenticated only after both steps succeed;
// a profile failure logs the session out entirely, even one that was
// authenticated before the attempt.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.Logout()
		return err
	}

	// The in-memory session stands even if the token cannot be written
	// to disk; the next start simply asks for credentials again.
	_ = s.creds.Save(token)

	s.transition(State{
		User:          &user,
		Token:         token,
		Authenticated: true,
	})
	return nil
}

// Logout clears the token, the stored credentials and the state. It is
// idempotent: calling it on a dead session changes nothing.
func (s *Store) Logout() {
	s.api.ClearToken()
	_ = s.creds.Clear()
	s.transition(State{})
}

// Recover restores the session from stored credentials. Without a
// stored token it resolves immediately and performs no network call. A
// rejected token is wiped so the next start is clean. Loading drops
// exactly once; later calls are no-ops.
func (s *Store) Recover(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.Loading {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	token, err := s.creds.Load()
	if err != nil || token == "" {
		s.transition(State{})
		return err
	}

	s.api.SetToken(token)
	user, uerr := s.api.Me(ctx)
	if uerr != nil {
		s.api.ClearToken()
		_ = s.creds.Clear()
		s.transition(State{})
		return uerr
	}

	s.transition(State{
		User:          &user,
		Token:         token,
		Authenticated: true,
	})
	return nil
}

// HandleUnauthorized is the hook for the client adapter: a rejected
// token anywhere outside login kills the session.
func (s *Store) HandleUnauthorized() {
	s.Logout()
}

// transition swaps the state and notifies subscribers when it changed.
func (s *Store) transition(next State) {
	s.mu.Lock()
	if statesEqual(s.state, next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func statesEqual(a, b State) bool {
	if a.Token != b.Token || a.Authenticated != b.Authenticated || a.Loading != b.Loading {
		return false
	}
	if (a.User == nil) != (b.User == nil) {
		return false
	}
	if a.User != nil && a.User.ID != b.User.ID {
		return false
	}
	return true
}
