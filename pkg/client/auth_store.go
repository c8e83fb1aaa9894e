package client

import (
	"context"
	"errors"
	"sync"
)

// AuthState is a snapshot of the current user. User is nil when signed out.
type AuthState struct {
	User   *User
	Loaded bool
	Err    error
}

// SignedIn reports whether a user is present.
func (s AuthState) SignedIn() bool {
	return s.User != nil
}

// same reports whether o carries no news relative to s. Error states always differ.
func (s AuthState) same(o AuthState) bool {
	return s.User == o.User && s.Loaded == o.Loaded && s.Err == nil && o.Err == nil
}

// AuthStore is the observable current-user store. It is filled by Load and
// changed only by Login, Register, Logout and the client's unauthorized
// signal, which resets it to signed out.
type AuthStore struct {
	client *Client
	unhook func()

	mu     sync.Mutex
	state  AuthState
	subs   map[uint64]func(AuthState)
	nextID uint64
}

// NewAuthStore creates a store bound to c. Call Close to detach it.
func NewAuthStore(c *Client) *AuthStore {
	s := &AuthStore{client: c, subs: make(map[uint64]func(AuthState))}
	s.unhook = c.OnUnauthorized(func() {
		s.set(AuthState{Loaded: true})
	})
	return s
}

// Close detaches the store from the client's unauthorized signal.
func (s *AuthStore) Close() {
	s.unhook()
}

func (s *AuthStore) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn on every state change. The returned func unsubscribes.
func (s *AuthStore) Subscribe(fn func(AuthState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load fetches the current user once. A 401 is a signed-out result, not an error.
func (s *AuthStore) Load(ctx context.Context) error {
	u, err := s.client.CurrentUser(ctx)
	switch {
	case err == nil:
		s.set(AuthState{User: u, Loaded: true})
	case errors.Is(err, ErrUnauthorized):
		s.set(AuthState{Loaded: true})
	default:
		s.set(AuthState{Loaded: true, Err: err})
		return err
	}
	return nil
}

func (s *AuthStore) Login(ctx context.Context, req LoginRequest) (*User, error) {
	u, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(AuthState{User: u, Loaded: true})
	return u, nil
}

func (s *AuthStore) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	u, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(AuthState{User: u, Loaded: true})
	return u, nil
}

// Logout signs out locally even when the server call fails.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.set(AuthState{Loaded: true})
	return err
}

// set stores next and notifies subscribers unless nothing changed.
func (s *AuthStore) set(next AuthState) {
	s.mu.Lock()
	if s.state.same(next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	subs := make([]func(AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
