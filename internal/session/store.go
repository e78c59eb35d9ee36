// Package session owns the authenticated identity: at most one per
// client, loaded from a durable slot at startup, replaced on every
// successful login/signup, cleared on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"studycal/internal/auth"
	appLog "studycal/internal/log"
	"studycal/internal/model"
	"studycal/internal/slot"
)

// SlotKey is the durable slot the identity is serialized into.
const SlotKey = "auth_user"

// ErrPending is returned when a login/signup is attempted while another
// one is still in flight; the caller should keep its form disabled until
// the first call resolves.
var ErrPending = errors.New("session: an auth request is already in flight")

// ValidationError is returned for missing credentials before any remote
// call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// State is the snapshot handed to listeners: Loaded flips to true once
// the startup read finished, whether or not an identity was found.
type State struct {
	Identity *model.Identity
	Loaded   bool
}

// Listener observes session changes (initial load, login, logout).
type Listener func(State)

// Store is the session state container. Login and Signup block on the
// network, so callers run them off the UI loop; the store serializes its
// own state and rejects a second call while one is pending.
type Store struct {
	slots  slot.Store
	client *auth.Client

	mu        sync.Mutex
	identity  *model.Identity
	loaded    bool
	pending   bool
	listeners []Listener
}

// New creates a store backed by the given slot store and auth gateway.
// Call Load before first use.
func New(slots slot.Store, client *auth.Client) *Store {
	return &Store{slots: slots, client: client}
}

// Load reads the identity slot. Absent or malformed data means "not
// logged in"; no error surfaces. Listeners are notified once loading
// completed.
func (s *Store) Load() {
	s.mu.Lock()
	s.identity = nil
	s.loaded = true

	data, ok, err := s.slots.Read(SlotKey)
	if err != nil {
		appLog.Error("failed to read identity slot", err, "key", SlotKey)
	} else if ok {
		var id model.Identity
		if err := json.Unmarshal(data, &id); err != nil {
			appLog.Error("malformed identity slot, treating as logged out", err, "key", SlotKey)
		} else {
			s.identity = &id
		}
	}
	s.mu.Unlock()

	s.notify()
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Identity: s.identityCopy(), Loaded: s.loaded}
}

// Current returns the active identity, or nil when logged out.
func (s *Store) Current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identityCopy()
}

// Subscribe registers a listener for session changes. Listeners are
// invoked synchronously after each change.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Login authenticates against the remote service and, on success, makes
// the returned identity current and durable.
func (s *Store) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email and password required"}
	}
	return s.authenticate(func() (model.Identity, error) {
		return s.client.Login(ctx, email, password)
	})
}

// Signup registers a new account; the contract mirrors Login with the
// name also required.
func (s *Store) Signup(ctx context.Context, name, email, password string) (*model.Identity, error) {
	if name == "" || email == "" || password == "" {
		return nil, &ValidationError{Message: "Name, email, and password required"}
	}
	return s.authenticate(func() (model.Identity, error) {
		return s.client.Signup(ctx, name, email, password)
	})
}

func (s *Store) authenticate(call func() (model.Identity, error)) (*model.Identity, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, ErrPending
	}
	s.pending = true
	s.mu.Unlock()

	id, err := call()

	s.mu.Lock()
	s.pending = false
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.identity = &id
	s.mu.Unlock()

	// Persist; a failed write leaves the session valid in memory.
	if data, err := json.Marshal(id); err != nil {
		appLog.Error("failed to serialize identity", err)
	} else if err := s.slots.Write(SlotKey, data); err != nil {
		appLog.Error("failed to write identity slot", err, "key", SlotKey)
	}

	s.notify()
	out := id
	return &out, nil
}

// Logout clears the identity in memory and in the durable slot. It cannot
// fail; a slot error only costs durability, not correctness.
func (s *Store) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	if err := s.slots.Delete(SlotKey); err != nil {
		appLog.Error("failed to clear identity slot", err, "key", SlotKey)
	}

	s.notify()
}

func (s *Store) identityCopy() *model.Identity {
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Store) notify() {
	s.mu.Lock()
	st := State{Identity: s.identityCopy(), Loaded: s.loaded}
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}
