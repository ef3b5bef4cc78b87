// Package session holds the client's authentication state in a single-writer
// store. The store is a passive data holder: it performs no I/O, and every
// mutation goes through a named action. Actions are synchronous and
// idempotent — repeating one with the same payload changes nothing and
// notifies no one.
package session

import (
	"sync"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
)

// State is a snapshot of the session store.
//
// IsInitialized starts false and flips to true exactly once, after the first
// bootstrap probe settles (in either direction). It never goes back.
type State struct {
	IsAuthenticated bool
	User            *api.User
	IsLoading       bool
	Error           string
	IsInitialized   bool
}

// Store owns a State and notifies subscribers on every effective change.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after every effective state change.
// The returned function unsubscribes; calling it twice is harmless.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// mutate applies fn under the lock and notifies subscribers only when fn
// reports an effective change.
func (s *Store) mutate(fn func(st *State) bool) {
	s.mu.Lock()
	changed := fn(&s.state)
	state := s.state
	s.mu.Unlock()

	if changed {
		s.notify(state)
	}
}

// Login marks the session authenticated as user and clears any error.
func (s *Store) Login(user *api.User) {
	s.mutate(func(st *State) bool {
		if st.IsAuthenticated && sameUser(st.User, user) && st.Error == "" {
			return false
		}
		st.IsAuthenticated = true
		st.User = user
		st.Error = ""
		return true
	})
}

// Logout clears authentication state. A second Logout is a no-op.
func (s *Store) Logout() {
	s.ClearAuth()
}

// SetUser replaces the current user snapshot, marking the session
// authenticated when user is non-nil and clearing it when nil.
func (s *Store) SetUser(user *api.User) {
	s.mutate(func(st *State) bool {
		auth := user != nil
		if st.IsAuthenticated == auth && sameUser(st.User, user) {
			return false
		}
		st.IsAuthenticated = auth
		st.User = user
		return true
	})
}

// ClearAuth resets to the logged-out state, keeping IsInitialized.
func (s *Store) ClearAuth() {
	s.mutate(func(st *State) bool {
		if !st.IsAuthenticated && st.User == nil && st.Error == "" && !st.IsLoading {
			return false
		}
		st.IsAuthenticated = false
		st.User = nil
		st.Error = ""
		st.IsLoading = false
		return true
	})
}

func (s *Store) SetLoading(loading bool) {
	s.mutate(func(st *State) bool {
		if st.IsLoading == loading {
			return false
		}
		st.IsLoading = loading
		return true
	})
}

func (s *Store) SetError(msg string) {
	s.mutate(func(st *State) bool {
		if st.Error == msg {
			return false
		}
		st.Error = msg
		return true
	})
}

// MarkInitialized flips IsInitialized to true. Only the first call has any
// effect; the flag never resets for the lifetime of the store.
func (s *Store) MarkInitialized() {
	s.mutate(func(st *State) bool {
		if st.IsInitialized {
			return false
		}
		st.IsInitialized = true
		return true
	})
}

func sameUser(a, b *api.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Email == b.Email && a.DisplayName == b.DisplayName &&
		a.Bio == b.Bio && a.Gender == b.Gender && a.IsAdmin == b.IsAdmin &&
		sameBirthData(a.BirthData, b.BirthData)
}

func sameBirthData(a, b *api.BirthData) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
