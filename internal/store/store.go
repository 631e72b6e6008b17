// Package store holds who is logged in and the current issue, user and
// project lists, and keeps them in step with the API.
//
// A Store starts unauthenticated in mock mode. Login or RestoreSession
// switch it to the remote backend when the API confirms the identity; a 401
// from any remote call, or Logout, switches it back.
package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/mockdata"
	"github.com/kidandcat/tracker/internal/model"
)

type SessionState int

const (
	Unauthenticated SessionState = iota
	Restoring
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot is a consistent copy of the store's state. Callers may keep and
// modify it freely.
type Snapshot struct {
	Session   SessionState
	User      *model.User
	Issues    []model.Issue
	Users     []model.User
	Projects  []model.Project
	UseAPI    bool
	IsLoading bool
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.User != nil {
		u := s.User.Clone()
		out.User = &u
	}
	out.Issues = make([]model.Issue, len(s.Issues))
	for i, issue := range s.Issues {
		out.Issues[i] = issue.Clone()
	}
	out.Users = make([]model.User, len(s.Users))
	for i, u := range s.Users {
		out.Users[i] = u.Clone()
	}
	out.Projects = append([]model.Project(nil), s.Projects...)
	return out
}

type Store struct {
	client *api.Client
	state  localstate.Store
	log    *zap.Logger

	remote Backend
	mock   Backend

	mu      sync.Mutex
	snap    Snapshot
	backend Backend
	// gen changes whenever a session is established or torn down, so results
	// of calls started under an earlier session can be dropped.
	gen     uint64
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Store)

// WithMockBackend replaces the in-memory backend, mostly for deterministic ids
// in tests.
func WithMockBackend(b Backend) Option {
	return func(s *Store) {
		s.mock = b
	}
}

func New(client *api.Client, state localstate.Store, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		client: client,
		state:  state,
		log:    log,
		remote: NewRemoteBackend(client),
		mock:   NewMockBackend(),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.backend = s.mock
	s.snap = Snapshot{
		Session:  Unauthenticated,
		Issues:   mockdata.Issues(),
		Users:    mockdata.Users(),
		Projects: mockdata.Projects(),
	}
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

func (s *Store) User() *model.User {
	return s.Snapshot().User
}

func (s *Store) Issues() []model.Issue {
	return s.Snapshot().Issues
}

func (s *Store) Users() []model.User {
	return s.Snapshot().Users
}

func (s *Store) Projects() []model.Project {
	return s.Snapshot().Projects
}

func (s *Store) UseAPI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.UseAPI
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.IsLoading
}

func (s *Store) Session() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Session
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
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

// update applies fn under the lock and notifies subscribers.
func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	snap, subs := s.publishLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

func (s *Store) publishLocked() (Snapshot, []func(Snapshot)) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.snap.clone(), subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
