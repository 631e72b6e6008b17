package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/model"
)

// CreateIssue adds an issue at the front of the list. In mock mode the new
// issue always starts as todo with a fresh id.
func (s *Store) CreateIssue(ctx context.Context, in model.IssueInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, func(b Backend, actor *model.User) (Patch, error) {
		return b.CreateIssue(ctx, actor, in)
	})
}

func (s *Store) UpdateIssueStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return errors.New("invalid status " + string(status))
	}
	return s.mutate(ctx, func(b Backend, _ *model.User) (Patch, error) {
		return b.UpdateIssueStatus(ctx, id, status)
	})
}

// AddComment appends a comment authored by the current user.
func (s *Store) AddComment(ctx context.Context, issueID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	return s.mutate(ctx, func(b Backend, actor *model.User) (Patch, error) {
		return b.AddComment(ctx, actor, issueID, text)
	})
}

func (s *Store) CreateProject(ctx context.Context, in model.ProjectInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, func(b Backend, _ *model.User) (Patch, error) {
		return b.CreateProject(ctx, in)
	})
}

func (s *Store) CreateUser(ctx context.Context, in model.UserInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, func(b Backend, _ *model.User) (Patch, error) {
		return b.CreateUser(ctx, in)
	})
}

// mutate runs one backend call outside the lock and applies its patch to the
// latest state. There is no retry and no sequencing between concurrent calls:
// whichever patch lands last wins. A result that arrives after the session
// changed is discarded.
func (s *Store) mutate(ctx context.Context, call func(Backend, *model.User) (Patch, error)) error {
	s.mu.Lock()
	b, gen := s.backend, s.gen
	var actor *model.User
	if s.snap.User != nil {
		u := s.snap.User.Clone()
		actor = &u
	}
	s.mu.Unlock()

	patch, err := call(b, actor)
	if err != nil {
		if b.Remote() && errors.Is(err, api.ErrUnauthorized) {
			s.teardown(ctx)
		}
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.log.Debug("dropping result from a previous session")
		return nil
	}
	if err := patch(&s.snap); err != nil {
		s.mu.Unlock()
		return err
	}
	snap, subs := s.publishLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// IssueByID looks an issue up in the current list.
func (s *Store) IssueByID(id string) (model.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.snap.Issues {
		if i.ID == id {
			return i.Clone(), true
		}
	}
	return model.Issue{}, false
}

// UserName resolves a user id against the cached user list.
func (s *Store) UserName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.snap.Users {
		if u.ID == id {
			return u.Name
		}
	}
	if id == "" {
		return ""
	}
	s.log.Debug("unknown user id", zap.String("id", id))
	return id
}
