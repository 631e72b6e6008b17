package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/mockdata"
	"github.com/kidandcat/tracker/internal/model"
)

// Login tries the API first. On any remote failure it falls back to the
// static directory, matching by email only and accepting any password; that
// path is a demo mode, not a security boundary. It reports whether an
// identity was established and never returns an error.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	res, err := s.client.Login(ctx, model.Credentials{Email: email, Password: password})
	if err == nil {
		s.establish(res.User, true)
		if err := s.Reload(ctx); err != nil {
			s.log.Warn("load data after login", zap.Error(err))
		}
		// A 401 during the first reload ends the session again.
		return s.Session() == Authenticated
	}

	s.log.Warn("remote login failed, trying local directory",
		zap.String("email", email),
		zap.Error(err),
	)
	u, ok := mockdata.FindUserByEmail(email)
	if !ok {
		return false
	}
	s.establish(u, false)
	return true
}

// Register creates an account through the API and adopts it. There is no
// local fallback.
func (s *Store) Register(ctx context.Context, in model.UserInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := s.client.Register(ctx, in)
	if err != nil {
		return err
	}
	s.establish(res.User, true)
	if err := s.Reload(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		s.log.Warn("load data after register", zap.Error(err))
	}
	return nil
}

// Logout clears the token, the user and API mode. State is cleared even when
// removing the token fails; that error is returned.
func (s *Store) Logout(ctx context.Context) error {
	err := s.state.Delete(ctx, localstate.TokenKey)
	s.update(func(sn *Snapshot) {
		s.gen++
		s.backend = s.mock
		sn.Session = Unauthenticated
		sn.User = nil
		sn.UseAPI = false
		sn.IsLoading = false
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// RestoreSession resolves a persisted token into a user. An Unauthorized
// answer logs the session out. Any other failure keeps the token and leaves
// the store in Restoring with no user, since a flaky network must not force a
// logout. Failures are logged, not returned.
func (s *Store) RestoreSession(ctx context.Context) SessionState {
	token, err := localstate.Token(ctx, s.state)
	if err != nil {
		s.log.Warn("read persisted token", zap.Error(err))
		return s.Session()
	}
	if token == "" {
		return s.Session()
	}

	s.update(func(sn *Snapshot) {
		sn.Session = Restoring
		sn.IsLoading = true
	})

	u, err := s.client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.log.Info("persisted session rejected, logging out")
			s.teardown(ctx)
			return Unauthenticated
		}
		s.log.Warn("session restore degraded, keeping token", zap.Error(err))
		s.update(func(sn *Snapshot) {
			sn.Session = Restoring
			sn.User = nil
			sn.IsLoading = false
		})
		return Restoring
	}

	s.establish(*u, true)
	if err := s.Reload(ctx); err != nil {
		s.log.Warn("load data after restore", zap.Error(err))
	}
	return s.Session()
}

// Reload fetches issues, users and projects from the API and replaces local
// state. It is a no-op outside API mode. If the issue or user fetch fails the
// store drops back to mock mode and the static collections; a 401 ends the
// session instead. A failed project fetch only keeps the previous projects.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	useAPI, gen := s.snap.UseAPI, s.gen
	s.mu.Unlock()
	if !useAPI {
		return nil
	}

	s.update(func(sn *Snapshot) { sn.IsLoading = true })

	issues, err := s.client.ListIssues(ctx, api.IssueFilter{})
	var users []model.User
	if err == nil {
		users, err = s.client.ListUsers(ctx)
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.teardown(ctx)
			return err
		}
		s.log.Warn("bootstrap fetch failed, using mock data", zap.Error(err))
		s.update(func(sn *Snapshot) {
			if s.gen != gen {
				sn.IsLoading = false
				return
			}
			s.backend = s.mock
			sn.UseAPI = false
			sn.Issues = mockdata.Issues()
			sn.Users = mockdata.Users()
			sn.Projects = mockdata.Projects()
			sn.IsLoading = false
		})
		return err
	}

	projects, perr := s.client.ListProjects(ctx)
	if perr != nil {
		if errors.Is(perr, api.ErrUnauthorized) {
			s.teardown(ctx)
			return perr
		}
		s.log.Warn("project fetch failed, keeping previous projects", zap.Error(perr))
	}

	s.update(func(sn *Snapshot) {
		sn.IsLoading = false
		if s.gen != gen {
			return
		}
		sn.Issues = issues
		sn.Users = users
		if perr == nil {
			sn.Projects = projects
		}
	})
	return nil
}

func (s *Store) establish(u model.User, remote bool) {
	u.Role = model.NormalizeRole(string(u.Role))
	s.update(func(sn *Snapshot) {
		s.gen++
		if remote {
			s.backend = s.remote
		} else {
			s.backend = s.mock
		}
		sn.Session = Authenticated
		sn.User = &u
		sn.UseAPI = remote
		sn.IsLoading = false
	})
}

// teardown ends the session after the server rejected it. The client has
// already removed the token; deleting again keeps token and user in step if
// the token was re-written in between.
func (s *Store) teardown(ctx context.Context) {
	if err := s.state.Delete(context.WithoutCancel(ctx), localstate.TokenKey); err != nil {
		s.log.Warn("clear token", zap.Error(err))
	}
	s.update(func(sn *Snapshot) {
		s.gen++
		s.backend = s.mock
		sn.Session = Unauthenticated
		sn.User = nil
		sn.UseAPI = false
		sn.IsLoading = false
	})
}
