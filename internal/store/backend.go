package store

import (
	"context"
	"errors"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/model"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrUserExists    = errors.New("user already exists")
	ErrEmptyComment  = errors.New("comment text is required")
)

// Patch applies a backend result to the store's state. It runs under the
// store lock against the latest state, not the state the call started from.
type Patch func(*Snapshot) error

// Backend is one of the two mutation strategies. The store picks one when a
// session is established or torn down and never branches on mode per call.
type Backend interface {
	Remote() bool
	CreateIssue(ctx context.Context, actor *model.User, in model.IssueInput) (Patch, error)
	UpdateIssueStatus(ctx context.Context, id string, status model.Status) (Patch, error)
	AddComment(ctx context.Context, actor *model.User, issueID, text string) (Patch, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (Patch, error)
	CreateUser(ctx context.Context, in model.UserInput) (Patch, error)
}

// RemoteBackend sends every mutation to the API. Created entities are merged
// into local state; status changes and new comments reload the whole issue
// list so server-derived fields (comment author names, timestamps) are never
// stale. The extra round trip is accepted.
type RemoteBackend struct {
	client *api.Client
}

func NewRemoteBackend(client *api.Client) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (b *RemoteBackend) Remote() bool {
	return true
}

func (b *RemoteBackend) CreateIssue(ctx context.Context, _ *model.User, in model.IssueInput) (Patch, error) {
	issue, err := b.client.CreateIssue(ctx, in)
	if err != nil {
		return nil, err
	}
	created := *issue
	return func(s *Snapshot) error {
		s.Issues = prependIssue(s.Issues, created)
		return nil
	}, nil
}

func (b *RemoteBackend) UpdateIssueStatus(ctx context.Context, id string, status model.Status) (Patch, error) {
	if _, err := b.client.UpdateIssueStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return b.reloadIssues(ctx)
}

func (b *RemoteBackend) AddComment(ctx context.Context, _ *model.User, issueID, text string) (Patch, error) {
	if _, err := b.client.CreateComment(ctx, issueID, text); err != nil {
		return nil, err
	}
	return b.reloadIssues(ctx)
}

func (b *RemoteBackend) CreateProject(ctx context.Context, in model.ProjectInput) (Patch, error) {
	p, err := b.client.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	created := *p
	return func(s *Snapshot) error {
		s.Projects = upsertProject(s.Projects, created)
		return nil
	}, nil
}

func (b *RemoteBackend) CreateUser(ctx context.Context, in model.UserInput) (Patch, error) {
	u, err := b.client.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	created := *u
	return func(s *Snapshot) error {
		s.Users = upsertUser(s.Users, created)
		return nil
	}, nil
}

func (b *RemoteBackend) reloadIssues(ctx context.Context) (Patch, error) {
	issues, err := b.client.ListIssues(ctx, api.IssueFilter{})
	if err != nil {
		return nil, err
	}
	return func(s *Snapshot) error {
		s.Issues = issues
		return nil
	}, nil
}

// prependIssue puts issue first, dropping any older entry with the same id.
func prependIssue(issues []model.Issue, issue model.Issue) []model.Issue {
	out := make([]model.Issue, 0, len(issues)+1)
	out = append(out, issue)
	for _, i := range issues {
		if i.ID != issue.ID {
			out = append(out, i)
		}
	}
	return out
}

func upsertProject(projects []model.Project, p model.Project) []model.Project {
	for i := range projects {
		if projects[i].ID == p.ID {
			projects[i] = p
			return projects
		}
	}
	return append(projects, p)
}

func upsertUser(users []model.User, u model.User) []model.User {
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			return users
		}
	}
	return append(users, u)
}
