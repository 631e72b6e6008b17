package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kidandcat/tracker/internal/model"
)

// MockBackend applies mutations to the in-memory collections only. Nothing
// outlives the process.
type MockBackend struct {
	NewID func() string
	Now   func() time.Time
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

func (b *MockBackend) Remote() bool {
	return false
}

func (b *MockBackend) CreateIssue(_ context.Context, actor *model.User, in model.IssueInput) (Patch, error) {
	now := b.Now()
	return func(s *Snapshot) error {
		issue := model.Issue{
			ID:          b.uniqueID(issueIDs(s.Issues)),
			Title:       in.Title,
			Description: in.Description,
			Status:      model.StatusTodo,
			Priority:    in.Priority,
			AssigneeID:  in.AssigneeID,
			ProjectID:   in.ProjectID,
			StartDate:   in.StartDate,
			DueDate:     in.DueDate,
			CreatedAt:   now,
			Comments:    []model.Comment{},
		}
		if actor != nil {
			issue.CreatedBy = actor.ID
		}
		issue.Normalize()
		s.Issues = prependIssue(s.Issues, issue)
		return nil
	}, nil
}

func (b *MockBackend) UpdateIssueStatus(_ context.Context, id string, status model.Status) (Patch, error) {
	return func(s *Snapshot) error {
		for i := range s.Issues {
			if s.Issues[i].ID == id {
				s.Issues[i].Status = status
				return nil
			}
		}
		return fmt.Errorf("update status of %s: %w", id, ErrIssueNotFound)
	}, nil
}

func (b *MockBackend) AddComment(_ context.Context, actor *model.User, issueID, text string) (Patch, error) {
	now := b.Now()
	return func(s *Snapshot) error {
		for i := range s.Issues {
			if s.Issues[i].ID != issueID {
				continue
			}
			existing := make(map[string]bool, len(s.Issues[i].Comments))
			for _, c := range s.Issues[i].Comments {
				existing[c.ID] = true
			}
			c := model.Comment{
				ID:        b.uniqueID(existing),
				Text:      text,
				CreatedAt: now,
			}
			if actor != nil {
				c.AuthorID = actor.ID
				c.AuthorName = actor.Name
			}
			s.Issues[i].Comments = append(s.Issues[i].Comments, c)
			return nil
		}
		return fmt.Errorf("comment on %s: %w", issueID, ErrIssueNotFound)
	}, nil
}

func (b *MockBackend) CreateProject(_ context.Context, in model.ProjectInput) (Patch, error) {
	now := b.Now()
	return func(s *Snapshot) error {
		ids := make(map[string]bool, len(s.Projects))
		for _, p := range s.Projects {
			ids[p.ID] = true
		}
		s.Projects = append(s.Projects, model.Project{
			ID:          b.uniqueID(ids),
			Name:        in.Name,
			Description: in.Description,
			CreatedAt:   now,
		})
		return nil
	}, nil
}

func (b *MockBackend) CreateUser(_ context.Context, in model.UserInput) (Patch, error) {
	return func(s *Snapshot) error {
		ids := make(map[string]bool, len(s.Users))
		for _, u := range s.Users {
			if strings.EqualFold(u.Email, in.Email) {
				return fmt.Errorf("create user %s: %w", in.Email, ErrUserExists)
			}
			ids[u.ID] = true
		}
		s.Users = append(s.Users, model.User{
			ID:    b.uniqueID(ids),
			Name:  in.Name,
			Email: in.Email,
			Role:  model.NormalizeRole(string(in.Role)),
		})
		return nil
	}, nil
}

func (b *MockBackend) uniqueID(taken map[string]bool) string {
	for {
		id := b.NewID()
		if !taken[id] {
			return id
		}
	}
}

func issueIDs(issues []model.Issue) map[string]bool {
	ids := make(map[string]bool, len(issues))
	for _, i := range issues {
		ids[i.ID] = true
	}
	return ids
}
