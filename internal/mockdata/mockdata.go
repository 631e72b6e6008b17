// Package mockdata is the static directory the store falls back to when the
// API cannot be reached. Every accessor returns fresh copies.
package mockdata

import (
	"strings"
	"time"

	"github.com/kidandcat/tracker/internal/model"
)

var epoch = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func ptr(s string) *string {
	return &s
}

func Users() []model.User {
	return []model.User{
		{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin},
		{ID: "2", Name: "John Doe", Email: "john@example.com", Role: model.RoleUser},
		{ID: "3", Name: "Jane Smith", Email: "jane@example.com", Role: model.RoleUser},
		{ID: "4", Name: "Client Contact", Email: "client@example.com", Role: model.RoleUser},
	}
}

// FindUserByEmail matches case-insensitively. Passwords are never checked.
func FindUserByEmail(email string) (model.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range Users() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return model.User{}, false
}

func Projects() []model.Project {
	return []model.Project{
		{ID: "1", Name: "Website Redesign", Description: "New marketing site and design system", CreatedAt: epoch},
		{ID: "2", Name: "Mobile App", Description: "iOS and Android clients", CreatedAt: epoch.Add(24 * time.Hour)},
	}
}

func Issues() []model.Issue {
	issues := []model.Issue{
		{
			ID:          "1",
			Title:       "Set up CI pipeline",
			Description: "Build, lint and test on every push.",
			Status:      model.StatusDone,
			Priority:    model.PriorityHigh,
			AssigneeID:  ptr("2"),
			CreatedBy:   "1",
			ProjectID:   ptr("1"),
			StartDate:   ptr("2024-01-15"),
			DueDate:     ptr("2024-01-19"),
			CreatedAt:   epoch,
			Comments: []model.Comment{
				{ID: "1", AuthorID: "2", AuthorName: "John Doe", Text: "Pipeline is green.", CreatedAt: epoch.Add(48 * time.Hour)},
			},
		},
		{
			ID:          "2",
			Title:       "Design landing page",
			Description: "Hero section, pricing table and footer.",
			Status:      model.StatusInProgress,
			Priority:    model.PriorityMedium,
			AssigneeID:  ptr("3"),
			CreatedBy:   "1",
			ProjectID:   ptr("1"),
			StartDate:   ptr("2024-01-20"),
			DueDate:     ptr("2024-02-02"),
			CreatedAt:   epoch.Add(time.Hour),
		},
		{
			ID:          "3",
			Title:       "Fix login redirect",
			Description: "Users land on a blank page after signing in.",
			Status:      model.StatusReview,
			Priority:    model.PriorityHigh,
			AssigneeID:  ptr("2"),
			CreatedBy:   "3",
			ProjectID:   ptr("2"),
			DueDate:     ptr("2024-01-25"),
			CreatedAt:   epoch.Add(2 * time.Hour),
			Comments: []model.Comment{
				{ID: "2", AuthorID: "3", AuthorName: "Jane Smith", Text: "Reproduced on Safari.", CreatedAt: epoch.Add(3 * time.Hour)},
				{ID: "3", AuthorID: "2", AuthorName: "John Doe", Text: "Fix is up for review.", CreatedAt: epoch.Add(26 * time.Hour)},
			},
		},
		{
			ID:          "4",
			Title:       "Push notifications",
			Description: "Notify users when an issue is assigned to them.",
			Status:      model.StatusTodo,
			Priority:    model.PriorityLow,
			CreatedBy:   "1",
			ProjectID:   ptr("2"),
			CreatedAt:   epoch.Add(3 * time.Hour),
		},
		{
			ID:          "5",
			Title:       "Write onboarding docs",
			Description: "Getting started guide for new team members.",
			Status:      model.StatusTodo,
			Priority:    model.PriorityMedium,
			AssigneeID:  ptr("3"),
			CreatedBy:   "2",
			CreatedAt:   epoch.Add(4 * time.Hour),
		},
	}
	for i := range issues {
		issues[i].Normalize()
	}
	return issues
}
