package db

import (
	"context"
	"fmt"

	"github.com/kidandcat/tracker/internal/mockdata"
)

// Seed loads the demo directory into an empty database so the server answers
// with the same people, projects and issues the client shows offline. Every
// seeded account gets passwordHash. It does nothing if any user exists.
func (d *DB) Seed(ctx context.Context, passwordHash string) (bool, error) {
	var n int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	users := map[string]int64{}
	for _, u := range mockdata.Users() {
		created, err := d.CreateUser(ctx, u.Email, u.Name, string(u.Role), passwordHash)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		users[u.ID] = created.ID
	}

	projects := map[string]int64{}
	for _, p := range mockdata.Projects() {
		created, err := d.CreateProject(ctx, p.Name, p.Description)
		if err != nil {
			return false, fmt.Errorf("seed project %s: %w", p.Name, err)
		}
		projects[p.ID] = created.ID
	}

	lookup := func(m map[string]int64, id *string) *int64 {
		if id == nil {
			return nil
		}
		if v, ok := m[*id]; ok {
			return &v
		}
		return nil
	}

	for _, i := range mockdata.Issues() {
		created, err := d.CreateIssue(ctx, Issue{
			Title:       i.Title,
			Description: i.Description,
			Status:      string(i.Status),
			Priority:    string(i.Priority),
			AssigneeID:  lookup(users, i.AssigneeID),
			CreatedBy:   lookup(users, &i.CreatedBy),
			ProjectID:   lookup(projects, i.ProjectID),
			StartDate:   i.StartDate,
			DueDate:     i.DueDate,
		})
		if err != nil {
			return false, fmt.Errorf("seed issue %q: %w", i.Title, err)
		}
		for _, c := range i.Comments {
			author, ok := users[c.AuthorID]
			if !ok {
				continue
			}
			if _, err := d.CreateComment(ctx, created.ID, author, c.Text); err != nil {
				return false, fmt.Errorf("seed comment on %q: %w", i.Title, err)
			}
		}
	}
	return true, nil
}
