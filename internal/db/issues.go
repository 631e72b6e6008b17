package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Issue struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  *int64    `json:"assignee_id"`
	CreatedBy   *int64    `json:"created_by"`
	ProjectID   *int64    `json:"project_id"`
	StartDate   *string   `json:"start_date"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []Comment `json:"comments"`
}

type Comment struct {
	ID         int64     `json:"id"`
	IssueID    int64     `json:"issue_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type IssueFilter struct {
	ProjectID  *int64
	AssigneeID *int64
	Status     string
}

type IssuePatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *int64
	ProjectID   *int64
	StartDate   *string
	DueDate     *string
}

const issueColumns = `id, title, description, status, priority, assignee_id, created_by,
	project_id, start_date, due_date, created_at, updated_at`

func scanIssue(row interface{ Scan(...any) error }) (*Issue, error) {
	var i Issue
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.Priority, &i.AssigneeID,
		&i.CreatedBy, &i.ProjectID, &i.StartDate, &i.DueDate, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Comments = []Comment{}
	return &i, nil
}

// ListIssues returns matching issues newest first, each with its comments in
// the order they were written.
func (d *DB) ListIssues(ctx context.Context, f IssueFilter) ([]Issue, error) {
	var where []string
	var args []any
	if f.ProjectID != nil {
		where = append(where, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.AssigneeID != nil {
		where = append(where, "assignee_id = ?")
		args = append(args, *f.AssigneeID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	q := "SELECT " + issueColumns + " FROM issues"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []Issue{}
	index := map[int64]int{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		index[i.ID] = len(issues)
		issues = append(issues, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return issues, nil
	}

	comments, err := d.queryComments(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if pos, ok := index[c.IssueID]; ok {
			issues[pos].Comments = append(issues[pos].Comments, c)
		}
	}
	return issues, nil
}

func (d *DB) IssueByID(ctx context.Context, id int64) (*Issue, error) {
	i, err := scanIssue(d.sql.QueryRowContext(ctx, "SELECT "+issueColumns+" FROM issues WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	i.Comments, err = d.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (d *DB) CreateIssue(ctx context.Context, i Issue) (*Issue, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO issues (title, description, status, priority, assignee_id, created_by,
			project_id, start_date, due_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.Title, i.Description, i.Status, i.Priority, i.AssigneeID, i.CreatedBy,
		i.ProjectID, i.StartDate, i.DueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}
	id, _ := res.LastInsertId()
	return d.IssueByID(ctx, id)
}

func (d *DB) UpdateIssue(ctx context.Context, id int64, p IssuePatch) (*Issue, error) {
	i, err := d.IssueByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Priority != nil {
		i.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		i.AssigneeID = p.AssigneeID
	}
	if p.ProjectID != nil {
		i.ProjectID = p.ProjectID
	}
	if p.StartDate != nil {
		i.StartDate = p.StartDate
	}
	if p.DueDate != nil {
		i.DueDate = p.DueDate
	}

	_, err = d.sql.ExecContext(ctx,
		`UPDATE issues SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?,
			project_id = ?, start_date = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		i.Title, i.Description, i.Status, i.Priority, i.AssigneeID,
		i.ProjectID, i.StartDate, i.DueDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}
	return d.IssueByID(ctx, id)
}

func (d *DB) SetIssueStatus(ctx context.Context, id int64, status string) (*Issue, error) {
	return d.UpdateIssue(ctx, id, IssuePatch{Status: &status})
}

// Comments

func (d *DB) queryComments(ctx context.Context, where string, args ...any) ([]Comment, error) {
	q := `SELECT c.id, c.issue_id, c.author_id, COALESCE(u.name, ''), c.content, c.created_at
		FROM comments c LEFT JOIN users u ON u.id = c.author_id`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY c.created_at ASC, c.id ASC"

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (d *DB) ListComments(ctx context.Context, issueID int64) ([]Comment, error) {
	return d.queryComments(ctx, "c.issue_id = ?", issueID)
}

func (d *DB) CreateComment(ctx context.Context, issueID, authorID int64, content string) (*Comment, error) {
	if _, err := d.IssueByID(ctx, issueID); err != nil {
		return nil, err
	}
	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO comments (issue_id, author_id, content) VALUES (?, ?, ?)",
		issueID, authorID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, _ := res.LastInsertId()
	comments, err := d.queryComments(ctx, "c.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return &comments[0], nil
}
