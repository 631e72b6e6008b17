package api

import (
	"context"
	"net/url"

	"github.com/kidandcat/tracker/internal/model"
)

// IssueFilter narrows ListIssues server-side. Zero values are ignored.
type IssueFilter struct {
	ProjectID  string
	Status     model.Status
	AssigneeID string
}

func (f IssueFilter) query() string {
	q := url.Values{}
	if f.ProjectID != "" {
		q.Set("project_id", f.ProjectID)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.AssigneeID != "" {
		q.Set("assignee_id", f.AssigneeID)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListIssues(ctx context.Context, f IssueFilter) ([]model.Issue, error) {
	var dtos []issueDTO
	if err := c.get(ctx, "/issues"+f.query(), &dtos); err != nil {
		return nil, err
	}
	issues := make([]model.Issue, 0, len(dtos))
	for _, d := range dtos {
		issues = append(issues, d.toModel())
	}
	return issues, nil
}

func (c *Client) GetIssue(ctx context.Context, id string) (*model.Issue, error) {
	var d issueDTO
	if err := c.get(ctx, pathf("/issues/%s", id), &d); err != nil {
		return nil, err
	}
	issue := d.toModel()
	return &issue, nil
}

func (c *Client) CreateIssue(ctx context.Context, in model.IssueInput) (*model.Issue, error) {
	req := createIssueRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(in.Status),
		Priority:    string(in.Priority),
		AssigneeID:  idPtr(in.AssigneeID),
		ProjectID:   idPtr(in.ProjectID),
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	}
	var d issueDTO
	if err := c.post(ctx, "/issues", req, &d); err != nil {
		return nil, err
	}
	issue := d.toModel()
	return &issue, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id string, up model.IssueUpdate) (*model.Issue, error) {
	req := updateIssueRequest{
		Title:       up.Title,
		Description: up.Description,
		Status:      stringOf(up.Status),
		Priority:    stringOf(up.Priority),
		AssigneeID:  idPtr(up.AssigneeID),
		ProjectID:   idPtr(up.ProjectID),
		StartDate:   up.StartDate,
		DueDate:     up.DueDate,
	}
	var d issueDTO
	if err := c.put(ctx, pathf("/issues/%s", id), req, &d); err != nil {
		return nil, err
	}
	issue := d.toModel()
	return &issue, nil
}

func (c *Client) UpdateIssueStatus(ctx context.Context, id string, status model.Status) (*model.Issue, error) {
	var d issueDTO
	if err := c.patch(ctx, pathf("/issues/%s/status", id), statusRequest{Status: string(status)}, &d); err != nil {
		return nil, err
	}
	issue := d.toModel()
	return &issue, nil
}
