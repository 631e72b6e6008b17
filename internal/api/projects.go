package api

import (
	"context"

	"github.com/kidandcat/tracker/internal/model"
)

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var dtos []projectDTO
	if err := c.get(ctx, "/projects", &dtos); err != nil {
		return nil, err
	}
	projects := make([]model.Project, 0, len(dtos))
	for _, d := range dtos {
		projects = append(projects, d.toModel())
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var d projectDTO
	if err := c.get(ctx, pathf("/projects/%s", id), &d); err != nil {
		return nil, err
	}
	p := d.toModel()
	return &p, nil
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var d projectDTO
	req := projectRequest{Name: &in.Name, Description: &in.Description}
	if err := c.post(ctx, "/projects", req, &d); err != nil {
		return nil, err
	}
	p := d.toModel()
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, up model.ProjectUpdate) (*model.Project, error) {
	var d projectDTO
	req := projectRequest{Name: up.Name, Description: up.Description}
	if err := c.put(ctx, pathf("/projects/%s", id), req, &d); err != nil {
		return nil, err
	}
	p := d.toModel()
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, pathf("/projects/%s", id))
}
