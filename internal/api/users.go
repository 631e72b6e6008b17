package api

import (
	"context"

	"github.com/kidandcat/tracker/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var dtos []userDTO
	if err := c.get(ctx, "/users", &dtos); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(dtos))
	for _, d := range dtos {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var d userDTO
	if err := c.get(ctx, pathf("/users/%s", id), &d); err != nil {
		return nil, err
	}
	u := d.toModel()
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, up model.UserUpdate) (*model.User, error) {
	req := updateUserRequest{
		Name:   up.Name,
		Email:  up.Email,
		Role:   stringOf(up.Role),
		Avatar: up.Avatar,
	}
	var d userDTO
	if err := c.put(ctx, pathf("/users/%s", id), req, &d); err != nil {
		return nil, err
	}
	u := d.toModel()
	return &u, nil
}
