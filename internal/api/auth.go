package api

import (
	"context"
	"fmt"

	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/model"
)

type AuthResult struct {
	Token string
	User  model.User
}

// Login authenticates and persists the returned token.
func (c *Client) Login(ctx context.Context, cred model.Credentials) (*AuthResult, error) {
	var resp authResponse
	err := c.post(ctx, "/auth/login", loginRequest{Email: cred.Email, Password: cred.Password}, &resp)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, resp)
}

// Register creates an account for the caller and persists its token.
func (c *Client) Register(ctx context.Context, in model.UserInput) (*AuthResult, error) {
	var resp authResponse
	if err := c.post(ctx, "/auth/register", newRegisterRequest(in), &resp); err != nil {
		return nil, err
	}
	return c.adopt(ctx, resp)
}

// CreateUser registers an account on someone else's behalf. The token the
// server issues for the new account is discarded so the caller's own session
// stays in place.
func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	var resp authResponse
	if err := c.post(ctx, "/auth/register", newRegisterRequest(in), &resp); err != nil {
		return nil, err
	}
	u := resp.User.toModel()
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u userDTO
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	out := u.toModel()
	return &out, nil
}

func (c *Client) adopt(ctx context.Context, resp authResponse) (*AuthResult, error) {
	if resp.Token == "" {
		return nil, &Error{Kind: KindValidation, Message: "server returned no token"}
	}
	if err := c.state.Set(ctx, localstate.TokenKey, resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	return &AuthResult{Token: resp.Token, User: resp.User.toModel()}, nil
}

func newRegisterRequest(in model.UserInput) registerRequest {
	return registerRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(in.Role),
	}
}
