package model

import (
	"errors"
	"strings"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
)

type Credentials struct {
	Email    string
	Password string
}

// IssueInput is what a view submits to create an issue. Status defaults to
// todo and priority to medium when left empty.
type IssueInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	AssigneeID  *string
	ProjectID   *string
	StartDate   *string
	DueDate     *string
}

func (in *IssueInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrTitleRequired
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Status.Valid() {
		return errors.New("invalid status " + string(in.Status))
	}
	if !in.Priority.Valid() {
		return errors.New("invalid priority " + string(in.Priority))
	}
	return nil
}

// IssueUpdate carries the fields of a full issue edit; nil means unchanged.
type IssueUpdate struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	AssigneeID  *string
	ProjectID   *string
	StartDate   *string
	DueDate     *string
}

type ProjectInput struct {
	Name        string
	Description string
}

func (in *ProjectInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrNameRequired
	}
	return nil
}

type ProjectUpdate struct {
	Name        *string
	Description *string
}

type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

func (in *UserInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.Email == "" {
		return ErrEmailRequired
	}
	if in.Role == "" {
		in.Role = RoleUser
	}
	return nil
}

type UserUpdate struct {
	Name   *string
	Email  *string
	Role   *Role
	Avatar *string
}
