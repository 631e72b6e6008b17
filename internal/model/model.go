package model

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Next returns the status that follows s in the workflow. Done stays done.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s && i+1 < len(Statuses) {
			return Statuses[i+1]
		}
	}
	return s
}

// ParseStatus accepts the canonical values plus the underscore spelling some
// servers emit ("in_progress").
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	// RoleTeamLead only exists on the wire; the client folds it into admin.
	RoleTeamLead Role = "team_lead"
)

// NormalizeRole maps a server role onto the client's two-role model.
func NormalizeRole(r string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(r))) {
	case RoleAdmin, RoleTeamLead:
		return RoleAdmin
	}
	return RoleUser
}

type User struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Email  string  `json:"email" yaml:"email"`
	Role   Role    `json:"role" yaml:"role"`
	Avatar *string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) Clone() User {
	u.Avatar = cloneString(u.Avatar)
	return u
}

type Comment struct {
	ID         string    `json:"id" yaml:"id"`
	AuthorID   string    `json:"authorId" yaml:"authorId"`
	AuthorName string    `json:"authorName" yaml:"authorName"`
	Text       string    `json:"text" yaml:"text"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

type Issue struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	AssigneeID  *string   `json:"assigneeId,omitempty" yaml:"assigneeId,omitempty"`
	CreatedBy   string    `json:"createdBy" yaml:"createdBy"`
	ProjectID   *string   `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	StartDate   *string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	Comments    []Comment `json:"comments" yaml:"comments"`
}

// Normalize fills defaults so that status and priority are always valid and
// comments is never nil.
func (i *Issue) Normalize() {
	if !i.Status.Valid() {
		i.Status = StatusTodo
	}
	if !i.Priority.Valid() {
		i.Priority = PriorityMedium
	}
	if i.Comments == nil {
		i.Comments = []Comment{}
	}
}

// Clone returns a copy that shares no slices or pointers with i.
func (i Issue) Clone() Issue {
	out := i
	out.AssigneeID = cloneString(i.AssigneeID)
	out.ProjectID = cloneString(i.ProjectID)
	out.StartDate = cloneString(i.StartDate)
	out.DueDate = cloneString(i.DueDate)
	out.Comments = make([]Comment, len(i.Comments))
	copy(out.Comments, i.Comments)
	return out
}

type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"userId" yaml:"userId"`
	Type      string    `json:"type" yaml:"type"`
	Message   string    `json:"message" yaml:"message"`
	IssueID   *string   `json:"issueId,omitempty" yaml:"issueId,omitempty"`
	Read      bool      `json:"read" yaml:"read"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
