package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kidandcat/tracker/internal/model"
)

// wireID accepts both numeric and string identifiers from the server and
// keeps them as strings on the client.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", b, err)
	}
	*id = wireID(n.String())
	return nil
}

// MarshalJSON emits canonical integers as numbers and everything else,
// including "007" or "+1", as a string.
func (id wireID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func idPtr(s *string) *wireID {
	if s == nil || *s == "" {
		return nil
	}
	id := wireID(*s)
	return &id
}

func strPtr(id *wireID) *string {
	if id == nil || *id == "" {
		return nil
	}
	s := string(*id)
	return &s
}

// wireTime tolerates RFC 3339 and the plain "YYYY-MM-DD HH:MM:SS" form
// sqlite-backed servers emit.
type wireTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*t = wireTime(time.Time{})
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = wireTime(v)
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", s)
}

func (t wireTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339))
}

type userDTO struct {
	ID     wireID  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Avatar *string `json:"avatar,omitempty"`
}

func (u userDTO) toModel() model.User {
	return model.User{
		ID:     string(u.ID),
		Name:   u.Name,
		Email:  u.Email,
		Role:   model.NormalizeRole(u.Role),
		Avatar: u.Avatar,
	}
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type updateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type commentDTO struct {
	ID         wireID   `json:"id"`
	IssueID    wireID   `json:"issue_id"`
	AuthorID   wireID   `json:"author_id"`
	AuthorName string   `json:"author_name"`
	Content    string   `json:"content"`
	CreatedAt  wireTime `json:"created_at"`
}

func (c commentDTO) toModel() model.Comment {
	return model.Comment{
		ID:         string(c.ID),
		AuthorID:   string(c.AuthorID),
		AuthorName: c.AuthorName,
		Text:       c.Content,
		CreatedAt:  time.Time(c.CreatedAt),
	}
}

type createCommentRequest struct {
	Content string `json:"content"`
}

type issueDTO struct {
	ID          wireID       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	AssigneeID  *wireID      `json:"assignee_id"`
	CreatedBy   wireID       `json:"created_by"`
	ProjectID   *wireID      `json:"project_id"`
	StartDate   *string      `json:"start_date"`
	DueDate     *string      `json:"due_date"`
	CreatedAt   wireTime     `json:"created_at"`
	Comments    []commentDTO `json:"comments"`
}

func (i issueDTO) toModel() model.Issue {
	out := model.Issue{
		ID:          string(i.ID),
		Title:       i.Title,
		Description: i.Description,
		AssigneeID:  strPtr(i.AssigneeID),
		CreatedBy:   string(i.CreatedBy),
		ProjectID:   strPtr(i.ProjectID),
		StartDate:   i.StartDate,
		DueDate:     i.DueDate,
		CreatedAt:   time.Time(i.CreatedAt),
		Comments:    make([]model.Comment, 0, len(i.Comments)),
	}
	if st, err := model.ParseStatus(i.Status); err == nil {
		out.Status = st
	}
	if p, err := model.ParsePriority(i.Priority); err == nil {
		out.Priority = p
	}
	for _, c := range i.Comments {
		out.Comments = append(out.Comments, c.toModel())
	}
	out.Normalize()
	return out
}

type createIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *wireID `json:"assignee_id,omitempty"`
	ProjectID   *wireID `json:"project_id,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type updateIssueRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	AssigneeID  *wireID `json:"assignee_id,omitempty"`
	ProjectID   *wireID `json:"project_id,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type projectDTO struct {
	ID          wireID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedAt   wireTime `json:"created_at"`
}

func (p projectDTO) toModel() model.Project {
	return model.Project{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   time.Time(p.CreatedAt),
	}
}

type projectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type notificationDTO struct {
	ID        wireID   `json:"id"`
	UserID    wireID   `json:"user_id"`
	Type      string   `json:"type"`
	Message   string   `json:"message"`
	IssueID   *wireID  `json:"issue_id"`
	IsRead    bool     `json:"is_read"`
	CreatedAt wireTime `json:"created_at"`
}

func (n notificationDTO) toModel() model.Notification {
	return model.Notification{
		ID:        string(n.ID),
		UserID:    string(n.UserID),
		Type:      n.Type,
		Message:   n.Message,
		IssueID:   strPtr(n.IssueID),
		Read:      n.IsRead,
		CreatedAt: time.Time(n.CreatedAt),
	}
}

func stringOf[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
