package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/auth"
	"github.com/kidandcat/tracker/internal/db"
	"github.com/kidandcat/tracker/internal/model"
)

func (a *API) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f db.IssueFilter
	if v := q.Get("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		f.ProjectID = &id
	}
	if v := q.Get("assignee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assignee_id")
			return
		}
		f.AssigneeID = &id
	}
	if v := q.Get("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Status = string(st)
	}

	issues, err := a.db.ListIssues(r.Context(), f)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (a *API) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	issue, err := a.db.IssueByID(r.Context(), id)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

type issueRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  optionalID `json:"assignee_id"`
	ProjectID   optionalID `json:"project_id"`
	StartDate   *string    `json:"start_date"`
	DueDate     *string    `json:"due_date"`
}

// patch validates the request and converts it to a storage patch.
func (req issueRequest) patch() (db.IssuePatch, error) {
	p := db.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID.value,
		ProjectID:   req.ProjectID.value,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return p, model.ErrTitleRequired
		}
		p.Title = &t
	}
	if req.Status != nil {
		st, err := model.ParseStatus(*req.Status)
		if err != nil {
			return p, err
		}
		s := string(st)
		p.Status = &s
	}
	if req.Priority != nil {
		pr, err := model.ParsePriority(*req.Priority)
		if err != nil {
			return p, err
		}
		s := string(pr)
		p.Priority = &s
	}
	return p, nil
}

func (a *API) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == nil {
		writeError(w, http.StatusBadRequest, model.ErrTitleRequired.Error())
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue := db.Issue{
		Title:     *p.Title,
		Status:    string(model.StatusTodo),
		Priority:  string(model.PriorityMedium),
		CreatedBy: &auth.CurrentUser(r).ID,
		StartDate: p.StartDate,
		DueDate:   p.DueDate,
	}
	if p.Description != nil {
		issue.Description = *p.Description
	}
	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.Priority != nil {
		issue.Priority = *p.Priority
	}
	issue.AssigneeID = p.AssigneeID
	issue.ProjectID = p.ProjectID

	created, err := a.db.CreateIssue(r.Context(), issue)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req issueRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	before, err := a.db.IssueByID(r.Context(), id)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	issue, err := a.db.UpdateIssue(r.Context(), id, p)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	if issue.Status != before.Status {
		a.notifyStatus(r.Context(), auth.CurrentUser(r), issue)
	}
	writeJSON(w, http.StatusOK, issue)
}

func (a *API) handleUpdateIssueStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	st, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := a.db.SetIssueStatus(r.Context(), id, string(st))
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	a.notifyStatus(r.Context(), auth.CurrentUser(r), issue)
	writeJSON(w, http.StatusOK, issue)
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := a.db.IssueByID(r.Context(), id); err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	comments, err := a.db.ListComments(r.Context(), id)
	if err != nil {
		a.writeDBError(w, err, "comment")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	user := auth.CurrentUser(r)
	c, err := a.db.CreateComment(r.Context(), id, user.ID, content)
	if err != nil {
		a.writeDBError(w, err, "issue")
		return
	}
	if issue, err := a.db.IssueByID(r.Context(), id); err == nil {
		a.notify(r.Context(), user, issue, db.NotifyComment,
			fmt.Sprintf("%s commented on %q", user.Name, issue.Title))
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) notifyStatus(ctx context.Context, actor *db.User, issue *db.Issue) {
	label := model.Status(issue.Status).Label()
	a.notify(ctx, actor, issue, db.NotifyStatus,
		fmt.Sprintf("%s moved %q to %s", actor.Name, issue.Title, label))
}

// notify tells the issue's creator and assignee about a change, skipping the
// user who made it. Failures are logged and never fail the request.
func (a *API) notify(ctx context.Context, actor *db.User, issue *db.Issue, kind, msg string) {
	seen := map[int64]bool{actor.ID: true}
	for _, id := range []*int64{issue.CreatedBy, issue.AssigneeID} {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if err := a.db.CreateNotification(ctx, *id, kind, msg, &issue.ID); err != nil {
			a.log.Warn("create notification",
				zap.Int64("user_id", *id),
				zap.Int64("issue_id", issue.ID),
				zap.Error(err),
			)
		}
	}
}
