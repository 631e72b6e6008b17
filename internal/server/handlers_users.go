package server

import (
	"net/http"
	"strings"

	"github.com/kidandcat/tracker/internal/auth"
	"github.com/kidandcat/tracker/internal/db"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.db.ListUsers(r.Context())
	if err != nil {
		a.writeDBError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := a.db.UserByID(r.Context(), id)
	if err != nil {
		a.writeDBError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleUpdateUser lets users edit themselves; admins may edit anyone and are
// the only ones who can change a role.
func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	caller := auth.CurrentUser(r)
	if caller.ID != id && !caller.IsAdmin() {
		writeError(w, http.StatusForbidden, "cannot edit other users")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Role   *string `json:"role"`
		Avatar *string `json:"avatar"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Role != nil {
		if !caller.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admins can assign roles")
			return
		}
		if !validRole(*req.Role) {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	u, err := a.db.UpdateUser(r.Context(), id, db.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Avatar: req.Avatar,
	})
	if err != nil {
		a.writeDBError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
