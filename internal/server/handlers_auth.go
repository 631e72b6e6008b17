package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/auth"
	"github.com/kidandcat/tracker/internal/db"
)

type authResponse struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	u, err := a.db.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		a.writeDBError(w, err, "user")
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	a.startSession(w, r, http.StatusOK, u)
}

// handleRegister creates an account and a session for it. Only an admin
// caller may choose a role other than user.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if len(req.Password) > auth.MaxPasswordLen {
		writeError(w, http.StatusBadRequest, "password is too long")
		return
	}

	role := "user"
	if req.Role != "" && req.Role != role {
		if !validRole(req.Role) {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		caller := auth.Lookup(r, a.db)
		if caller == nil || !caller.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admins can assign roles")
			return
		}
		role = req.Role
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.log.Error("hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	u, err := a.db.CreateUser(r.Context(), req.Email, req.Name, role, hash)
	if err != nil {
		a.writeDBError(w, err, "user")
		return
	}
	a.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", role))

	a.startSession(w, r, http.StatusCreated, u)
}

func (a *API) startSession(w http.ResponseWriter, r *http.Request, status int, u *db.User) {
	token, err := a.db.CreateSession(r.Context(), u.ID)
	if err != nil {
		a.log.Error("create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: u})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.CurrentUser(r))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.Logout(r, a.db)
	w.WriteHeader(http.StatusNoContent)
}

func validRole(role string) bool {
	switch role {
	case "user", "admin", "team_lead":
		return true
	}
	return false
}
