package server

import (
	"net/http"
	"strings"

	"github.com/kidandcat/tracker/internal/model"
)

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.db.ListProjects(r.Context())
	if err != nil {
		a.writeDBError(w, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := a.db.ProjectByID(r.Context(), id)
	if err != nil {
		a.writeDBError(w, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, model.ErrNameRequired.Error())
		return
	}
	desc := ""
	if req.Description != nil {
		desc = *req.Description
	}
	p, err := a.db.CreateProject(r.Context(), strings.TrimSpace(*req.Name), desc)
	if err != nil {
		a.writeDBError(w, err, "project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, model.ErrNameRequired.Error())
			return
		}
		req.Name = &name
	}
	p, err := a.db.UpdateProject(r.Context(), id, req.Name, req.Description)
	if err != nil {
		a.writeDBError(w, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.db.DeleteProject(r.Context(), id); err != nil {
		a.writeDBError(w, err, "project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
