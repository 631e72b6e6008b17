package server

import (
	"net/http"

	"github.com/kidandcat/tracker/internal/auth"
)

func (a *API) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	a.listNotifications(w, r, false)
}

func (a *API) handleListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	a.listNotifications(w, r, true)
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request, unread bool) {
	list, err := a.db.ListNotifications(r.Context(), auth.CurrentUser(r).ID, unread)
	if err != nil {
		a.writeDBError(w, err, "notification")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.db.MarkNotificationRead(r.Context(), auth.CurrentUser(r).ID, id); err != nil {
		a.writeDBError(w, err, "notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := a.db.MarkAllNotificationsRead(r.Context(), auth.CurrentUser(r).ID); err != nil {
		a.writeDBError(w, err, "notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.db.DeleteNotification(r.Context(), auth.CurrentUser(r).ID, id); err != nil {
		a.writeDBError(w, err, "notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
