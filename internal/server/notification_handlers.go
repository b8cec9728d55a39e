package server

import (
	"net/http"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.notifications.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleRefreshNotifications(w http.ResponseWriter, r *http.Request) {
	created, err := s.notifications.Refresh(r.Context(), userID(r), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if created == nil {
		created = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkRead(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
