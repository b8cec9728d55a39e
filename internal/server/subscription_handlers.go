package server

import (
	"net/http"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := decode(r, &sub); err != nil {
		writeError(w, err)
		return
	}
	if err := s.subscriptions.Create(r.Context(), userID(r), &sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscriptions.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := decode(r, &sub); err != nil {
		writeError(w, err)
		return
	}
	sub.ID = r.PathValue("id")
	if err := s.subscriptions.Update(r.Context(), userID(r), &sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.subscriptions.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	from := queryDate(r, "from", time.Now())
	months := queryInt(r, "months", 12)
	payments, err := s.subscriptions.Schedule(r.Context(), userID(r), r.PathValue("id"), from, months)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleMaterializeSchedule(w http.ResponseWriter, r *http.Request) {
	from := queryDate(r, "from", time.Now())
	months := queryInt(r, "months", 12)
	created, err := s.subscriptions.MaterializeSchedule(r.Context(), userID(r), r.PathValue("id"), from, months)
	if err != nil {
		writeError(w, err)
		return
	}
	if created == nil {
		created = []models.Payment{}
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSubscriptionPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.ListBySubscription(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := s.subscriptions.Forecast(r.Context(), userID(r), queryInt(r, "months", 0), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.subscriptions.Breakdown(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleExpiring(w http.ResponseWriter, r *http.Request) {
	expiring, err := s.subscriptions.Expiring(r.Context(), userID(r), queryInt(r, "days", 0), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expiring)
}
