package server

import (
	"net/http"
	"time"

	"github.com/subscriptio/subscriptio/internal/models"
	"github.com/subscriptio/subscriptio/internal/service"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var payment models.Payment
	if err := decode(r, &payment); err != nil {
		writeError(w, err)
		return
	}
	if err := s.payments.Create(r.Context(), userID(r), &payment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var payment models.Payment
	if err := decode(r, &payment); err != nil {
		writeError(w, err)
		return
	}
	payment.ID = r.PathValue("id")
	if err := s.payments.Update(r.Context(), userID(r), &payment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.payments.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markPaidRequest struct {
	PaidDate *time.Time `json:"paidDate"`
	PayerID  string     `json:"payerId"`
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var paidDate time.Time
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}
	payment, err := s.payments.MarkPaid(r.Context(), userID(r), r.PathValue("id"), paidDate, req.PayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleSettleSplit(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.SettleSplit(r.Context(), userID(r), r.PathValue("id"), r.PathValue("personId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) handleCheckSplit(w http.ResponseWriter, r *http.Request) {
	check, err := s.payments.CheckSplit(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleUpcomingDue(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.UpcomingDue(r.Context(), userID(r), queryInt(r, "days", 0), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handlePeriodExpenses(w http.ResponseWriter, r *http.Request) {
	start := queryDate(r, "start", time.Time{})
	end := queryDate(r, "end", time.Time{})
	if start.IsZero() || end.IsZero() {
		writeError(w, service.ErrInvalidInput)
		return
	}
	total, err := s.payments.PeriodExpenses(r.Context(), userID(r), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total": total})
}
