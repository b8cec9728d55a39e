// Package server exposes the services over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/subscriptio/subscriptio/internal/auth"
	"github.com/subscriptio/subscriptio/internal/middleware"
	"github.com/subscriptio/subscriptio/internal/service"
	"github.com/subscriptio/subscriptio/internal/storage"
)

// Server wires the services into an http.Handler.
type Server struct {
	auth          *service.AuthService
	subscriptions *service.SubscriptionService
	payments      *service.PaymentService
	people        *service.PeopleService
	notifications *service.NotificationService
	jwtManager    *auth.JWTManager
}

// New creates a server over the given services.
func New(
	authSvc *service.AuthService,
	subscriptions *service.SubscriptionService,
	payments *service.PaymentService,
	people *service.PeopleService,
	notifications *service.NotificationService,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		auth:          authSvc,
		subscriptions: subscriptions,
		payments:      payments,
		people:        people,
		notifications: notifications,
		jwtManager:    jwtManager,
	}
}

// Handler builds the full middleware-wrapped handler, including h2c so
// clients can use HTTP/2 without TLS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// authed wraps a handler behind JWT validation.
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(s.jwtManager, h)
	}

	mux.Handle("GET /api/v1/auth/me", authed(s.handleMe))
	mux.Handle("GET /api/v1/settings", authed(s.handleGetSettings))
	mux.Handle("PUT /api/v1/settings", authed(s.handleUpdateSettings))

	mux.Handle("GET /api/v1/subscriptions", authed(s.handleListSubscriptions))
	mux.Handle("POST /api/v1/subscriptions", authed(s.handleCreateSubscription))
	mux.Handle("GET /api/v1/subscriptions/{id}", authed(s.handleGetSubscription))
	mux.Handle("PUT /api/v1/subscriptions/{id}", authed(s.handleUpdateSubscription))
	mux.Handle("DELETE /api/v1/subscriptions/{id}", authed(s.handleDeleteSubscription))
	mux.Handle("GET /api/v1/subscriptions/{id}/schedule", authed(s.handleSchedule))
	mux.Handle("POST /api/v1/subscriptions/{id}/schedule", authed(s.handleMaterializeSchedule))
	mux.Handle("GET /api/v1/subscriptions/{id}/payments", authed(s.handleListSubscriptionPayments))

	mux.Handle("GET /api/v1/payments", authed(s.handleListPayments))
	mux.Handle("POST /api/v1/payments", authed(s.handleCreatePayment))
	mux.Handle("GET /api/v1/payments/{id}", authed(s.handleGetPayment))
	mux.Handle("PUT /api/v1/payments/{id}", authed(s.handleUpdatePayment))
	mux.Handle("DELETE /api/v1/payments/{id}", authed(s.handleDeletePayment))
	mux.Handle("POST /api/v1/payments/{id}/paid", authed(s.handleMarkPaid))
	mux.Handle("POST /api/v1/payments/{id}/splits/{personId}/settle", authed(s.handleSettleSplit))
	mux.Handle("GET /api/v1/payments/{id}/split-check", authed(s.handleCheckSplit))

	mux.Handle("GET /api/v1/people", authed(s.handleListPeople))
	mux.Handle("POST /api/v1/people", authed(s.handleCreatePerson))
	mux.Handle("GET /api/v1/people/balances", authed(s.handleBalances))
	mux.Handle("GET /api/v1/people/{id}", authed(s.handleGetPerson))
	mux.Handle("PUT /api/v1/people/{id}", authed(s.handleUpdatePerson))
	mux.Handle("DELETE /api/v1/people/{id}", authed(s.handleDeletePerson))

	mux.Handle("GET /api/v1/reports/forecast", authed(s.handleForecast))
	mux.Handle("GET /api/v1/reports/breakdown", authed(s.handleBreakdown))
	mux.Handle("GET /api/v1/reports/expiring", authed(s.handleExpiring))
	mux.Handle("GET /api/v1/reports/upcoming", authed(s.handleUpcomingDue))
	mux.Handle("GET /api/v1/reports/expenses", authed(s.handlePeriodExpenses))

	mux.Handle("GET /api/v1/notifications", authed(s.handleListNotifications))
	mux.Handle("POST /api/v1/notifications/refresh", authed(s.handleRefreshNotifications))
	mux.Handle("POST /api/v1/notifications/{id}/read", authed(s.handleMarkNotificationRead))

	handler := middleware.Logging(middleware.Metrics(mux, middleware.CORS(mux)))
	return h2c.NewHandler(handler, &http2.Server{})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, service.ErrForbidden):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.ErrInvalidInput
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryDate parses a YYYY-MM-DD query parameter, falling back to def.
func queryDate(r *http.Request, name string, def time.Time) time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return def
	}
	return t
}

// userID pulls the authenticated user from the request context.
func userID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}
