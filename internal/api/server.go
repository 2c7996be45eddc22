package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arenabook/internal/booking"
	"arenabook/internal/config"
	"arenabook/internal/database"
	"arenabook/internal/domain"
	"arenabook/internal/metrics"

	"github.com/rs/zerolog"
)

// Server exposes the portal's JSON API.
type Server struct {
	cfg      *config.Config
	bookings *booking.Service
	db       *database.DB
	auth     *Auth
	limiter  *limiter
	server   *http.Server
	logger   zerolog.Logger
}

func NewServer(cfg *config.Config, bookings *booking.Service, db *database.DB, sessions domain.SessionStore, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		bookings: bookings,
		db:       db,
		auth:     NewAuth(sessions, cfg.Auth.Users, logger),
		limiter:  newLimiter(cfg.RateLimit),
		logger:   logger.With().Str("component", "http").Logger(),
	}

	// authed routes go through the session middleware; mod routes also
	// require an approver role.
	authed := func(h http.HandlerFunc) http.Handler { return s.auth.Wrap(h) }
	mod := func(h http.HandlerFunc) http.Handler { return s.auth.Wrap(requireModerator(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/auth/login", s.auth.handleLogin)
	mux.Handle("POST /api/v1/auth/logout", authed(s.auth.handleLogout))

	mux.Handle("GET /api/v1/bookings", authed(s.handleListBookings))
	mux.Handle("POST /api/v1/bookings", authed(s.handleCreateBooking))
	mux.Handle("GET /api/v1/bookings/public/{public_id}", authed(s.handleGetBookingByPublicID))
	mux.Handle("GET /api/v1/bookings/{id}", authed(s.handleGetBooking))
	mux.Handle("DELETE /api/v1/bookings/{id}", authed(s.handleDeleteBooking))
	mux.Handle("POST /api/v1/bookings/{id}/approve", authed(s.handleApproveBooking))
	mux.Handle("POST /api/v1/bookings/{id}/reject", authed(s.handleRejectBooking))
	mux.Handle("POST /api/v1/bookings/{id}/cancel", authed(s.handleCancelBooking))
	mux.Handle("GET /api/v1/bookings/{id}/occurrences", authed(s.handleBookingOccurrences))

	mux.Handle("GET /api/v1/availability", authed(s.handleAvailability))
	mux.Handle("GET /api/v1/conflicts", authed(s.handleConflicts))

	mux.Handle("GET /api/v1/spaces", authed(s.handleListSpaces))
	mux.Handle("GET /api/v1/spaces/{id}", authed(s.handleGetSpace))
	mux.Handle("POST /api/v1/spaces", mod(s.handleCreateSpace))
	mux.Handle("PUT /api/v1/spaces/{id}", mod(s.handleUpdateSpace))
	mux.Handle("DELETE /api/v1/spaces/{id}", mod(s.handleDeactivateSpace))

	mux.Handle("GET /api/v1/projects", authed(s.handleListProjects))
	mux.Handle("GET /api/v1/projects/{id}", authed(s.handleGetProject))
	mux.Handle("POST /api/v1/projects", mod(s.handleCreateProject))
	mux.Handle("PUT /api/v1/projects/{id}", mod(s.handleUpdateProject))
	mux.Handle("DELETE /api/v1/projects/{id}", mod(s.handleDeleteProject))

	mux.Handle("GET /api/v1/modalities", authed(s.handleListModalities))
	mux.Handle("GET /api/v1/modalities/{id}", authed(s.handleGetModality))
	mux.Handle("POST /api/v1/modalities", mod(s.handleCreateModality))
	mux.Handle("PUT /api/v1/modalities/{id}", mod(s.handleUpdateModality))
	mux.Handle("DELETE /api/v1/modalities/{id}", mod(s.handleDeleteModality))

	mux.Handle("GET /api/v1/teams", authed(s.handleListTeams))
	mux.Handle("GET /api/v1/teams/{id}", authed(s.handleGetTeam))
	mux.Handle("POST /api/v1/teams", mod(s.handleCreateTeam))
	mux.Handle("PUT /api/v1/teams/{id}", mod(s.handleUpdateTeam))
	mux.Handle("DELETE /api/v1/teams/{id}", mod(s.handleDeleteTeam))

	mux.Handle("GET /api/v1/evaluations", authed(s.handleListEvaluations))
	mux.Handle("GET /api/v1/evaluations/{id}", authed(s.handleGetEvaluation))
	mux.Handle("POST /api/v1/evaluations", mod(s.handleCreateEvaluation))
	mux.Handle("PUT /api/v1/evaluations/{id}", mod(s.handleUpdateEvaluation))
	mux.Handle("DELETE /api/v1/evaluations/{id}", mod(s.handleDeleteEvaluation))

	handler := s.logRequests(s.limiter.Wrap(mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, strconv.Itoa(recorder.status))

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
