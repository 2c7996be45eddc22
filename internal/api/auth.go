package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"arenabook/internal/config"
	"arenabook/internal/domain"
	"arenabook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const actorKey contextKey = "actor"

// Auth issues bearer tokens against the configured portal accounts and
// resolves them back to actors on every request.
type Auth struct {
	store  domain.SessionStore
	users  map[string]config.UserAccount // by email
	logger zerolog.Logger
}

func NewAuth(store domain.SessionStore, accounts []config.UserAccount, logger *zerolog.Logger) *Auth {
	users := make(map[string]config.UserAccount, len(accounts))
	for _, u := range accounts {
		users[u.Email] = u
	}
	return &Auth{
		store:  store,
		users:  users,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	Actor models.Actor `json:"actor"`
}

func (a *Auth) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// Brute-force guard keyed by client address, not by email, so probing
	// many accounts from one host is throttled too.
	limitKey := "login:" + clientHost(r)
	allowed, err := a.store.CheckRateLimit(r.Context(), limitKey, models.LoginRateLimit, models.LoginRateWindowSeconds*time.Second)
	if err != nil {
		a.logger.Error().Err(err).Msg("login rate limit check error")
	} else if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	account, ok := a.users[req.Email]
	// Compare even on unknown accounts to keep timing uniform.
	expected := account.Password
	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.Password)) != 1 || !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session := &models.Session{
		Token: uuid.NewString(),
		Actor: models.Actor{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
		CreatedAt: time.Now(),
	}
	if err := a.store.Set(r.Context(), session); err != nil {
		a.logger.Error().Err(err).Msg("session store error")
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	a.logger.Info().Str("email", account.Email).Str("role", account.Role).Msg("login")
	writeData(w, http.StatusOK, loginResponse{Token: session.Token, Actor: session.Actor})
}

func (a *Auth) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := a.store.Delete(r.Context(), token); err != nil {
			a.logger.Error().Err(err).Msg("session delete error")
		}
	}
	writeMessage(w, http.StatusOK, "logged out")
}

// Wrap authenticates the request and attaches the actor to its context.
func (a *Auth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		session, err := a.store.Get(r.Context(), token)
		if err != nil {
			a.logger.Error().Err(err).Msg("session lookup error")
			writeError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
		if session == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, session.Actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom returns the authenticated actor placed by Wrap. The zero Actor
// comes back for unauthenticated paths.
func actorFrom(r *http.Request) models.Actor {
	actor, _ := r.Context().Value(actorKey).(models.Actor)
	return actor
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
