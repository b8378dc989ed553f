package handlers

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/services"
	"github.com/CrowderSoup/minijira/store"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the signed-in user stored by SessionMiddleware.
func UserFromContext(ctx context.Context) (*api.User, bool) {
	user, ok := ctx.Value(userContextKey).(*api.User)
	return user, ok && user != nil
}

// SessionMiddleware rejects requests while nobody is signed in.
type SessionMiddleware struct {
	state store.Reader
}

func NewSessionMiddleware(state store.Reader) *SessionMiddleware {
	return &SessionMiddleware{state: state}
}

func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := m.state.State().Auth
		if !auth.IsAuthenticated {
			writeMessage(w, http.StatusUnauthorized, "not signed in")
			return
		}

		user := auth.User
		if user == nil {
			user = &api.User{}
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager only lets managers through. It must run after
// RequireSession.
func (m *SessionMiddleware) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if !services.IsManager(user) {
			writeMessage(w, http.StatusForbidden, "managers only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the logger.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Logging logs one line per request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
