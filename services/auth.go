package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/database"
	"github.com/CrowderSoup/minijira/store"
)

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// LoginAPI is the part of the API client used to sign in.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
}

// SessionStorage persists the signed-in session.
type SessionStorage interface {
	SaveSession(ctx context.Context, token string, user api.User) error
	LoadSession(ctx context.Context) (*database.Session, error)
	ClearSession(ctx context.Context) error
}

// TokenInfo is what the companion can read from a token without the
// server's signing key. Verification stays with the API.
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Expired   bool      `json:"expired"`
}

type AuthService struct {
	api      LoginAPI
	sessions SessionStorage
	store    store.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(loginAPI LoginAPI, sessions SessionStorage, st store.Dispatcher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      loginAPI,
		sessions: sessions,
		store:    st,
		logger:   logger,
		now:      time.Now,
	}
}

// Restore loads the stored session into the application state. An expired
// token is cleared so the user is asked to sign in again.
func (s *AuthService) Restore(ctx context.Context) error {
	session, err := s.sessions.LoadSession(ctx)
	if errors.Is(err, database.ErrNoSession) {
		s.store.Dispatch(store.SessionRestored{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	info, err := s.InspectToken(session.Token)
	if err != nil {
		s.logger.Warn("stored token is not a JWT, keeping it", "error", err)
	} else if info.Expired {
		s.logger.Info("stored session expired", "expired_at", info.ExpiresAt)
		if err := s.sessions.ClearSession(ctx); err != nil {
			return err
		}
		s.store.Dispatch(store.SessionRestored{})
		return nil
	}

	user := session.User
	s.store.Dispatch(store.SessionRestored{User: &user, Token: session.Token})
	return nil
}

// Login signs in against the API and stores the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	s.store.Dispatch(store.LoginStarted{})

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.store.Dispatch(store.LoginFailed{Message: api.Message(err)})
		return nil, fmt.Errorf("login: %w", err)
	}
	if result.Token == "" {
		s.store.Dispatch(store.LoginFailed{Message: "login response carried no token"})
		return nil, errors.New("login: response carried no token")
	}

	if err := s.sessions.SaveSession(ctx, result.Token, result.User); err != nil {
		s.store.Dispatch(store.LoginFailed{Message: "could not store session"})
		return nil, err
	}

	s.logger.Info("signed in", "user", result.User.Email, "role", result.User.Role)
	s.store.Dispatch(store.LoggedIn{User: result.User, Token: result.Token})
	return result, nil
}

// Logout forgets the session locally. The API keeps no session state.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.ClearSession(ctx); err != nil {
		return err
	}
	s.store.Dispatch(store.LoggedOut{})
	return nil
}

// Current returns the stored session and what its token says about itself.
func (s *AuthService) Current(ctx context.Context) (*database.Session, TokenInfo, error) {
	session, err := s.sessions.LoadSession(ctx)
	if err != nil {
		return nil, TokenInfo{}, err
	}
	info, err := s.InspectToken(session.Token)
	if err != nil {
		// Opaque tokens are allowed; there is just nothing to report.
		return session, TokenInfo{}, nil
	}
	return session, info, nil
}

// InspectToken reads the subject and expiry of a JWT without verifying its
// signature.
func (s *AuthService) InspectToken(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	var info TokenInfo
	if subject, err := claims.GetSubject(); err == nil && subject != "" {
		info.Subject = subject
	} else if id, ok := claims["id"].(string); ok {
		info.Subject = id
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if expiresAt != nil {
		info.ExpiresAt = expiresAt.Time
		info.Expired = !s.now().Before(expiresAt.Time)
	}
	return info, nil
}
