package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/CrowderSoup/minijira/api"
)

// SessionStore persists the session and user preferences.
type SessionStore struct {
	db *sqlx.DB
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession replaces the stored session.
func (s *SessionStore) SaveSession(ctx context.Context, token string, user api.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_json, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			updated_at = CURRENT_TIMESTAMP
	`, token, string(userJSON))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session or ErrNoSession.
func (s *SessionStore) LoadSession(ctx context.Context) (*Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT token, user_json, updated_at FROM session WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session := &Session{Token: row.Token, UpdatedAt: row.UpdatedAt}
	if err := json.Unmarshal([]byte(row.User), &session.User); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
	}
	return session, nil
}

// ClearSession forgets the token and user.
func (s *SessionStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token implements api.TokenSource. No session means no token.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	session, err := s.LoadSession(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// Preference returns the stored value for key, or fallback when unset.
func (s *SessionStore) Preference(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM preferences WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query preference %s: %w", key, err)
	}
	return value, nil
}

func (s *SessionStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}
