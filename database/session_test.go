package database_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/database"
)

func newStore(t *testing.T) *database.SessionStore {
	t.Helper()

	db, err := database.InitDB(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewSessionStore(db)
}

func Test_SessionStore_Returns_ErrNoSession_When_Empty(t *testing.T) {
	t.Parallel()

	sessions := newStore(t)

	_, err := sessions.LoadSession(context.Background())
	require.ErrorIs(t, err, database.ErrNoSession)

	token, err := sessions.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func Test_SessionStore_Saves_And_Replaces_Session(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := newStore(t)

	require.NoError(t, sessions.SaveSession(ctx, "first", api.User{ID: "u1", Name: "Ada", Role: api.RoleManager}))
	require.NoError(t, sessions.SaveSession(ctx, "second", api.User{ID: "u2", Name: "Linus", Role: api.RoleDeveloper}))

	session, err := sessions.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", session.Token)
	assert.Equal(t, "u2", session.User.ID)
	assert.Equal(t, api.RoleDeveloper, session.User.Role)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func Test_SessionStore_Clear_Removes_Session(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := newStore(t)
	require.NoError(t, sessions.SaveSession(ctx, "tok", api.User{ID: "u1"}))

	require.NoError(t, sessions.ClearSession(ctx))

	_, err := sessions.LoadSession(ctx)
	assert.ErrorIs(t, err, database.ErrNoSession)
}

func Test_SessionStore_Preferences_Fall_Back_And_Upsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := newStore(t)

	value, err := sessions.Preference(ctx, database.PrefPageSize, "10")
	require.NoError(t, err)
	assert.Equal(t, "10", value)

	require.NoError(t, sessions.SetPreference(ctx, database.PrefPageSize, "20"))
	require.NoError(t, sessions.SetPreference(ctx, database.PrefPageSize, "50"))

	value, err = sessions.Preference(ctx, database.PrefPageSize, "10")
	require.NoError(t, err)
	assert.Equal(t, "50", value)
}

func Test_InitDB_Logs_Through_Given_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db, err := database.InitDB(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Contains(t, buf.String(), "database initialized")
	assert.Contains(t, buf.String(), "path=:memory:")
}
