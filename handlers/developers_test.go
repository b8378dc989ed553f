package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/handlers"
	"github.com/CrowderSoup/minijira/store"
)

func Test_DeveloperHandler_Create_Defaults_Role_And_Appends(t *testing.T) {
	t.Parallel()

	st := store.New()
	h := handlers.NewDeveloperHandler(&fakeAPI{}, st, discardLogger())

	rec := serve(t, http.MethodPost, "/api/developers", "/api/developers",
		map[string]any{"name": "Ada", "email": " ada@example.com ", "password": "pw"}, h.CreateDeveloper)

	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode[api.User](t, rec)
	assert.Equal(t, api.RoleDeveloper, user.Role)
	assert.Equal(t, "ada@example.com", user.Email)

	users := st.State().Users.Users
	require.Len(t, users, 1)
	assert.Equal(t, "u-new", users[0].ID)
}

func Test_DeveloperHandler_Create_Requires_Fields(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body map[string]any
	}{
		{name: "NoEmail", body: map[string]any{"name": "Ada", "password": "pw"}},
		{name: "NoPassword", body: map[string]any{"name": "Ada", "email": "a@b.c"}},
		{name: "BadRole", body: map[string]any{"name": "Ada", "email": "a@b.c", "password": "pw", "role": "Admin"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewDeveloperHandler(&fakeAPI{}, store.New(), discardLogger())
			rec := serve(t, http.MethodPost, "/api/developers", "/api/developers", testCase.body, h.CreateDeveloper)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func Test_ProjectHandler_List_Dispatches_Page(t *testing.T) {
	t.Parallel()

	st := store.New()
	fake := &fakeAPI{projects: []api.Project{{ID: "p1", Name: "Portal"}}}
	h := handlers.NewProjectHandler(fake, st, discardLogger())

	rec := serve(t, http.MethodGet, "/api/projects", "/api/projects", nil, h.ListProjects)

	require.Equal(t, http.StatusOK, rec.Code)
	projects := st.State().Projects.Projects
	require.Len(t, projects, 1)
	assert.Equal(t, "Portal", projects[0].Name)
}
