package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *api.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL+"/api", api.TokenFunc(func(context.Context) (string, error) {
		return token, nil
	}), nil)
	require.NoError(t, err)
	return client
}

func Test_Client_Lists_Tickets_With_Bearer_Token_And_Limit(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath, gotLimit string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"tickets": [{"_id": "t1", "title": "Fix login", "status": "Open",
				"projectId": {"_id": "p1", "name": "Portal"},
				"assignees": ["u1", {"_id": "u2", "name": "Grace"}],
				"createdAt": "2024-03-01T10:00:00Z"}],
			"totalTickets": 1, "currentPage": 1, "totalPages": 1
		}`)
	}, "secret")

	page, err := client.ListTickets(context.Background(), api.ListParams{Limit: 100})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/api/tickets/all", gotPath)
	assert.Equal(t, "100", gotLimit)

	require.Len(t, page.Tickets, 1)
	ticket := page.Tickets[0]
	assert.Equal(t, "t1", ticket.ID)
	assert.Equal(t, api.StatusOpen, ticket.Status)
	require.NotNil(t, ticket.Project)
	assert.Equal(t, "Portal", ticket.Project.Name)
	assert.Equal(t, []api.Ref{{ID: "u1"}, {ID: "u2", Name: "Grace"}}, ticket.Assignees)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ticket.CreatedAt)
}

func Test_Client_Sends_Status_Patch(t *testing.T) {
	t.Parallel()

	var gotMethod, gotID string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotID = r.URL.Query().Get("ticketId")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"_id": "t1", "status": "Resolved"}`)
	}, "")

	ticket, err := client.UpdateTicketStatus(context.Background(), "t1", api.StatusResolved)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "t1", gotID)
	assert.Equal(t, map[string]any{"status": "Resolved"}, gotBody)
	assert.Equal(t, api.StatusResolved, ticket.Status)
}

func Test_Client_Omits_Authorization_Without_Token(t *testing.T) {
	t.Parallel()

	var hasAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		io.WriteString(w, `{"projects": [], "total": 0, "page": 1, "pages": 0}`)
	}, "")

	page, err := client.ListProjects(context.Background(), api.ListParams{})
	require.NoError(t, err)
	assert.False(t, hasAuth)
	assert.NotNil(t, page.Projects)
}

func Test_Client_Decodes_Error_Message(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "MessageField", status: 400, body: `{"message": "Title is required"}`, message: "Title is required"},
		{name: "ErrorField", status: 500, body: `{"error": "database down"}`, message: "database down"},
		{name: "PlainText", status: 502, body: "bad gateway\n", message: "bad gateway"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				io.WriteString(w, testCase.body)
			}, "")

			_, err := client.CreateTicket(context.Background(), api.TicketInput{Title: "x"})
			require.Error(t, err)

			var apiErr *api.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, testCase.status, apiErr.StatusCode)
			assert.Equal(t, testCase.message, api.Message(err))
		})
	}
}

func Test_Client_Calls_Unauthorized_Hook(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "Not authorized, token failed"}`)
	}, "expired")

	var hookPath string
	client.OnUnauthorized = func(req *http.Request) { hookPath = req.URL.Path }

	err := client.DeleteTicket(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "/api/tickets/delete", hookPath)
}

func Test_NewClient_Rejects_Relative_URL(t *testing.T) {
	t.Parallel()

	_, err := api.NewClient("localhost:5000/api", nil, nil)
	require.Error(t, err)
}

func Test_ParseStatus_Accepts_Loose_Spelling(t *testing.T) {
	t.Parallel()

	status, ok := api.ParseStatus("in-progress")
	require.True(t, ok)
	assert.Equal(t, api.StatusInProgress, status)

	status, ok = api.ParseStatus(" RESOLVED ")
	require.True(t, ok)
	assert.Equal(t, api.StatusResolved, status)

	_, ok = api.ParseStatus("Done")
	assert.False(t, ok)
}
