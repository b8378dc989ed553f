package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI stands in for the mini-jira API client.
type fakeAPI struct {
	mu sync.Mutex

	tickets   []api.Ticket
	projects  []api.Project
	users     []api.User
	err       error
	created   []api.TicketInput
	updated   map[string]any
	deleted   []string
	listCalls int
	timeLogs  []api.TimeLogInput
}

func (f *fakeAPI) ListTickets(_ context.Context, params api.ListParams) (*api.TicketPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	tickets := append([]api.Ticket{}, f.tickets...)
	return &api.TicketPage{Tickets: tickets, TotalTickets: len(tickets), CurrentPage: 1, TotalPages: 1}, nil
}

func (f *fakeAPI) CreateTicket(_ context.Context, input api.TicketInput) (*api.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	status := input.Status
	if status == "" {
		status = api.StatusOpen
	}
	ticket := api.Ticket{ID: "new", Title: input.Title, Status: status}
	f.tickets = append(f.tickets, ticket)
	return &ticket, nil
}

func (f *fakeAPI) UpdateTicket(_ context.Context, id string, body any) (*api.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.updated == nil {
		f.updated = map[string]any{}
	}
	f.updated[id] = body
	for i := range f.tickets {
		if f.tickets[i].ID != id {
			continue
		}
		switch update := body.(type) {
		case api.TicketInput:
			f.tickets[i].Title = update.Title
			if update.Status != "" {
				f.tickets[i].Status = update.Status
			}
		case api.StatusPatch:
			f.tickets[i].Status = update.Status
		}
		ticket := f.tickets[i]
		return &ticket, nil
	}
	return nil, &api.APIError{StatusCode: http.StatusNotFound, Message: "Ticket not found"}
}

func (f *fakeAPI) UpdateTicketStatus(ctx context.Context, id string, status api.Status) (*api.Ticket, error) {
	return f.UpdateTicket(ctx, id, api.StatusPatch{Status: status})
}

func (f *fakeAPI) DeleteTicket(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListProjects(context.Context, api.ListParams) (*api.ProjectPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	projects := append([]api.Project{}, f.projects...)
	return &api.ProjectPage{Projects: projects, Total: len(projects), Page: 1, Pages: 1}, nil
}

func (f *fakeAPI) CreateProject(_ context.Context, input api.ProjectInput) (*api.Project, error) {
	return &api.Project{ID: "p-new", Name: input.Name}, f.err
}

func (f *fakeAPI) UpdateProject(_ context.Context, id string, input api.ProjectInput) (*api.Project, error) {
	return &api.Project{ID: id, Name: input.Name}, f.err
}

func (f *fakeAPI) DeleteProject(context.Context, string) error { return f.err }

func (f *fakeAPI) ListUsers(_ context.Context, params api.ListParams) (*api.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := append([]api.User{}, f.users...)
	return &api.UserPage{Users: users, Total: len(users), Page: 1, Pages: 1}, f.err
}

func (f *fakeAPI) RegisterUser(_ context.Context, input api.UserInput) (*api.User, error) {
	return &api.User{ID: "u-new", Name: input.Name, Email: input.Email, Role: input.Role}, f.err
}

func (f *fakeAPI) UpdateUser(_ context.Context, id string, input api.UserInput) (*api.User, error) {
	return &api.User{ID: id, Name: input.Name, Email: input.Email, Role: input.Role}, f.err
}

func (f *fakeAPI) LogTime(_ context.Context, input api.TimeLogInput) (*api.TimeLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.timeLogs = append(f.timeLogs, input)
	return &api.TimeLog{ID: "log1", TicketID: input.TicketID, Duration: input.Duration}, nil
}

func (f *fakeAPI) TicketTimeLogs(context.Context, string) ([]api.TimeLog, error) {
	return []api.TimeLog{}, f.err
}

func (f *fakeAPI) ListActivities(_ context.Context, page, limit int) (*api.ActivityPage, error) {
	return &api.ActivityPage{Activities: []api.Activity{}, Page: page}, f.err
}

// serve runs one request through a router with a single route.
func serve(t *testing.T, method, pattern, target string, body any, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	router := mux.NewRouter()
	router.HandleFunc(pattern, handler).Methods(method)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
