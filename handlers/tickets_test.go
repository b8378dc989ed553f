package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/handlers"
	"github.com/CrowderSoup/minijira/store"
)

func Test_TicketHandler_Create_Reloads_Board(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{}
	st := store.New()
	reloads := 0
	h := handlers.NewTicketHandler(fake, st, func(context.Context) error {
		reloads++
		return nil
	}, discardLogger())

	rec := serve(t, http.MethodPost, "/api/tickets", "/api/tickets",
		map[string]any{"title": "  Fix login  ", "priority": "High"}, h.CreateTicket)

	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[api.Ticket](t, rec)
	assert.Equal(t, "Fix login", created.Title)
	assert.Equal(t, 1, reloads)
	require.Len(t, fake.created, 1)
	assert.Equal(t, api.PriorityHigh, fake.created[0].Priority)
	assert.True(t, st.State().Tickets.IsSuccess)
}

func Test_TicketHandler_Create_Validates_Input(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body any
	}{
		{name: "MissingTitle", body: map[string]any{"title": "   "}},
		{name: "UnknownStatus", body: map[string]any{"title": "x", "status": "Done"}},
		{name: "NotJSON", body: "just text"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeAPI{}
			h := handlers.NewTicketHandler(fake, store.New(), nil, discardLogger())

			rec := serve(t, http.MethodPost, "/api/tickets", "/api/tickets", testCase.body, h.CreateTicket)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, fake.created)
		})
	}
}

func Test_TicketHandler_Update_Patches_Store(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{tickets: []api.Ticket{{ID: "t1", Title: "Old", Status: api.StatusOpen}}}
	st := store.New()
	st.Dispatch(store.TicketsFetched{Page: api.TicketPage{Tickets: fake.tickets}})
	h := handlers.NewTicketHandler(fake, st, nil, discardLogger())

	rec := serve(t, http.MethodPut, "/api/tickets/{id}", "/api/tickets/t1",
		map[string]any{"title": "New", "status": "Resolved"}, h.UpdateTicket)

	require.Equal(t, http.StatusOK, rec.Code)
	stored, ok := st.State().Tickets.Find("t1")
	require.True(t, ok)
	assert.Equal(t, "New", stored.Title)
	assert.Equal(t, api.StatusResolved, stored.Status)
}

func Test_TicketHandler_Update_Passes_API_Status_Through(t *testing.T) {
	t.Parallel()

	st := store.New()
	h := handlers.NewTicketHandler(&fakeAPI{}, st, nil, discardLogger())

	rec := serve(t, http.MethodPut, "/api/tickets/{id}", "/api/tickets/ghost",
		map[string]any{"title": "x"}, h.UpdateTicket)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]string{"message": "Ticket not found"}, decode[map[string]string](t, rec))
	assert.True(t, st.State().Tickets.IsError)
}

func Test_TicketHandler_Delete_Removes_From_Store(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{}
	st := store.New()
	st.Dispatch(store.TicketsFetched{Page: api.TicketPage{Tickets: []api.Ticket{{ID: "t1"}, {ID: "t2"}}}})
	h := handlers.NewTicketHandler(fake, st, nil, discardLogger())

	rec := serve(t, http.MethodDelete, "/api/tickets/{id}", "/api/tickets/t1", nil, h.DeleteTicket)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"t1"}, fake.deleted)
	tickets := st.State().Tickets.Tickets
	require.Len(t, tickets, 1)
	assert.Equal(t, "t2", tickets[0].ID)
}

func Test_TicketHandler_List_Does_Not_Replace_Board_List(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{tickets: []api.Ticket{{ID: "t9"}}}
	st := store.New()
	st.Dispatch(store.TicketsFetched{Page: api.TicketPage{Tickets: []api.Ticket{{ID: "t1"}}}})
	h := handlers.NewTicketHandler(fake, st, nil, discardLogger())

	rec := serve(t, http.MethodGet, "/api/tickets", "/api/tickets?page=2&search=login", nil, h.ListTickets)

	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[api.TicketPage](t, rec)
	require.Len(t, page.Tickets, 1)
	assert.Equal(t, "t9", page.Tickets[0].ID)

	tickets := st.State().Tickets.Tickets
	require.Len(t, tickets, 1)
	assert.Equal(t, "t1", tickets[0].ID)
}
