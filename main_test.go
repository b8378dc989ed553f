package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/board"
)

func Test_RenderBoard_Shows_Every_Column(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b := board.Project([]api.Ticket{
		{ID: "665f1c2e9b1d4a0012ab34cd", Title: "Fix login", Status: api.StatusOpen, Priority: api.PriorityHigh, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "t2", Title: "Ship it", Status: api.StatusClosed},
	})

	out := renderBoard(b, now)

	for _, want := range []string{"Open (1)", "In Progress (0)", "Resolved (0)", "Closed (1)", "Fix login", "Ship it", "12ab34cd", "High", "2 days ago", "No tickets"} {
		assert.Contains(t, out, want)
	}
}

func Test_CheckOrigin(t *testing.T) {
	t.Parallel()

	request := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	strict := checkOrigin([]string{"http://localhost:5173"})
	assert.True(t, strict(request("http://localhost:5173")))
	assert.True(t, strict(request("")))
	assert.False(t, strict(request("http://evil.test")))

	assert.True(t, checkOrigin([]string{"*"})(request("http://anything.test")))
}
