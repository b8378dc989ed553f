package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/store"
)

const recentTicketCount = 5

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	Total          int          `json:"total"`
	Open           int          `json:"open"`
	InProgress     int          `json:"inProgress"`
	Resolved       int          `json:"resolved"`
	Critical       int          `json:"critical"`
	Recent         []api.Ticket `json:"recentTickets"`
	Projects       int          `json:"projects"`
	ActiveProjects int          `json:"activeProjects"`
}

// Summarize counts tickets by status and priority. Matching is
// case-insensitive; recent tickets are the first five in list order.
func Summarize(tickets []api.Ticket, projects []api.Project) DashboardStats {
	stats := DashboardStats{
		Total:    len(tickets),
		Recent:   []api.Ticket{},
		Projects: len(projects),
	}
	for _, ticket := range tickets {
		switch {
		case strings.EqualFold(string(ticket.Status), string(api.StatusOpen)):
			stats.Open++
		case strings.EqualFold(string(ticket.Status), string(api.StatusInProgress)):
			stats.InProgress++
		case strings.EqualFold(string(ticket.Status), string(api.StatusResolved)):
			stats.Resolved++
		}
		if strings.EqualFold(string(ticket.Priority), string(api.PriorityCritical)) {
			stats.Critical++
		}
	}
	for _, project := range projects {
		if strings.EqualFold(string(project.Status), string(api.ProjectActive)) {
			stats.ActiveProjects++
		}
	}
	if len(tickets) > recentTicketCount {
		tickets = tickets[:recentTicketCount]
	}
	stats.Recent = append(stats.Recent, tickets...)
	return stats
}

// StateStore reads and updates the application state.
type StateStore interface {
	store.Reader
	store.Dispatcher
}

type DashboardHandler struct {
	reload   func(ctx context.Context) error
	projects ProjectAPI
	store    StateStore
	logger   *slog.Logger
}

// NewDashboardHandler builds the handler. reload refreshes the shared ticket
// list, the same one the board shows.
func NewDashboardHandler(reload func(ctx context.Context) error, projects ProjectAPI, st StateStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{reload: reload, projects: projects, store: st, logger: logger}
}

// GetDashboard refreshes tickets and projects and returns the summary. A
// failed refresh falls back to whatever the state already holds.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.reload(ctx); err != nil {
		h.logger.Warn("dashboard ticket refresh failed", "error", err)
	}

	h.store.Dispatch(store.ProjectsFetchStarted{})
	page, err := h.projects.ListProjects(ctx, api.ListParams{Limit: 100})
	if err != nil {
		h.store.Dispatch(store.ProjectsFetchFailed{Message: api.Message(err)})
		h.logger.Warn("dashboard project refresh failed", "error", err)
	} else {
		h.store.Dispatch(store.ProjectsFetched{Page: *page})
	}

	state := h.store.State()
	writeJSON(w, http.StatusOK, Summarize(state.Tickets.Tickets, state.Projects.Projects))
}
