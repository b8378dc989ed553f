package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/minijira/api"
)

const activityPageSize = 20

type TimeLogAPI interface {
	LogTime(ctx context.Context, input api.TimeLogInput) (*api.TimeLog, error)
	TicketTimeLogs(ctx context.Context, ticketID string) ([]api.TimeLog, error)
	ListActivities(ctx context.Context, page, limit int) (*api.ActivityPage, error)
}

// ActivityHandler serves time tracking and the activity timeline.
type ActivityHandler struct {
	api    TimeLogAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewActivityHandler(timeLogAPI TimeLogAPI, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{api: timeLogAPI, logger: logger, now: time.Now}
}

func (h *ActivityHandler) ListTimeLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.api.TicketTimeLogs(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// LogTime records minutes spent on a ticket. The date defaults to today.
func (h *ActivityHandler) LogTime(w http.ResponseWriter, r *http.Request) {
	var input api.TimeLogInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.TicketID = mux.Vars(r)["id"]
	input.Description = strings.TrimSpace(input.Description)
	if input.Duration <= 0 {
		writeMessage(w, http.StatusBadRequest, "Duration must be greater than zero")
		return
	}
	if input.Date == "" {
		input.Date = h.now().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, input.Date); err != nil {
		writeMessage(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return
	}

	entry, err := h.api.LogTime(r.Context(), input)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	page := 1
	if value, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && value > 0 {
		page = value
	}

	result, err := h.api.ListActivities(r.Context(), page, activityPageSize)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
