package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/store"
)

// TicketAPI is the part of the API client the ticket pages use.
type TicketAPI interface {
	ListTickets(ctx context.Context, params api.ListParams) (*api.TicketPage, error)
	CreateTicket(ctx context.Context, input api.TicketInput) (*api.Ticket, error)
	UpdateTicket(ctx context.Context, id string, body any) (*api.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

type TicketHandler struct {
	api    TicketAPI
	store  store.Dispatcher
	reload func(ctx context.Context) error
	logger *slog.Logger
}

// NewTicketHandler builds the handler. reload refreshes the board after a
// ticket is created, since the board only knows about tickets it fetched.
func NewTicketHandler(ticketAPI TicketAPI, st store.Dispatcher, reload func(ctx context.Context) error, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{api: ticketAPI, store: st, reload: reload, logger: logger}
}

// ListTickets passes a paged, searchable list through from the API. It does
// not replace the board's ticket list.
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.ListTickets(r.Context(), listParams(r, 10))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var input api.TicketInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	if input.Status != "" && !input.Status.Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	h.store.Dispatch(store.TicketCreateStarted{})
	ticket, err := h.api.CreateTicket(r.Context(), input)
	if err != nil {
		h.store.Dispatch(store.TicketCreateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.TicketCreated{Ticket: *ticket})

	if h.reload != nil {
		if err := h.reload(r.Context()); err != nil {
			h.logger.Warn("board reload after create failed", "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, ticket)
}

func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input api.TicketInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	if input.Status != "" && !input.Status.Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	h.store.Dispatch(store.TicketUpdateStarted{})
	ticket, err := h.api.UpdateTicket(r.Context(), id, input)
	if err != nil {
		h.store.Dispatch(store.TicketUpdateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	if ticket.ID == "" {
		ticket.ID = id
	}
	h.store.Dispatch(store.TicketUpdated{Ticket: *ticket})

	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.store.Dispatch(store.TicketDeleteStarted{})
	if err := h.api.DeleteTicket(r.Context(), id); err != nil {
		h.store.Dispatch(store.TicketDeleteFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.TicketDeleted{ID: id})

	w.WriteHeader(http.StatusNoContent)
}
