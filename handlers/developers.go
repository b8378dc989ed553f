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

type UserAPI interface {
	ListUsers(ctx context.Context, params api.ListParams) (*api.UserPage, error)
	RegisterUser(ctx context.Context, input api.UserInput) (*api.User, error)
	UpdateUser(ctx context.Context, id string, input api.UserInput) (*api.User, error)
}

// DeveloperHandler serves the team page. Anyone signed in can list;
// creating and editing is for managers.
type DeveloperHandler struct {
	api    UserAPI
	store  store.Dispatcher
	logger *slog.Logger
}

func NewDeveloperHandler(userAPI UserAPI, st store.Dispatcher, logger *slog.Logger) *DeveloperHandler {
	return &DeveloperHandler{api: userAPI, store: st, logger: logger}
}

func (h *DeveloperHandler) ListDevelopers(w http.ResponseWriter, r *http.Request) {
	params := listParams(r, 10)
	if params.SortBy == "" {
		params.SortBy = "createdAt"
	}
	if params.Order == "" {
		params.Order = "desc"
	}

	h.store.Dispatch(store.UsersFetchStarted{})
	page, err := h.api.ListUsers(r.Context(), params)
	if err != nil {
		h.store.Dispatch(store.UsersFetchFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.UsersFetched{Page: *page})
	writeJSON(w, http.StatusOK, page)
}

func (h *DeveloperHandler) CreateDeveloper(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeUser(w, r)
	if !ok {
		return
	}
	if input.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Password is required")
		return
	}
	if input.Role == "" {
		input.Role = api.RoleDeveloper
	}

	h.store.Dispatch(store.UserCreateStarted{})
	user, err := h.api.RegisterUser(r.Context(), input)
	if err != nil {
		h.store.Dispatch(store.UserCreateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.UserCreated{User: *user})
	writeJSON(w, http.StatusCreated, user)
}

func (h *DeveloperHandler) UpdateDeveloper(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	input, ok := decodeUser(w, r)
	if !ok {
		return
	}

	h.store.Dispatch(store.UserUpdateStarted{})
	user, err := h.api.UpdateUser(r.Context(), id, input)
	if err != nil {
		h.store.Dispatch(store.UserUpdateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	if user.ID == "" {
		user.ID = id
	}
	h.store.Dispatch(store.UserUpdated{User: *user})
	writeJSON(w, http.StatusOK, user)
}

func decodeUser(w http.ResponseWriter, r *http.Request) (api.UserInput, bool) {
	var input api.UserInput
	if !decodeBody(w, r, &input) {
		return input, false
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Name and email are required")
		return input, false
	}
	if input.Role != "" && input.Role != api.RoleDeveloper && input.Role != api.RoleManager {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return input, false
	}
	return input, true
}
