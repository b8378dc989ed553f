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

type ProjectAPI interface {
	ListProjects(ctx context.Context, params api.ListParams) (*api.ProjectPage, error)
	CreateProject(ctx context.Context, input api.ProjectInput) (*api.Project, error)
	UpdateProject(ctx context.Context, id string, input api.ProjectInput) (*api.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type ProjectHandler struct {
	api    ProjectAPI
	store  store.Dispatcher
	logger *slog.Logger
}

func NewProjectHandler(projectAPI ProjectAPI, st store.Dispatcher, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{api: projectAPI, store: st, logger: logger}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	h.store.Dispatch(store.ProjectsFetchStarted{})
	page, err := h.api.ListProjects(r.Context(), listParams(r, 10))
	if err != nil {
		h.store.Dispatch(store.ProjectsFetchFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.ProjectsFetched{Page: *page})
	writeJSON(w, http.StatusOK, page)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	h.store.Dispatch(store.ProjectCreateStarted{})
	project, err := h.api.CreateProject(r.Context(), input)
	if err != nil {
		h.store.Dispatch(store.ProjectCreateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.ProjectCreated{Project: *project})
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	input, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	h.store.Dispatch(store.ProjectUpdateStarted{})
	project, err := h.api.UpdateProject(r.Context(), id, input)
	if err != nil {
		h.store.Dispatch(store.ProjectUpdateFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	if project.ID == "" {
		project.ID = id
	}
	h.store.Dispatch(store.ProjectUpdated{Project: *project})
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.store.Dispatch(store.ProjectDeleteStarted{})
	if err := h.api.DeleteProject(r.Context(), id); err != nil {
		h.store.Dispatch(store.ProjectDeleteFailed{Message: api.Message(err)})
		handleError(w, h.logger, err)
		return
	}
	h.store.Dispatch(store.ProjectDeleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) decodeProject(w http.ResponseWriter, r *http.Request) (api.ProjectInput, bool) {
	var input api.ProjectInput
	if !decodeBody(w, r, &input) {
		return input, false
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return input, false
	}
	return input, true
}
