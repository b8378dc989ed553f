package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CrowderSoup/minijira/database"
)

type PreferenceStore interface {
	Preference(ctx context.Context, key, fallback string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// PreferencesHandler stores the board page size and applies it right away.
type PreferencesHandler struct {
	prefs       PreferenceStore
	defaultSize int
	apply       func(size int)
	logger      *slog.Logger
}

func NewPreferencesHandler(prefs PreferenceStore, defaultSize int, apply func(size int), logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, defaultSize: defaultSize, apply: apply, logger: logger}
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	value, err := h.prefs.Preference(r.Context(), database.PrefPageSize, strconv.Itoa(h.defaultSize))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	size, err := strconv.Atoi(value)
	if err != nil {
		size = h.defaultSize
	}
	writeJSON(w, http.StatusOK, map[string]int{"pageSize": size})
}

func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageSize int `json:"pageSize"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PageSize < 1 || req.PageSize > 1000 {
		writeMessage(w, http.StatusBadRequest, "pageSize must be between 1 and 1000")
		return
	}

	if err := h.prefs.SetPreference(r.Context(), database.PrefPageSize, strconv.Itoa(req.PageSize)); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if h.apply != nil {
		h.apply(req.PageSize)
	}
	writeJSON(w, http.StatusOK, map[string]int{"pageSize": req.PageSize})
}
