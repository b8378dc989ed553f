package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CrowderSoup/minijira/api"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// handleError maps an upstream API error to its status code and anything
// else to 502, since most failures here are the API being unreachable.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		writeMessage(w, apiErr.StatusCode, api.Message(err))
		return
	}
	logger.Error("request failed", "error", err)
	writeMessage(w, http.StatusBadGateway, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	return true
}

// listParams reads page, limit, search, role, sortBy and order from the
// query string. Malformed numbers fall back to the defaults.
func listParams(r *http.Request, defaultLimit int) api.ListParams {
	query := r.URL.Query()
	params := api.ListParams{
		Page:   1,
		Limit:  defaultLimit,
		Search: query.Get("search"),
		Role:   api.Role(query.Get("role")),
		SortBy: query.Get("sortBy"),
		Order:  query.Get("order"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}
	return params
}
