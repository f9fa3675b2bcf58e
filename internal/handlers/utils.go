package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const maxPerPage = 100

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a mutation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func subjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok || strings.TrimSpace(subject) == "" {
		return "", errors.New("missing subject")
	}
	return subject, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// parsePagination reads page and per_page (limit accepted as an alias) with
// a per-endpoint default page size.
func parsePagination(r *http.Request, defaultPerPage int) (page, perPage, offset int, err error) {
	page = 1
	perPage = defaultPerPage

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	rawPerPage := strings.TrimSpace(r.URL.Query().Get("per_page"))
	if rawPerPage == "" {
		rawPerPage = strings.TrimSpace(r.URL.Query().Get("limit"))
	}
	if rawPerPage != "" {
		perPage, err = strconv.Atoi(rawPerPage)
		if err != nil || perPage < 1 {
			return 0, 0, 0, errors.New("invalid per_page")
		}
	}

	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	offset = (page - 1) * perPage
	return page, perPage, offset, nil
}

// totalPages derives the page count reported in list envelopes.
func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// parseLimit reads an optional positive limit query parameter, falling back
// to the endpoint default.
func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}
