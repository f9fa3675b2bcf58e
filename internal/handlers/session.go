package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EduNet2023/NovoApkPesca/internal/services"
	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/go-chi/chi/v5"
)

const defaultSessionsPerPage = 10

// SessionHandler provides HTTP handlers for fishing sessions.
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler constructs a handler with the provided service.
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// SessionRouter registers session routes on the given router. Every route
// requires authentication.
func SessionRouter(r chi.Router, sessionService *services.SessionService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSessionHandler(sessionService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListSessions)
	r.Post("/", handler.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", handler.GetSession)
		r.Put("/", handler.UpdateSession)
		r.Delete("/", handler.DeleteSession)
	})
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, perPage, offset, err := parsePagination(r, defaultSessionsPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	locationID := strings.TrimSpace(r.URL.Query().Get("location_id"))
	sessions, total, err := h.sessionService.List(r.Context(), userID, locationID, offset, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, SessionListResponse{
		Sessions:    sessions,
		Total:       total,
		Pages:       totalPages(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	})
}

// GetSession returns one session with its catches embedded.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, catches, err := h.sessionService.GetWithCatches(r.Context(), userID, chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fishing session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch fishing session")
		return
	}

	writeJSON(w, http.StatusOK, SessionDetailResponse{
		Session: SessionWithCatches{FishingSession: session, Catches: catches},
	})
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.LocationID = strings.TrimSpace(req.LocationID)
	if req.LocationID == "" || req.Date == nil || req.StartTime == nil || req.EndTime == nil {
		writeError(w, http.StatusBadRequest, "location_id, date, start_time and end_time are required")
		return
	}

	session, err := h.sessionService.Create(r.Context(), userID, services.SessionCreate{
		LocationID:         req.LocationID,
		Date:               *req.Date,
		StartTime:          *req.StartTime,
		EndTime:            *req.EndTime,
		WeatherConditions:  req.WeatherConditions,
		TemperatureCelsius: req.TemperatureCelsius,
		Notes:              req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create fishing session")
		return
	}

	writeJSON(w, http.StatusCreated, SessionMutationResponse{Message: "fishing session created", Session: session})
}

func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, err := h.sessionService.Update(r.Context(), userID, chi.URLParam(r, "sessionID"), services.SessionUpdate{
		LocationID:         req.LocationID,
		Date:               req.Date,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		WeatherConditions:  req.WeatherConditions,
		TemperatureCelsius: req.TemperatureCelsius,
		Notes:              req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fishing session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update fishing session")
		return
	}

	writeJSON(w, http.StatusOK, SessionMutationResponse{Message: "fishing session updated", Session: session})
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessionService.Delete(r.Context(), userID, chi.URLParam(r, "sessionID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fishing session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete fishing session")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "fishing session deleted"})
}

type SessionCreateRequest struct {
	LocationID         string           `json:"location_id"`
	Date               *types.Date      `json:"date"`
	StartTime          *types.ClockTime `json:"start_time"`
	EndTime            *types.ClockTime `json:"end_time"`
	WeatherConditions  *string          `json:"weather_conditions"`
	TemperatureCelsius *float64         `json:"temperature_celsius"`
	Notes              *string          `json:"notes"`
}

type SessionUpdateRequest struct {
	LocationID         *string          `json:"location_id"`
	Date               *types.Date      `json:"date"`
	StartTime          *types.ClockTime `json:"start_time"`
	EndTime            *types.ClockTime `json:"end_time"`
	WeatherConditions  *string          `json:"weather_conditions"`
	TemperatureCelsius *float64         `json:"temperature_celsius"`
	Notes              *string          `json:"notes"`
}

// SessionWithCatches is a session detail view with its catches inlined.
type SessionWithCatches struct {
	types.FishingSession
	Catches []types.Catch `json:"catches"`
}

type SessionDetailResponse struct {
	Session SessionWithCatches `json:"session"`
}

type SessionMutationResponse struct {
	Message string               `json:"message"`
	Session types.FishingSession `json:"session"`
}

// SessionListResponse is the paginated list response payload.
type SessionListResponse struct {
	Sessions    []types.FishingSession `json:"sessions"`
	Total       int                    `json:"total"`
	Pages       int                    `json:"pages"`
	CurrentPage int                    `json:"current_page"`
	PerPage     int                    `json:"per_page"`
}
