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

const defaultLocationsPerPage = 50

// LocationHandler provides HTTP handlers for fishing locations.
type LocationHandler struct {
	locationService *services.LocationService
}

// NewLocationHandler constructs a handler with the provided service.
func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// LocationRouter registers location routes on the given router. Every route
// requires authentication.
func LocationRouter(r chi.Router, locationService *services.LocationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewLocationHandler(locationService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListLocations)
	r.Post("/", handler.CreateLocation)
	r.Route("/{locationID}", func(r chi.Router) {
		r.Get("/", handler.GetLocation)
		r.Put("/", handler.UpdateLocation)
		r.Delete("/", handler.DeleteLocation)
	})
}

func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, perPage, offset, err := parsePagination(r, defaultLocationsPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	locations, total, err := h.locationService.List(r.Context(), userID, offset, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}

	writeJSON(w, http.StatusOK, LocationListResponse{
		Locations:   locations,
		Total:       total,
		Pages:       totalPages(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	})
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	location, err := h.locationService.Get(r.Context(), userID, chi.URLParam(r, "locationID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch location")
		return
	}

	writeJSON(w, http.StatusOK, LocationResponse{Location: location})
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LocationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "name, latitude and longitude are required")
		return
	}

	location, err := h.locationService.Create(r.Context(), userID, services.LocationCreate{
		Name:        req.Name,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateLocationName) {
			writeError(w, http.StatusBadRequest, "location name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	writeJSON(w, http.StatusCreated, LocationMutationResponse{Message: "location created", Location: location})
}

func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LocationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	location, err := h.locationService.Update(r.Context(), userID, chi.URLParam(r, "locationID"), services.LocationUpdate{
		Name:        req.Name,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "location not found")
		case errors.Is(err, store.ErrDuplicateLocationName):
			writeError(w, http.StatusBadRequest, "location name already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update location")
		}
		return
	}

	writeJSON(w, http.StatusOK, LocationMutationResponse{Message: "location updated", Location: location})
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.locationService.Delete(r.Context(), userID, chi.URLParam(r, "locationID")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "location not found")
		case errors.Is(err, store.ErrLocationHasSessions):
			writeError(w, http.StatusBadRequest, "cannot delete location with existing sessions")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete location")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "location deleted"})
}

type LocationCreateRequest struct {
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description *string  `json:"description"`
}

type LocationUpdateRequest struct {
	Name        *string  `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description *string  `json:"description"`
}

type LocationResponse struct {
	Location types.Location `json:"location"`
}

type LocationMutationResponse struct {
	Message  string         `json:"message"`
	Location types.Location `json:"location"`
}

// LocationListResponse is the paginated list response payload.
type LocationListResponse struct {
	Locations   []types.Location `json:"locations"`
	Total       int              `json:"total"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
	PerPage     int              `json:"per_page"`
}
