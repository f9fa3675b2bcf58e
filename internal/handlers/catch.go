package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/EduNet2023/NovoApkPesca/internal/services"
	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultCatchesPerPage = 20
	maxPhotoBytes         = 10 << 20
	formFieldPhoto        = "photo"
)

// CatchHandler provides HTTP handlers for catches.
type CatchHandler struct {
	catchService *services.CatchService
}

// NewCatchHandler constructs a handler with the provided service.
func NewCatchHandler(catchService *services.CatchService) *CatchHandler {
	return &CatchHandler{catchService: catchService}
}

// CatchRouter registers catch routes on the given router. Every route
// requires authentication.
func CatchRouter(r chi.Router, catchService *services.CatchService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCatchHandler(catchService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListCatches)
	r.Post("/", handler.CreateCatch)
	r.Get("/session/{sessionID}", handler.ListCatchesBySession)
	r.Route("/{catchID}", func(r chi.Router) {
		r.Get("/", handler.GetCatch)
		r.Put("/", handler.UpdateCatch)
		r.Delete("/", handler.DeleteCatch)
		r.Post("/photo", handler.UploadPhoto)
		r.Get("/photo", handler.GetPhoto)
	})
}

func (h *CatchHandler) ListCatches(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, perPage, offset, err := parsePagination(r, defaultCatchesPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := store.CatchFilter{
		SessionID: strings.TrimSpace(r.URL.Query().Get("session_id")),
		Species:   strings.TrimSpace(r.URL.Query().Get("species")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("released")); raw != "" {
		released, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid released")
			return
		}
		filter.Released = &released
	}

	catches, total, err := h.catchService.List(r.Context(), userID, filter, offset, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list catches")
		return
	}

	writeJSON(w, http.StatusOK, CatchListResponse{
		Catches:     catches,
		Total:       total,
		Pages:       totalPages(total, perPage),
		CurrentPage: page,
		PerPage:     perPage,
	})
}

// ListCatchesBySession returns every catch of one owned session.
func (h *CatchHandler) ListCatchesBySession(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, catches, err := h.catchService.ListForSession(r.Context(), userID, chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fishing session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list catches")
		return
	}

	writeJSON(w, http.StatusOK, CatchesBySessionResponse{
		Catches: catches,
		Total:   len(catches),
		SessionInfo: SessionInfo{
			ID:           session.ID,
			Date:         session.Date,
			LocationName: session.LocationName,
		},
	})
}

func (h *CatchHandler) GetCatch(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := h.catchService.Get(r.Context(), userID, chi.URLParam(r, "catchID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch catch")
		return
	}

	writeJSON(w, http.StatusOK, CatchResponse{Catch: c})
}

func (h *CatchHandler) CreateCatch(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Species = strings.TrimSpace(req.Species)
	if req.SessionID == "" || req.Species == "" {
		writeError(w, http.StatusBadRequest, "session_id and species are required")
		return
	}

	released := false
	if req.Released != nil {
		released = *req.Released
	}

	c, err := h.catchService.Create(r.Context(), userID, services.CatchCreate{
		SessionID: req.SessionID,
		Species:   req.Species,
		WeightKg:  req.WeightKg,
		LengthCm:  req.LengthCm,
		BaitUsed:  req.BaitUsed,
		Released:  released,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fishing session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create catch")
		return
	}

	writeJSON(w, http.StatusCreated, CatchMutationResponse{Message: "catch created", Catch: c})
}

func (h *CatchHandler) UpdateCatch(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CatchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	c, err := h.catchService.Update(r.Context(), userID, chi.URLParam(r, "catchID"), services.CatchUpdate{
		SessionID: req.SessionID,
		Species:   req.Species,
		WeightKg:  req.WeightKg,
		LengthCm:  req.LengthCm,
		BaitUsed:  req.BaitUsed,
		Released:  req.Released,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update catch")
		return
	}

	writeJSON(w, http.StatusOK, CatchMutationResponse{Message: "catch updated", Catch: c})
}

func (h *CatchHandler) DeleteCatch(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.catchService.Delete(r.Context(), userID, chi.URLParam(r, "catchID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete catch")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "catch deleted"})
}

// UploadPhoto stores a photo for the catch in object storage.
func (h *CatchHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldPhoto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}

	data, err := readFileLimited(file, maxPhotoBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	c, err := h.catchService.UploadPhoto(r.Context(), userID, chi.URLParam(r, "catchID"), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPhotoStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "catch not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to store photo")
		}
		return
	}

	writeJSON(w, http.StatusCreated, CatchMutationResponse{Message: "photo uploaded", Catch: c})
}

// GetPhoto streams the stored photo of the catch.
func (h *CatchHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rc, contentType, err := h.catchService.OpenPhoto(r.Context(), userID, chi.URLParam(r, "catchID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPhotoStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "photo not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch photo")
		}
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

type CatchCreateRequest struct {
	SessionID string   `json:"session_id"`
	Species   string   `json:"species"`
	WeightKg  *float64 `json:"weight_kg"`
	LengthCm  *float64 `json:"length_cm"`
	BaitUsed  *string  `json:"bait_used"`
	Released  *bool    `json:"released"`
	PhotoURL  *string  `json:"photo_url"`
}

type CatchUpdateRequest struct {
	SessionID *string  `json:"session_id"`
	Species   *string  `json:"species"`
	WeightKg  *float64 `json:"weight_kg"`
	LengthCm  *float64 `json:"length_cm"`
	BaitUsed  *string  `json:"bait_used"`
	Released  *bool    `json:"released"`
	PhotoURL  *string  `json:"photo_url"`
}

type CatchResponse struct {
	Catch types.Catch `json:"catch"`
}

type CatchMutationResponse struct {
	Message string      `json:"message"`
	Catch   types.Catch `json:"catch"`
}

// SessionInfo is the session summary attached to a by-session listing.
type SessionInfo struct {
	ID           string     `json:"id"`
	Date         types.Date `json:"date"`
	LocationName string     `json:"location_name"`
}

type CatchesBySessionResponse struct {
	Catches     []types.Catch `json:"catches"`
	Total       int           `json:"total"`
	SessionInfo SessionInfo   `json:"session_info"`
}

// CatchListResponse is the paginated list response payload.
type CatchListResponse struct {
	Catches     []types.Catch `json:"catches"`
	Total       int           `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
	PerPage     int           `json:"per_page"`
}
