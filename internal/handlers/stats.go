package handlers

import (
	"net/http"

	"github.com/EduNet2023/NovoApkPesca/internal/services"
	"github.com/EduNet2023/NovoApkPesca/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultSpeciesLimit = 10
	defaultBaitsLimit   = 10
	defaultRecentLimit  = 5
)

// StatsHandler provides HTTP handlers for the statistics views.
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler constructs a handler with the provided service.
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// StatsRouter registers statistics routes on the given router. Every route
// requires authentication.
func StatsRouter(r chi.Router, statsService *services.StatsService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewStatsHandler(statsService)

	r.Use(authMiddleware)
	r.Get("/overview", handler.Overview)
	r.Get("/species", handler.Species)
	r.Get("/locations", handler.Locations)
	r.Get("/baits", handler.Baits)
	r.Get("/monthly", handler.Monthly)
	r.Get("/recent", handler.Recent)
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	overview, err := h.statsService.Overview(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute overview")
		return
	}

	writeJSON(w, http.StatusOK, OverviewResponse{Overview: overview})
}

func (h *StatsHandler) Species(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, err := parseLimit(r, defaultSpeciesLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.statsService.Species(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute species stats")
		return
	}

	writeJSON(w, http.StatusOK, SpeciesStatsResponse{SpeciesStats: stats})
}

func (h *StatsHandler) Locations(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.statsService.Locations(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute location stats")
		return
	}

	writeJSON(w, http.StatusOK, LocationStatsResponse{LocationStats: stats})
}

func (h *StatsHandler) Baits(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, err := parseLimit(r, defaultBaitsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.statsService.Baits(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute bait stats")
		return
	}

	writeJSON(w, http.StatusOK, BaitStatsResponse{BaitStats: stats})
}

func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.statsService.Monthly(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute monthly stats")
		return
	}

	writeJSON(w, http.StatusOK, MonthlyStatsResponse{MonthlyStats: stats})
}

func (h *StatsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, err := parseLimit(r, defaultRecentLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recent, err := h.statsService.Recent(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute recent activity")
		return
	}

	writeJSON(w, http.StatusOK, recent)
}

type OverviewResponse struct {
	Overview types.Overview `json:"overview"`
}

type SpeciesStatsResponse struct {
	SpeciesStats []types.SpeciesStat `json:"species_stats"`
}

type LocationStatsResponse struct {
	LocationStats []types.LocationStat `json:"location_stats"`
}

type BaitStatsResponse struct {
	BaitStats []types.BaitStat `json:"bait_stats"`
}

type MonthlyStatsResponse struct {
	MonthlyStats []types.MonthlyStat `json:"monthly_stats"`
}
