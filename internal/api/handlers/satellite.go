package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/satellite"
	"firebay/internal/types"
)

// SatelliteHandler serves the scene catalog endpoints.
type SatelliteHandler struct {
	catalog satellite.Catalog
	logger  *slog.Logger
}

// NewSatelliteHandler creates a SatelliteHandler.
func NewSatelliteHandler(catalog satellite.Catalog, logger *slog.Logger) *SatelliteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SatelliteHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes mounts the satellite endpoints.
func (h *SatelliteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/satellite/scenes", h.HandleScenes)
}

// HandleScenes handles GET /v1/satellite/scenes. Either ?date= for a single
// day or ?start=&end= for a range. A single-day request for a day with no
// imagery is a 404; a range reports availability per day.
func (h *SatelliteHandler) HandleScenes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("date"); raw != "" {
		date, err := parseDateParam("date", raw)
		if err != nil {
			core.Error(w, r, err)
			return
		}

		scene, err := h.catalog.Lookup(r.Context(), date)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		if !scene.Available() {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeNotFoundScene,
				"no imagery for the requested date",
				nil,
				map[string]any{"date": scene.Date},
			))
			return
		}

		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: scene})
		return
	}

	startRaw, endRaw := q.Get("start"), q.Get("end")
	if startRaw == "" || endRaw == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"either date or both start and end query parameters are required",
			nil,
		))
		return
	}

	start, err := parseDateParam("start", startRaw)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	end, err := parseDateParam("end", endRaw)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	scenes, err := h.catalog.LookupRange(r.Context(), start, end)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: scenes})
}
