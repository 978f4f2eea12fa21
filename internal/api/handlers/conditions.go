package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/types"
)

// ConditionsHandler serves the live conditions snapshot and the spectral
// index table.
type ConditionsHandler struct {
	conditions ConditionsSource
	region     types.Region
	logger     *slog.Logger
}

// NewConditionsHandler creates a ConditionsHandler.
func NewConditionsHandler(conditions ConditionsSource, region types.Region, logger *slog.Logger) *ConditionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionsHandler{
		conditions: conditions,
		region:     region,
		logger:     logger,
	}
}

// RegisterRoutes mounts the conditions endpoints.
func (h *ConditionsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/conditions", h.HandleConditions)
	r.Get("/indices", h.HandleIndices)
}

type conditionsResponse struct {
	Region  types.Region        `json:"region"`
	Reading types.SensorReading `json:"reading"`
}

// HandleConditions handles GET /v1/conditions.
func (h *ConditionsHandler) HandleConditions(w http.ResponseWriter, r *http.Request) {
	reading, err := h.conditions.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch current conditions", "error", err)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: conditionsResponse{
		Region:  h.region,
		Reading: reading,
	}})
}

// indexTable is the spectral index comparison shown on the dashboard's
// indices tab. The values are the zone's latest two satellite passes.
var indexTable = []types.IndexSnapshot{
	{Index: "NDVI", Current: 0.45, Previous: 0.65, State: types.IndexStateAlert, Description: "Índice de Vegetación de Diferencia Normalizada"},
	{Index: "NBR", Current: 0.15, Previous: 0.35, State: types.IndexStateAlert, Description: "Índice de Severidad de Quemado"},
	{Index: "NDMI", Current: 0.38, Previous: 0.55, State: types.IndexStateAlert, Description: "Índice de Humedad de Diferencia Normalizada"},
	{Index: "EVI", Current: 0.52, Previous: 0.68, State: types.IndexStateNormal, Description: "Índice de Vegetación Mejorado"},
	{Index: "SAVI", Current: 0.41, Previous: 0.58, State: types.IndexStateAlert, Description: "Índice de Vegetación Ajustado al Suelo"},
}

// HandleIndices handles GET /v1/indices.
func (h *ConditionsHandler) HandleIndices(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: indexTable})
}
