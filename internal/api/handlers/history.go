package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/history"
	"firebay/internal/types"
)

// historyDefaultDays is the window served when no range is requested.
const historyDefaultDays = 30

// HistorySource supplies the daily time series.
type HistorySource interface {
	Series(ctx context.Context, start, end time.Time) ([]history.Point, error)
}

// HistoryHandler serves the historical trends endpoint.
type HistoryHandler struct {
	source HistorySource
	clock  types.Clock
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(source HistorySource, clock types.Clock, logger *slog.Logger) *HistoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryHandler{
		source: source,
		clock:  clock,
		logger: logger,
	}
}

// RegisterRoutes mounts the history endpoint.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.HandleSeries)
}

type historyResponse struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Points []history.Point `json:"points"`
}

// HandleSeries handles GET /v1/history?start=&end=. Dates accept either
// YYYY-MM-DD or RFC3339; an omitted range defaults to the last 30 days.
func (h *HistoryHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	start := now.AddDate(0, 0, -(historyDefaultDays - 1))
	end := now

	var err error
	if raw := r.URL.Query().Get("start"); raw != "" {
		if start, err = parseDateParam("start", raw); err != nil {
			core.Error(w, r, err)
			return
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		if end, err = parseDateParam("end", raw); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	points, err := h.source.Series(r.Context(), start, end)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: historyResponse{
		Start:  points[0].Date.Format("2006-01-02"),
		End:    points[len(points)-1].Date.Format("2006-01-02"),
		Points: points,
	}})
}

// parseDateParam accepts YYYY-MM-DD or full RFC3339 timestamps.
func parseDateParam(name, raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidDate,
		"date must be YYYY-MM-DD or RFC3339",
		nil,
		map[string]any{"param": name, "value": raw},
	)
}
