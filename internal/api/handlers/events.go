package handlers

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"firebay/internal/core"
	"firebay/internal/types"
)

// maxEventListLimit caps the ?limit= parameter.
const maxEventListLimit = 500

// EventStore is the persistence seam for the detected-event registry.
type EventStore interface {
	Insert(ctx context.Context, event *types.DetectedEvent) error
	List(ctx context.Context, limit int) ([]types.DetectedEvent, error)
}

// EventsHandler serves the detected-event registry.
type EventsHandler struct {
	store     EventStore
	validator *core.Validator
	clock     types.Clock
	logger    *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(store EventStore, validator *core.Validator, clock types.Clock, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		store:     store,
		validator: validator,
		clock:     clock,
		logger:    logger,
	}
}

// RegisterRoutes mounts the event endpoints.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/export", h.HandleExport)
	})
}

// HandleList handles GET /v1/events?limit=.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxEventListLimit {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationMissingField,
				"limit must be a positive integer",
				err,
				map[string]any{"max": maxEventListLimit, "value": raw},
			))
			return
		}
		limit = parsed
	}

	events, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		core.Error(w, r, err)
		return
	}
	if events == nil {
		events = []types.DetectedEvent{}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: events})
}

// createEventRequest is the POST /v1/events body.
type createEventRequest struct {
	OccurredAt time.Time `json:"occurred_at"`
	Kind       string    `json:"kind" validate:"required,oneof=thermal_anomaly index_alert hotspot"`
	Severity   string    `json:"severity" validate:"required,oneof=BAJO MEDIO ALTO CRÍTICO"`
	Sector     string    `json:"sector" validate:"required,max=128"`
	Status     string    `json:"status" validate:"omitempty,oneof=monitoring resolved"`
}

// HandleCreate handles POST /v1/events. The server assigns the ID; a zero
// occurred_at defaults to now and an empty status to monitoring.
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	event := types.DetectedEvent{
		ID:         "evt_" + uuid.NewString(),
		OccurredAt: req.OccurredAt,
		Kind:       types.EventKind(req.Kind),
		Severity:   types.RiskLevel(req.Severity),
		Sector:     req.Sector,
		Status:     types.EventStatus(req.Status),
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = h.clock.Now()
	}
	if event.Status == "" {
		event.Status = types.EventStatusMonitoring
	}

	if err := h.store.Insert(r.Context(), &event); err != nil {
		h.logger.Error("failed to insert event", "error", err)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: event})
}

// HandleExport handles GET /v1/events/export: the full registry as a
// gzip-compressed CSV download.
func (h *EventsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.List(r.Context(), maxEventListLimit)
	if err != nil {
		h.logger.Error("failed to export events", "error", err)
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="firebay-events.csv.gz"`)
	w.WriteHeader(http.StatusOK)

	gz := gzip.NewWriter(w)
	defer gz.Close()

	cw := csv.NewWriter(gz)
	_ = cw.Write([]string{"id", "occurred_at", "kind", "severity", "sector", "status"})
	for _, e := range events {
		_ = cw.Write([]string{
			e.ID,
			e.OccurredAt.UTC().Format(time.RFC3339),
			string(e.Kind),
			string(e.Severity),
			e.Sector,
			string(e.Status),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		// Headers already sent; log and abandon the stream.
		h.logger.Error("failed to stream event export", "error", err)
	}
}
