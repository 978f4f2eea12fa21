package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebay/internal/core"
	"firebay/internal/db"
	"firebay/internal/types"
)

func newEventsRouter(store EventStore) http.Handler {
	h := NewEventsHandler(store, core.NewValidator(),
		fixedClock{now: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)}, nil)
	return makeV1Router(h.RegisterRoutes)
}

func seededStore() *db.MemoryEventStore {
	store := db.NewMemoryEventStore()
	store.Seed([]types.DetectedEvent{
		{
			ID:         "evt_1",
			OccurredAt: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventThermalAnomaly,
			Severity:   types.RiskHigh,
			Sector:     "Sector Norte",
			Status:     types.EventStatusResolved,
		},
		{
			ID:         "evt_2",
			OccurredAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventHotspot,
			Severity:   types.RiskCritical,
			Sector:     "Sector Oeste",
			Status:     types.EventStatusMonitoring,
		},
	})
	return store
}

func TestHandleListEvents(t *testing.T) {
	router := newEventsRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []types.DetectedEvent `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "evt_2", resp.Data[0].ID, "newest first")
}

func TestHandleListEvents_BadLimit(t *testing.T) {
	router := newEventsRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/v1/events?limit=-3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateEvent(t *testing.T) {
	store := db.NewMemoryEventStore()
	router := newEventsRouter(store)

	body := `{"kind": "index_alert", "severity": "MEDIO", "sector": "Sector Este"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data types.DetectedEvent `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, strings.HasPrefix(resp.Data.ID, "evt_"))
	assert.Equal(t, types.EventIndexAlert, resp.Data.Kind)
	assert.Equal(t, types.EventStatusMonitoring, resp.Data.Status, "status defaults to monitoring")
	assert.Equal(t, time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC), resp.Data.OccurredAt,
		"occurred_at defaults to the request time")

	stored, err := store.List(req.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestHandleCreateEvent_RejectsUnknownKind(t *testing.T) {
	router := newEventsRouter(db.NewMemoryEventStore())

	body := `{"kind": "alien_sighting", "severity": "MEDIO", "sector": "Sector Este"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateEvent_RequiresSector(t *testing.T) {
	router := newEventsRouter(db.NewMemoryEventStore())

	body := `{"kind": "hotspot", "severity": "ALTO"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sector")
}

func TestHandleExportEvents(t *testing.T) {
	router := newEventsRouter(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/v1/events/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	defer gz.Close()

	records, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")

	assert.Equal(t, []string{"id", "occurred_at", "kind", "severity", "sector", "status"}, records[0])
	assert.Equal(t, "evt_2", records[1][0])
	assert.Equal(t, "CRÍTICO", records[1][3])
}
