package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebay/internal/satellite"
	"firebay/internal/types"
)

func newSatelliteRouter(t *testing.T, days map[string][]string) http.Handler {
	t.Helper()
	root := t.TempDir()
	for day, files := range days {
		dir := filepath.Join(root, day)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644))
		}
	}

	h := NewSatelliteHandler(satellite.NewDirCatalog(root), nil)
	return makeV1Router(h.RegisterRoutes)
}

func TestHandleScenes_SingleDay(t *testing.T) {
	router := newSatelliteRouter(t, map[string][]string{
		"2026-08-10": {"rgb.png", "thermal.png"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/satellite/scenes?date=2026-08-10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data satellite.ScenePaths `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2026-08-10", resp.Data.Date)
	assert.True(t, resp.Data.RGBAvailable)
	assert.True(t, resp.Data.ThermalAvailable)
}

func TestHandleScenes_MissingDayIs404(t *testing.T) {
	router := newSatelliteRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/satellite/scenes?date=2026-08-10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(types.ErrCodeNotFoundScene))
}

func TestHandleScenes_Range(t *testing.T) {
	router := newSatelliteRouter(t, map[string][]string{
		"2026-08-10": {"rgb.png"},
		"2026-08-12": {"thermal.png"},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/v1/satellite/scenes?start=2026-08-10&end=2026-08-12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []satellite.ScenePaths `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 3)
	assert.True(t, resp.Data[0].RGBAvailable)
	assert.False(t, resp.Data[1].RGBAvailable)
	assert.True(t, resp.Data[2].ThermalAvailable)
}

func TestHandleScenes_MissingParams(t *testing.T) {
	router := newSatelliteRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/satellite/scenes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScenes_BadDate(t *testing.T) {
	router := newSatelliteRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/satellite/scenes?date=augustus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(types.ErrCodeValidationInvalidDate))
}
