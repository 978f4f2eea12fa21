package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"firebay/internal/risk"
	"firebay/internal/types"
)

// --- Shared test fixtures ---

type mockConditions struct {
	reading types.SensorReading
	err     error
}

func (m *mockConditions) Current(_ context.Context) (types.SensorReading, error) {
	return m.reading, m.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testRegion() types.Region {
	return types.Region{
		Name: "Aysén",
		Zone: "Bahía Exploradores",
		Lat:  -46.31050588037077,
		Lon:  -73.42610705801674,
	}
}

func testProfiles() map[string]risk.Profile {
	return map[string]risk.Profile{
		risk.DefaultProfileName: risk.DefaultProfile(),
		"conservative": {
			Name:    "conservative",
			Metrics: risk.DefaultMetricSet,
			Thresholds: types.ThresholdConfig{
				TemperatureC: 30,
				HumidityPct:  35,
				NDVI:         0.40,
				NDMI:         0.20,
				NBR:          0.05,
			},
		},
	}
}

func calmReading() types.SensorReading {
	return types.SensorReading{
		TemperatureC: 15,
		HumidityPct:  80,
		NDVI:         0.8,
		NDMI:         0.6,
		NBR:          -0.3,
		Source:       "simulated",
	}
}

func makeV1Router(register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", register)
	return r
}
