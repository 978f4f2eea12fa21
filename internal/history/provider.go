// Package history provides the historical time-series data used by the
// dashboard's trends tab. Access goes through the Provider interface so
// consumers never depend on how the data was sourced; the current
// implementation synthesizes a deterministic series.
package history

import (
	"context"
	"time"

	"firebay/internal/types"
)

// MaxRangeDays caps the length of a requested series.
const MaxRangeDays = 366

// Point is one daily sample of the monitored indicators.
type Point struct {
	Date         time.Time `json:"date"`
	NDVI         float64   `json:"ndvi"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	RiskScore    float64   `json:"risk_score"`
}

// Provider returns a daily time series for a date range, both ends
// inclusive.
type Provider interface {
	Series(ctx context.Context, start, end time.Time) ([]Point, error)
}

// SimulatedProvider generates the deterministic series the dashboard has
// always displayed: a slowly degrading NDVI with alternating jitter, cyclic
// temperature and humidity, and a linearly growing risk trend.
type SimulatedProvider struct{}

// NewSimulatedProvider returns the simulated series source.
func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{}
}

// Series implements Provider. The formulas are fixed:
//
//	ndvi(i)  = 0.7 - 0.01*i + (-1)^i * 0.05
//	temp(i)  = 25 + i mod 10
//	hum(i)   = 50 - i mod 15
//	risk(i)  = 30 + 1.5*i
//
// where i is the zero-based day offset from start.
func (p *SimulatedProvider) Series(ctx context.Context, start, end time.Time) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = truncateToDay(start)
	end = truncateToDay(end)

	if end.Before(start) {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidRange,
			"end date must not be before start date",
			nil,
		)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidRange,
			"requested range is too long",
			nil,
			map[string]any{"max_days": MaxRangeDays, "requested_days": days},
		)
	}

	series := make([]Point, 0, days)
	for i := 0; i < days; i++ {
		jitter := 0.05
		if i%2 == 1 {
			jitter = -0.05
		}
		series = append(series, Point{
			Date:         start.AddDate(0, 0, i),
			NDVI:         0.7 - 0.01*float64(i) + jitter,
			TemperatureC: 25 + float64(i%10),
			HumidityPct:  50 - float64(i%15),
			RiskScore:    30 + 1.5*float64(i),
		})
	}

	return series, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
