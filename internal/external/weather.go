package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"firebay/internal/types"
)

// ConditionsProvider supplies the latest sensor reading for the monitored
// zone.
type ConditionsProvider interface {
	Current(ctx context.Context) (types.SensorReading, error)
}

// Simulated baseline for the zone. The weather upstream only reports
// temperature and humidity; the vegetation and burn indices have no live
// feed yet, so every provider fills them from this baseline.
const (
	baselineTemperatureC = 32.0
	baselineHumidityPct  = 28.0
	baselineNDVI         = 0.45
	baselineNDMI         = 0.38
	baselineNBR          = 0.15
)

// maxWeatherResponseSize bounds the upstream response body (64 KB).
const maxWeatherResponseSize = 64 << 10

// WeatherClient reads live temperature and humidity from an Open-Meteo style
// forecast endpoint.
type WeatherClient struct {
	client  *Client
	baseURL string
	lat     float64
	lon     float64
	clock   types.Clock
}

// NewWeatherClient builds a live conditions provider against baseURL.
func NewWeatherClient(client *Client, baseURL string, lat, lon float64, clock types.Clock) *WeatherClient {
	return &WeatherClient{
		client:  client,
		baseURL: baseURL,
		lat:     lat,
		lon:     lon,
		clock:   clock,
	}
}

// forecastResponse is the subset of the upstream payload we consume.
type forecastResponse struct {
	Current struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

// Current implements ConditionsProvider. Temperature and humidity come from
// the upstream; indices come from the simulated baseline.
func (c *WeatherClient) Current(ctx context.Context) (types.SensorReading, error) {
	endpoint := fmt.Sprintf(
		"%s/v1/forecast?latitude=%s&longitude=%s&current=temperature_2m,relative_humidity_2m",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%v", c.lat)),
		url.QueryEscape(fmt.Sprintf("%v", c.lon)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.SensorReading{}, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to build weather request",
			err,
		)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return types.SensorReading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SensorReading{}, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather upstream returned %d", resp.StatusCode),
			nil,
		)
	}

	var payload forecastResponse
	body := io.LimitReader(resp.Body, maxWeatherResponseSize)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return types.SensorReading{}, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"failed to decode weather upstream response",
			err,
		)
	}

	return types.SensorReading{
		TemperatureC: payload.Current.Temperature2m,
		HumidityPct:  payload.Current.RelativeHumidity2m,
		NDVI:         baselineNDVI,
		NDMI:         baselineNDMI,
		NBR:          baselineNBR,
		ObservedAt:   c.clock.Now(),
		Source:       "weather_api",
	}, nil
}

// CheckUpstream is a health probe against the weather endpoint. It reuses
// Current so the probe exercises the full request path.
func (c *WeatherClient) CheckUpstream(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := c.Current(ctx)
	return err
}

// SimulatedProvider returns the fixed baseline reading. Used when no weather
// upstream is configured and as the fallback when the upstream is down.
type SimulatedProvider struct {
	clock types.Clock
}

// NewSimulatedProvider builds a provider over the given clock.
func NewSimulatedProvider(clock types.Clock) *SimulatedProvider {
	return &SimulatedProvider{clock: clock}
}

// Current implements ConditionsProvider.
func (p *SimulatedProvider) Current(ctx context.Context) (types.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return types.SensorReading{}, err
	}
	return types.SensorReading{
		TemperatureC: baselineTemperatureC,
		HumidityPct:  baselineHumidityPct,
		NDVI:         baselineNDVI,
		NDMI:         baselineNDMI,
		NBR:          baselineNBR,
		ObservedAt:   p.clock.Now(),
		Source:       "simulated",
	}, nil
}

// FallbackProvider tries a primary provider and falls back to a secondary
// one when the primary fails. The dashboard must keep rendering even when
// the weather upstream is down.
type FallbackProvider struct {
	primary  ConditionsProvider
	fallback ConditionsProvider
}

// NewFallbackProvider chains primary and fallback.
func NewFallbackProvider(primary, fallback ConditionsProvider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

// Current implements ConditionsProvider. A context cancellation is not
// masked by the fallback.
func (p *FallbackProvider) Current(ctx context.Context) (types.SensorReading, error) {
	reading, err := p.primary.Current(ctx)
	if err == nil {
		return reading, nil
	}
	if ctx.Err() != nil {
		return types.SensorReading{}, err
	}
	return p.fallback.Current(ctx)
}
