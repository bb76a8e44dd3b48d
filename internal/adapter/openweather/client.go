// Package openweather fetches current conditions from the OpenWeatherMap
// current-weather endpoint.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-notify/internal/domain"
)

// Client calls the OpenWeatherMap current-weather endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a current-conditions client with a bounded request timeout.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		logger:  logger,
	}
}

// Fetch retrieves current conditions for a city. The city name is passed
// through unvalidated; the upstream is authoritative on recognition.
//
// Any non-200 status is a normal "no data" outcome: it yields a zero-value
// Conditions with a nil error, which callers must check via
// Conditions.Present before use. Only network-level failures wrap
// domain.ErrTransport.
func (c *Client) Fetch(ctx context.Context, city string) (domain.Conditions, error) {
	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Conditions{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Conditions{}, fmt.Errorf("%w: current-weather request: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		c.logger.Warn("current conditions unavailable", "city", city, "status", resp.StatusCode)
		return domain.Conditions{}, nil
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Conditions{}, fmt.Errorf("%w: decode current weather: %v", domain.ErrDataShape, err)
	}

	conditions := domain.Conditions{
		TempK:        payload.Main.Temp,
		MaxTempK:     payload.Main.TempMax,
		MinTempK:     payload.Main.TempMin,
		Humidity:     payload.Main.Humidity,
		Pressure:     payload.Main.Pressure,
		WindSpeedMS:  payload.Wind.Speed,
		WindDeg:      payload.Wind.Deg,
		SunriseEpoch: payload.Sys.Sunrise,
		SunsetEpoch:  payload.Sys.Sunset,
	}

	// First entry of the status list carries the description.
	if len(payload.Weather) > 0 {
		conditions.Status = payload.Weather[0].Description
	}

	// The rain block and its 24-hour key are both optional; either one
	// missing means zero accumulation, not absence.
	if v, ok := payload.Rain["24h"]; ok {
		conditions.RainLast24hMM = v
	}

	return conditions, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		TempMax  *float64 `json:"temp_max"`
		TempMin  *float64 `json:"temp_min"`
		Humidity int      `json:"humidity"`
		Pressure float64  `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Rain map[string]float64 `json:"rain"`
}
