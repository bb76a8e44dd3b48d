// Package webhook posts weather notifications to a downstream notification
// service. It is an alternative transport behind the same dispatcher
// contract as the SMTP relay; the service runs exactly one of the two.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-notify/internal/domain"
)

// ErrDelivery marks a notification the downstream service did not accept.
// It stays inside the package: Dispatch folds it into the outcome.
var ErrDelivery = errors.New("delivery failed")

// payload is the downstream service's notification contract.
type payload struct {
	Email              string  `json:"email"`
	City               string  `json:"city"`
	WeatherStatus      string  `json:"weather_status"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	MaxTempCelsius     float64 `json:"max_temp_celsius"`
	MinTempCelsius     float64 `json:"min_temp_celsius"`
	Humidity           int     `json:"humidity"`
	Pressure           float64 `json:"pressure"`
	WindSpeed          float64 `json:"wind_speed"`
	WindDirection      int     `json:"wind_direction"`
	SunriseTime        string  `json:"sunrise_time"`
	SunsetTime         string  `json:"sunset_time"`
}

// Client posts JSON-encoded notifications to the webhook endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a webhook dispatcher with a bounded request timeout.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name identifies the transport in logs and metrics.
func (c *Client) Name() string { return "webhook" }

// Dispatch posts one notification. Like the relay, it converts every
// failure into a DispatchOutcome and never returns an error to the caller.
func (c *Client) Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome {
	if err := c.post(ctx, n); err != nil {
		c.logger.Warn("webhook dispatch failed",
			"recipient", n.RecipientEmail,
			"city", n.Report.City,
			"error", err,
		)
		return domain.DispatchOutcome{Delivered: false, ErrorDetail: err.Error()}
	}

	c.logger.Info("webhook notification accepted", "recipient", n.RecipientEmail, "city", n.Report.City)
	return domain.DispatchOutcome{Delivered: true}
}

func (c *Client) post(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(payload{
		Email:              n.RecipientEmail,
		City:               n.Report.City,
		WeatherStatus:      n.Report.Status,
		TemperatureCelsius: n.Report.TempC,
		MaxTempCelsius:     n.Report.MaxTempC,
		MinTempCelsius:     n.Report.MinTempC,
		Humidity:           n.Report.Humidity,
		Pressure:           n.Report.Pressure,
		WindSpeed:          n.Report.WindSpeedMS,
		WindDirection:      n.Report.WindDeg,
		SunriseTime:        n.Report.Sunrise,
		SunsetTime:         n.Report.Sunset,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post notification: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, respBody)
	}
	return nil
}
