package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-notify/internal/adapter/httpapi"
	"github.com/couchcryptid/weather-notify/internal/domain"
	"github.com/couchcryptid/weather-notify/internal/observability"
	"github.com/couchcryptid/weather-notify/internal/orchestrator"
)

type stubForecasts struct {
	forecast domain.Forecast
	err      error
}

func (s *stubForecasts) Fetch(_ context.Context, _ string) (domain.Forecast, error) {
	return s.forecast, s.err
}

type stubConditions struct {
	conditions domain.Conditions
	err        error
}

func (s *stubConditions) Fetch(_ context.Context, _ string) (domain.Conditions, error) {
	return s.conditions, s.err
}

type stubDispatcher struct {
	outcome domain.DispatchOutcome
	calls   int
}

func (s *stubDispatcher) Name() string { return "stub" }

func (s *stubDispatcher) Dispatch(_ context.Context, _ domain.Notification) domain.DispatchOutcome {
	s.calls++
	return s.outcome
}

func ptr(f float64) *float64 { return &f }

func presentConditions() domain.Conditions {
	return domain.Conditions{
		TempK:        ptr(300.15),
		Status:       "clear sky",
		Humidity:     40,
		Pressure:     1013,
		SunriseEpoch: 1696107600,
		SunsetEpoch:  1696150800,
	}
}

func newTestServer(f orchestrator.ForecastClient, c orchestrator.ConditionsClient, d orchestrator.Dispatcher) *httpapi.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := orchestrator.NewSession(f, c, d, logger, observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	return httpapi.NewServer(":0", session, logger)
}

func doRequest(srv *httpapi.Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestForecastReturnsPayload(t *testing.T) {
	desc := "陰時多雲"
	srv := newTestServer(&stubForecasts{forecast: domain.Forecast{
		LocationName: "臺北市",
		Description:  &desc,
	}}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/forecast?location="+escape("臺北市"), "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "臺北市", body["location_name"])
	assert.Equal(t, "陰時多雲", body["description"])
	assert.Nil(t, body["apparent_temperature"])
}

func TestForecastRequiresLocation(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/forecast", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastRejectsUnknownLocation(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/forecast?location=Gotham", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown location")
}

func TestForecastMapsUpstreamFailureTo502(t *testing.T) {
	srv := newTestServer(&stubForecasts{err: domain.ErrUpstream}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/forecast?location="+escape("臺北市"), "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot reach service, try again")
}

func TestCurrentReturnsReport(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{conditions: presentConditions()}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/current?city=Tokyo", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Tokyo", body["city"])
	assert.Equal(t, 27.0, body["temperature_celsius"])
	assert.Equal(t, false, body["hazardous"])
}

func TestCurrentReturns404WhenNoData(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/current?city=Nowhereville", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no data available")
}

func TestCurrentMapsTransportFailureTo502(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{err: domain.ErrTransport}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/current?city=Tokyo", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNotifyFlow(t *testing.T) {
	dispatcher := &stubDispatcher{outcome: domain.DispatchOutcome{Delivered: true}}
	srv := newTestServer(&stubForecasts{}, &stubConditions{conditions: presentConditions()}, dispatcher)

	// Opt-in without a report is a conflict.
	rec := doRequest(srv, http.MethodPost, "/api/notify/optin", `{"enabled":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/current?city=Tokyo", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/notify/optin", `{"enabled":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/notify/progress", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var progress map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 5, progress["percent"])

	rec = doRequest(srv, http.MethodPost, "/api/notify/send", `{"email":"user@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var outcome domain.DispatchOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.True(t, outcome.Delivered)
	assert.Equal(t, 1, dispatcher.calls)

	// The confirmation was consumed; a replay is a conflict.
	rec = doRequest(srv, http.MethodPost, "/api/notify/send", `{"email":"user@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	dispatcher := &stubDispatcher{outcome: domain.DispatchOutcome{Delivered: true}}
	srv := newTestServer(&stubForecasts{}, &stubConditions{conditions: presentConditions()}, dispatcher)

	rec := doRequest(srv, http.MethodGet, "/api/current?city=Tokyo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(srv, http.MethodPost, "/api/notify/optin", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/notify/send", `{"email":"not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, dispatcher.calls)
}

func TestSendRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodPost, "/api/notify/send", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressOutsideAwaitingIsZero(t *testing.T) {
	srv := newTestServer(&stubForecasts{}, &stubConditions{}, &stubDispatcher{})

	rec := doRequest(srv, http.MethodGet, "/api/notify/progress", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var progress map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 0, progress["percent"])
}

func escape(s string) string {
	return url.QueryEscape(s)
}
