// Package orchestrator coordinates the fetch, aggregate and notify stages
// for one interactive session. It owns the request state machine: weather
// data is fetched on demand, a report is built only from complete data,
// and a notification goes out at most once per explicit confirmation.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-notify/internal/adapter/cwb"
	"github.com/couchcryptid/weather-notify/internal/domain"
	"github.com/couchcryptid/weather-notify/internal/observability"
)

// State identifies where one flow is in its fetch/aggregate/notify cycle.
// The forecast flow and the current-conditions flow each run their own
// machine; neither reads nor writes the other's state.
type State string

const (
	StateIdle            State = "idle"
	StateFetching        State = "fetching"
	StateDisplayed       State = "displayed"
	StateAggregated      State = "aggregated"
	StateAwaitingConsent State = "awaiting_consent"
	StateDispatching     State = "dispatching"
	StateSent            State = "sent"
	StateFailed          State = "failed"
)

var (
	// ErrUnknownLocation marks a forecast request for a region outside the
	// supported list. No upstream call is made.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrNoPendingDispatch marks a send confirmation arriving when no
	// report awaits consent, including a second confirmation after the
	// first one was consumed.
	ErrNoPendingDispatch = errors.New("no notification pending")
)

// ForecastClient fetches the short-range forecast for a region.
type ForecastClient interface {
	Fetch(ctx context.Context, location string) (domain.Forecast, error)
}

// ConditionsClient fetches current conditions for a city.
type ConditionsClient interface {
	Fetch(ctx context.Context, city string) (domain.Conditions, error)
}

// Dispatcher delivers one notification over a single transport.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome
}

// progressStep is the cosmetic progress cadence while a send awaits
// confirmation: start at 5 percent, advance 5 points per step interval.
const (
	progressStart     = 5
	progressIncrement = 5
	progressInterval  = 200 * time.Millisecond
)

// Session is a single user's pass through the pipeline. The forecast flow
// and the current-conditions flow keep separate state machines and may run
// in either order without disturbing each other; a pending notification
// survives any number of forecast lookups. All methods are safe for
// concurrent use; the dispatch network call runs outside the lock.
type Session struct {
	forecasts  ForecastClient
	conditions ConditionsClient
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock

	mu            sync.Mutex
	forecastState State
	currentState  State
	report        *domain.Report
	optIn         bool
	awaitingSince time.Time
}

// NewSession wires a session over the given clients and dispatcher.
func NewSession(
	forecasts ForecastClient,
	conditions ConditionsClient,
	dispatcher Dispatcher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) *Session {
	return &Session{
		forecasts:     forecasts,
		conditions:    conditions,
		dispatcher:    dispatcher,
		logger:        logger,
		metrics:       metrics,
		clock:         clock,
		forecastState: StateIdle,
		currentState:  StateIdle,
	}
}

// ForecastState returns the forecast flow's state.
func (s *Session) ForecastState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forecastState
}

// CurrentState returns the current-conditions flow's state.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentState
}

// Report returns a copy of the aggregated report, or nil when none exists.
func (s *Session) Report() *domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return nil
	}
	r := *s.report
	return &r
}

// FetchForecast retrieves the short-range forecast for a supported region.
// Unknown regions are rejected locally; no upstream request is made.
func (s *Session) FetchForecast(ctx context.Context, location string) (domain.Forecast, error) {
	if !cwb.IsKnownLocation(location) {
		return domain.Forecast{}, ErrUnknownLocation
	}

	s.setForecastState(StateFetching)
	start := s.clock.Now()
	forecast, err := s.forecasts.Fetch(ctx, location)
	s.metrics.FetchDuration.WithLabelValues("forecast").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues("forecast", "error").Inc()
		s.setForecastState(StateFailed)
		s.logger.Error("forecast fetch failed", "location", location, "error", err)
		return domain.Forecast{}, err
	}

	s.metrics.FetchRequests.WithLabelValues("forecast", "success").Inc()
	s.setForecastState(StateDisplayed)
	return forecast, nil
}

// FetchCurrent retrieves current conditions for a city and aggregates them
// into a report. A provider "no data" answer (zero-value conditions) yields
// a nil report and nil error; aggregation is never attempted on it.
func (s *Session) FetchCurrent(ctx context.Context, city string) (*domain.Report, error) {
	s.setCurrentState(StateFetching)
	start := s.clock.Now()
	conditions, err := s.conditions.Fetch(ctx, city)
	s.metrics.FetchDuration.WithLabelValues("current").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues("current", "error").Inc()
		s.setCurrentState(StateFailed)
		s.logger.Error("current conditions fetch failed", "city", city, "error", err)
		return nil, err
	}

	if !conditions.Present() {
		s.metrics.FetchRequests.WithLabelValues("current", "empty").Inc()
		s.logger.Info("no current conditions available", "city", city)
		s.setCurrentState(StateIdle)
		return nil, nil
	}
	s.metrics.FetchRequests.WithLabelValues("current", "success").Inc()

	report, err := domain.BuildReport(city, conditions)
	if err != nil {
		s.setCurrentState(StateFailed)
		return nil, err
	}

	s.metrics.ReportsBuilt.Inc()
	if report.Hazardous {
		s.metrics.HazardousReports.Inc()
		s.logger.Warn("hazardous conditions reported", "city", city, "status", report.Status)
	}

	s.mu.Lock()
	s.currentState = StateAggregated
	s.report = &report
	s.optIn = false
	s.metrics.NotificationPending.Set(0)
	s.mu.Unlock()

	return &report, nil
}

// SetNotifyOptIn toggles the pending-notification flag. Enabling requires an
// aggregated report; disabling rolls the session back to aggregated.
func (s *Session) SetNotifyOptIn(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		if s.currentState != StateAggregated || s.report == nil {
			return ErrNoPendingDispatch
		}
		s.currentState = StateAwaitingConsent
		s.optIn = true
		s.awaitingSince = s.clock.Now()
		s.metrics.NotificationPending.Set(1)
		return nil
	}

	if s.currentState == StateAwaitingConsent {
		s.currentState = StateAggregated
	}
	s.optIn = false
	s.metrics.NotificationPending.Set(0)
	return nil
}

// Progress reports the cosmetic completion percentage shown while a send
// awaits confirmation. It is derived from elapsed wall time only and has no
// relationship to dispatch work; reading it never triggers a send.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentState != StateAwaitingConsent {
		return 0
	}
	steps := int(s.clock.Since(s.awaitingSince) / progressInterval)
	percent := progressStart + steps*progressIncrement
	if percent > 100 {
		percent = 100
	}
	return percent
}

// ConfirmSend consumes the pending notification and dispatches the report
// to the given address. The recipient is validated before any state change;
// a consumed confirmation cannot be replayed.
func (s *Session) ConfirmSend(ctx context.Context, email string) (domain.DispatchOutcome, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.DispatchOutcome{}, domain.ErrInvalidRecipient
	}

	s.mu.Lock()
	if s.currentState != StateAwaitingConsent || !s.optIn || s.report == nil {
		s.mu.Unlock()
		return domain.DispatchOutcome{}, ErrNoPendingDispatch
	}
	report := *s.report
	s.currentState = StateDispatching
	s.optIn = false
	s.metrics.NotificationPending.Set(0)
	s.mu.Unlock()

	outcome := s.dispatcher.Dispatch(ctx, domain.Notification{
		RecipientEmail: email,
		Report:         report,
	})

	s.mu.Lock()
	if outcome.Delivered {
		s.currentState = StateSent
		s.metrics.DispatchAttempts.WithLabelValues(s.dispatcher.Name(), "delivered").Inc()
		s.logger.Info("notification delivered", "transport", s.dispatcher.Name(), "city", report.City)
	} else {
		s.currentState = StateFailed
		s.metrics.DispatchAttempts.WithLabelValues(s.dispatcher.Name(), "failed").Inc()
		s.logger.Warn("notification not delivered",
			"transport", s.dispatcher.Name(), "city", report.City, "detail", outcome.ErrorDetail)
	}
	s.mu.Unlock()

	return outcome, nil
}

// CheckReadiness reports whether the session can serve traffic. The session
// holds no connections of its own, so it is ready as soon as it exists.
func (s *Session) CheckReadiness(ctx context.Context) error {
	return nil
}

func (s *Session) setForecastState(st State) {
	s.mu.Lock()
	s.forecastState = st
	s.mu.Unlock()
}

func (s *Session) setCurrentState(st State) {
	s.mu.Lock()
	s.currentState = st
	s.mu.Unlock()
}
