package domain

import "time"

// Forecast is the short-range forecast for one administrative region.
// The five element fields are nil when the upstream response omitted the
// corresponding element; callers must treat partial forecasts as valid.
// Temperature strings carry a "°C" suffix and precipitation chance a "%"
// suffix, matching the presentation the upstream parameter values feed.
type Forecast struct {
	LocationName string  `json:"location_name"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Description  *string `json:"description"`
	MinTemp      *string `json:"min_temperature"`
	MaxTemp      *string `json:"max_temperature"`
	PrecipChance *string `json:"precip_chance"`
	ApparentTemp *string `json:"apparent_temperature"`
}

// Conditions holds raw current-weather readings for a city, in upstream
// units (Kelvin, epoch seconds). Temperature pointers are nil when the
// provider returned no data; the remaining numeric fields default to zero.
type Conditions struct {
	TempK         *float64
	MaxTempK      *float64
	MinTempK      *float64
	Status        string
	Humidity      int
	Pressure      float64
	WindSpeedMS   float64
	WindDeg       int
	SunriseEpoch  int64
	SunsetEpoch   int64
	RainLast24hMM float64
}

// Present reports whether the conditions carry enough data to aggregate.
// The documented "non-200 ⇒ all-absent" provider convention produces a
// zero-value Conditions, which callers must check before building a Report.
func (c Conditions) Present() bool {
	return c.TempK != nil && c.Status != ""
}

// Report is the canonical normalized weather record consumed by the
// dispatcher and the presentation layer. Temperatures are Celsius rounded
// to one decimal; sunrise/sunset are "YYYY-MM-DD HH:MM:SS" UTC strings.
// Reports are built only by [BuildReport] and never mutated afterwards.
type Report struct {
	City        string    `json:"city"`
	TempC       float64   `json:"temperature_celsius"`
	MaxTempC    float64   `json:"max_temp_celsius"`
	MinTempC    float64   `json:"min_temp_celsius"`
	Status      string    `json:"weather_status"`
	Humidity    int       `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	WindSpeedMS float64   `json:"wind_speed"`
	WindDeg     int       `json:"wind_direction"`
	Sunrise     string    `json:"sunrise_time"`
	Sunset      string    `json:"sunset_time"`
	Hazardous   bool      `json:"hazardous"`
	BuiltAt     time.Time `json:"built_at"`
}

// Notification pairs a report with the address it should be delivered to.
// It exists only for the duration of one dispatch call.
type Notification struct {
	RecipientEmail string
	Report         Report
}

// DispatchOutcome reports the result of a single delivery attempt.
// Dispatchers convert every transport failure into an outcome; none of
// them let an error escape to the caller.
type DispatchOutcome struct {
	Delivered   bool   `json:"delivered"`
	ErrorDetail string `json:"error_detail,omitempty"`
}
