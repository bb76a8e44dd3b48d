package domain

import "fmt"

// BuildReport normalizes raw current conditions into the canonical Report.
// It is a pure transform of its input: no I/O, deterministic apart from the
// BuiltAt stamp taken from the package clock.
//
// Returns ErrIncompleteData when the status text or the temperature is
// absent; the pipeline never produces a half-filled report. Max/min
// temperatures fall back to the current temperature when the upstream
// omits them.
func BuildReport(city string, c Conditions) (Report, error) {
	if c.TempK == nil || c.Status == "" {
		return Report{}, fmt.Errorf("build report for %q: %w", city, ErrIncompleteData)
	}

	tempC := KelvinToCelsius(*c.TempK)
	maxC := tempC
	if c.MaxTempK != nil {
		maxC = KelvinToCelsius(*c.MaxTempK)
	}
	minC := tempC
	if c.MinTempK != nil {
		minC = KelvinToCelsius(*c.MinTempK)
	}

	return Report{
		City:        city,
		TempC:       tempC,
		MaxTempC:    maxC,
		MinTempC:    minC,
		Status:      c.Status,
		Humidity:    c.Humidity,
		Pressure:    c.Pressure,
		WindSpeedMS: c.WindSpeedMS,
		WindDeg:     c.WindDeg,
		Sunrise:     EpochToUTCString(c.SunriseEpoch),
		Sunset:      EpochToUTCString(c.SunsetEpoch),
		Hazardous:   IsHazardous(c.Status),
		BuiltAt:     clock.Now(),
	}, nil
}
