package domain

import (
	"math"
	"time"
)

// KelvinToCelsius converts an absolute temperature to Celsius, rounded to
// exactly one decimal place. The rounding rule is round-half-up (halves go
// toward positive infinity): 273.65 K → 0.5 °C, 273.15 K → 0.0 °C.
func KelvinToCelsius(k float64) float64 {
	return math.Floor((k-273.15)*10+0.5) / 10
}

// EpochToUTCString formats UTC epoch seconds as "YYYY-MM-DD HH:MM:SS".
// Upstream timestamps are UTC; no local offset is applied, which keeps the
// output reproducible regardless of the host timezone.
func EpochToUTCString(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05")
}
