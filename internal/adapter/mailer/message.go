package mailer

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/weather-notify/internal/domain"
)

// Subject renders the notification subject line for a report.
func Subject(r domain.Report) string {
	return r.City + " weather notification"
}

// FormatBody renders the fixed plain-text notification body. The template
// embeds all eleven report fields, temperatures with one-decimal formatting.
// Line order and labels are stable; tests parse the body back field by field.
func FormatBody(r domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "City: %s\n", r.City)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Temperature: %.1f°C\n", r.TempC)
	fmt.Fprintf(&b, "Max temperature: %.1f°C\n", r.MaxTempC)
	fmt.Fprintf(&b, "Min temperature: %.1f°C\n", r.MinTempC)
	fmt.Fprintf(&b, "Humidity: %d%%\n", r.Humidity)
	fmt.Fprintf(&b, "Pressure: %.1f hPa\n", r.Pressure)
	fmt.Fprintf(&b, "Wind speed: %.1f m/s\n", r.WindSpeedMS)
	fmt.Fprintf(&b, "Wind direction: %d°\n", r.WindDeg)
	fmt.Fprintf(&b, "Sunrise: %s\n", r.Sunrise)
	fmt.Fprintf(&b, "Sunset: %s\n", r.Sunset)
	return b.String()
}
