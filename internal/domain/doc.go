// Package domain models the canonical weather records assembled from two
// upstream providers and the rules applied to them.
//
// # Upstream Conventions
//
// Forecast data comes from the CWB (Taiwan Central Weather Bureau)
// F-C0032-001 short-range dataset. Each response carries a list of weather
// elements, one named quantity per element, valid over a time window:
//
//	Wx   → free-text weather description
//	MinT → minimum temperature, Celsius
//	MaxT → maximum temperature, Celsius
//	PoP  → probability of precipitation, percent
//	AT   → apparent ("feels like") temperature, Celsius
//
// Any element may be absent from a response. Absent elements are a normal
// partial result, not an error, so [Forecast] carries them as nil pointers —
// distinct from an empty or zero value.
//
// Current conditions come from the OpenWeatherMap current-weather endpoint.
// Temperatures arrive in Kelvin and sunrise/sunset as UTC epoch seconds;
// nothing in [Conditions] is normalized. A [Report] is the fully normalized
// form: Celsius rounded to one decimal, timestamps formatted as UTC civil
// time. No Kelvin value or raw epoch ever crosses into a Report.
//
// # Hazard Classification
//
// A status text is hazardous when it contains any of the fixed vocabulary
// {thunderstorm, rain, snow, tornado, hurricane}, matched case-insensitively
// as substrings. Substring matching is deliberate and inherited from the
// source behavior: "Rainbow" classifies as hazardous. See [IsHazardous].
package domain
