// Package cwb fetches short-range forecasts from the Taiwan Central Weather
// Bureau open-data F-C0032-001 dataset.
package cwb

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

// elementNames is the fixed comma-joined element list the dataset is
// queried for. Element codes outside this set are ignored during parsing.
const elementNames = "Wx,MinT,MaxT,PoP,AT"

// Locations enumerates the administrative regions the F-C0032-001 dataset
// covers. Location validation is the caller's job; the client itself passes
// the name through unmodified.
var Locations = []string{
	"基隆市", "臺北市", "新北市", "桃園市", "新竹市", "新竹縣", "苗栗縣",
	"臺中市", "彰化縣", "雲林縣", "嘉義市", "嘉義縣", "臺南市", "高雄市",
	"屏東縣", "宜蘭縣", "花蓮縣", "臺東縣", "金門縣", "連江縣", "澎湖縣",
}

// IsKnownLocation reports whether name is one of the enumerated regions.
func IsKnownLocation(name string) bool {
	for _, l := range Locations {
		if l == name {
			return true
		}
	}
	return false
}

// Client calls the CWB gridded short-range forecast endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a forecast client with a bounded request timeout.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://opendata.cwb.gov.tw/api/v1/rest/datastore/F-C0032-001",
		logger:  logger,
	}
}

// Fetch retrieves the forecast for one administrative region. Elements
// missing from the response leave the corresponding Forecast field nil;
// a partial forecast is a valid result, not an error.
//
// Wraps domain.ErrUpstream when the transport call fails or the endpoint
// returns a non-success status, and domain.ErrDataShape when the payload's
// success flag is false or the expected nested structure is absent.
func (c *Client) Fetch(ctx context.Context, location string) (domain.Forecast, error) {
	params := url.Values{
		"Authorization": {c.apiKey},
		"locationName":  {location},
		"elementName":   {elementNames},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: forecast request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Forecast{}, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: decode forecast: %v", domain.ErrDataShape, err)
	}

	// The dataset reports success as the JSON string "true".
	if payload.Success != "true" {
		return domain.Forecast{}, fmt.Errorf("%w: success flag %q", domain.ErrDataShape, payload.Success)
	}
	if len(payload.Records.Location) == 0 {
		return domain.Forecast{}, fmt.Errorf("%w: no location records", domain.ErrDataShape)
	}

	return parseLocation(payload.Records.Location[0]), nil
}

// parseLocation extracts the first time window's parameter value for each
// recognized element code.
func parseLocation(loc locationRecord) domain.Forecast {
	forecast := domain.Forecast{LocationName: loc.LocationName}

	for _, element := range loc.WeatherElement {
		if len(element.Time) == 0 {
			continue
		}
		window := element.Time[0]
		value := window.Parameter.ParameterName

		switch element.ElementName {
		case "Wx":
			forecast.Description = &value
		case "MinT":
			v := value + "°C"
			forecast.MinTemp = &v
		case "MaxT":
			v := value + "°C"
			forecast.MaxTemp = &v
		case "PoP":
			v := value + "%"
			forecast.PrecipChance = &v
		case "AT":
			v := value + "°C"
			forecast.ApparentTemp = &v
		default:
			// Unrecognized element codes contribute nothing, not even
			// their time window.
			continue
		}

		forecast.StartTime = window.StartTime
		forecast.EndTime = window.EndTime
	}

	return forecast
}

// F-C0032-001 response types.

type response struct {
	Success string `json:"success"`
	Records struct {
		Location []locationRecord `json:"location"`
	} `json:"records"`
}

type locationRecord struct {
	LocationName   string `json:"locationName"`
	WeatherElement []struct {
		ElementName string       `json:"elementName"`
		Time        []timeWindow `json:"time"`
	} `json:"weatherElement"`
}

type timeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Parameter struct {
		ParameterName string `json:"parameterName"`
	} `json:"parameter"`
}
