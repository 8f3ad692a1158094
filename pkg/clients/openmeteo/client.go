package openmeteo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client exposes the Open-Meteo operations used by the application.
type Client interface {
	CurrentWeather(ctx context.Context, latitude, longitude float64) (*CurrentWeather, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an Open-Meteo client rooted at baseURL.
func NewClient(baseURL string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// CurrentWeather mirrors the "current" block of the forecast response.
type CurrentWeather struct {
	Time             string  `json:"time"`
	Temperature      float64 `json:"temperature_2m"`
	RelativeHumidity float64 `json:"relative_humidity_2m"`
	WeatherCode      int     `json:"weather_code"`
}

type forecastResponse struct {
	Current *CurrentWeather `json:"current"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func (c *APIClient) CurrentWeather(ctx context.Context, latitude, longitude float64) (*CurrentWeather, error) {
	result := new(forecastResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  strconv.FormatFloat(latitude, 'f', 4, 64),
			"longitude": strconv.FormatFloat(longitude, 'f', 4, 64),
			"current":   "temperature_2m,relative_humidity_2m,weather_code",
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("fetch current weather: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("open-meteo api error: status=%d, reason=%s", resp.StatusCode(), apiErr.Reason)
	}
	if result.Current == nil {
		return nil, fmt.Errorf("open-meteo response has no current block")
	}

	return result.Current, nil
}

// Condition translates a WMO weather code into a short description.
func Condition(code int) string {
	switch {
	case code == 0:
		return "Sunny"
	case code == 1 || code == 2:
		return "Partly Cloudy"
	case code == 3:
		return "Cloudy"
	case code == 45 || code == 48:
		return "Foggy"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "Rainy"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "Snowy"
	case code >= 95:
		return "Stormy"
	default:
		return "Unknown"
	}
}
