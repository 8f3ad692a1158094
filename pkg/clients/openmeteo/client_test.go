package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeather_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "23.0225", r.URL.Query().Get("latitude"))
		assert.Equal(t, "72.5714", r.URL.Query().Get("longitude"))
		assert.Contains(t, r.URL.Query().Get("current"), "temperature_2m")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"time":"2026-05-01T12:00","temperature_2m":38.4,"relative_humidity_2m":22,"weather_code":1}}`))
	}))
	defer server.Close()

	current, err := NewClient(server.URL+"/").CurrentWeather(context.Background(), 23.0225, 72.5714)
	require.NoError(t, err)
	assert.Equal(t, 38.4, current.Temperature)
	assert.Equal(t, 22.0, current.RelativeHumidity)
	assert.Equal(t, 1, current.WeatherCode)
}

func TestCurrentWeather_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CurrentWeather(context.Background(), 123, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Latitude must be in range")
}

func TestCurrentWeather_MissingCurrentBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CurrentWeather(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestCondition(t *testing.T) {
	tests := map[int]string{
		0:  "Sunny",
		2:  "Partly Cloudy",
		3:  "Cloudy",
		48: "Foggy",
		61: "Rainy",
		81: "Rainy",
		73: "Snowy",
		95: "Stormy",
		10: "Unknown",
	}
	for code, want := range tests {
		assert.Equal(t, want, Condition(code), "code %d", code)
	}
}
