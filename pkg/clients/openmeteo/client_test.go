package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/config"
)

func TestCurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "-1.286389", r.URL.Query().Get("latitude"))
		assert.Equal(t, "36.817223", r.URL.Query().Get("longitude"))
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":-1.25,"current_weather":{"temperature":21.4,"windspeed":9.7,"weathercode":61,"time":"2024-05-01T12:00"}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WeatherConfig{BaseURL: srv.URL, Latitude: -1.286389, Longitude: 36.817223})
	weather, err := client.CurrentWeather(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 21.4, weather.Temperature, 1e-9)
	assert.Equal(t, 61, weather.WeatherCode)
	assert.Equal(t, "Rain Showers", weather.Condition())
}

func TestCurrentWeatherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	_, err := NewClient(config.WeatherConfig{BaseURL: srv.URL}).CurrentWeather(context.Background())
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Contains(t, httpErr.Body, "Latitude")

	srv.Close()
	_, err = NewClient(config.WeatherConfig{BaseURL: srv.URL}).CurrentWeather(context.Background())
	var transportErr *apperrors.TransportError
	assert.ErrorAs(t, err, &transportErr)
}
