package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/config"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

var errNoCurrentWeather = errors.New("forecast response has no current_weather block")

// Client exposes the forecast lookups used by the dashboard.
type Client interface {
	CurrentWeather(ctx context.Context) (*models.CurrentWeather, error)
}

// APIClient is a resty-backed implementation of Client bound to the farm coordinates.
type APIClient struct {
	httpClient *resty.Client
	latitude   float64
	longitude  float64
}

// NewClient builds a forecast client using the provided configuration values.
func NewClient(cfg config.WeatherConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		latitude:   cfg.Latitude,
		longitude:  cfg.Longitude,
	}
}

type forecastResponse struct {
	CurrentWeather *models.CurrentWeather `json:"current_weather"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// CurrentWeather fetches the current conditions at the configured coordinates.
func (c *APIClient) CurrentWeather(ctx context.Context) (*models.CurrentWeather, error) {
	result := new(forecastResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":        strconv.FormatFloat(c.latitude, 'f', -1, 64),
			"longitude":       strconv.FormatFloat(c.longitude, 'f', -1, 64),
			"current_weather": "true",
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/v1/forecast")
	if err != nil {
		return nil, &apperrors.TransportError{Op: "GET /v1/forecast", Err: err}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &apperrors.HTTPError{Status: resp.StatusCode(), Body: apiErr.Reason}
	}

	if result.CurrentWeather == nil {
		return nil, errNoCurrentWeather
	}

	return result.CurrentWeather, nil
}
