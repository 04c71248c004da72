// Package barnapi is the resty-backed client of the BarnMonitor REST API.
//
// Every call takes a context.Context that cancels the in-flight request. Failures are
// reported as *apperrors.HTTPError (non-2xx answer) or *apperrors.TransportError
// (DNS, timeout, reset, cancellation). Nothing is retried.
package barnapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/config"
)

// ErrIncompleteResponse is returned when a 2xx answer lacks fields the caller depends on.
var ErrIncompleteResponse = errors.New("incomplete api response")

// TokenSource yields the bearer token of the current session, or "" when logged out.
type TokenSource func() string

// Client holds the shared resty client: base URL, timeout, cookie jar and token hook.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds an API client from configuration. tokens may be nil.
func NewClient(cfg config.APIConfig, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	if tokens != nil {
		restyClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if token := tokens(); token != "" {
				req.SetAuthToken(token)
			}
			return nil
		})
	}

	return &Client{httpClient: restyClient, logger: logger}
}

// do executes one request and maps failures onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	op := method + " " + path
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("api request failed", zap.String("op", op), zap.Error(err))
		return nil, &apperrors.TransportError{Op: op, Err: err}
	}

	c.logger.Debug("api request completed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()))

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return resp, &apperrors.HTTPError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return resp, nil
}

// decode unmarshals body into out, optionally unwrapping a top-level envelope key.
func decode(body []byte, envelope string, out any) error {
	if envelope != "" {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return err
		}
		inner, ok := wrapper[envelope]
		if !ok {
			// Some endpoints answer with the bare entity; fall through to it.
			return json.Unmarshal(body, out)
		}
		body = inner
	}
	return json.Unmarshal(body, out)
}

func entityPath(path string, id int) string {
	return fmt.Sprintf("%s/%d", path, id)
}
