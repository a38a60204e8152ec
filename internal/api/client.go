// Package api is pulse's HTTP client for the metrics and prediction backend.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
)

// Endpoint paths relative to the base URL.
const (
	ChartDataPath  = "/api/chart-data/"
	MetricsPath    = "/api/realtime-metrics"
	PredictionPath = "/api/ml-prediction"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport sets the round tripper, e.g. an SSH tunnel transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger.Noop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchChart fetches chart data for source. period is optional and only
// sent when non-empty.
func (c *Client) FetchChart(ctx context.Context, source, period string) (ChartData, error) {
	u := c.baseURL + ChartDataPath + url.PathEscape(source)
	if period != "" {
		u += "?" + url.Values{"period": {period}}.Encode()
	}

	var data ChartData
	if err := c.do(ctx, http.MethodGet, u, nil, &data); err != nil {
		return ChartData{}, err
	}
	return data, nil
}

// FetchMetrics fetches the current system metrics.
func (c *Client) FetchMetrics(ctx context.Context) (MetricsSnapshot, error) {
	var snap MetricsSnapshot
	if err := c.do(ctx, http.MethodGet, c.baseURL+MetricsPath, nil, &snap); err != nil {
		return MetricsSnapshot{}, err
	}
	snap.FetchedAt = c.now()
	return snap, nil
}

// Predict validates req and posts it to the prediction endpoint.
func (c *Client) Predict(ctx context.Context, req PredictionRequest) (PredictionResult, error) {
	if err := req.Validate(); err != nil {
		return PredictionResult{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return PredictionResult{}, errors.WrapWithCode(err, errors.ErrValidation,
			"Couldn't encode the prediction request", "")
	}

	var res PredictionResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+PredictionPath, body, &res); err != nil {
		return PredictionResult{}, err
	}
	return res, nil
}

// do sends one request and decodes a JSON response into out.
// Transport failures and non-2xx statuses are FETCH errors; undecodable
// bodies are PARSE errors.
func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Couldn't build request for %s", u),
			"Check api.base_url in your .pulse.yaml")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Couldn't reach %s", u),
			"Is the backend running? Check api.base_url")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Connection dropped while reading %s", u), "")
	}
	c.log.Debug("%s %s -> %d (%s, %d bytes)", method, u, resp.StatusCode, time.Since(start).Round(time.Millisecond), len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(errors.ErrFetch,
			fmt.Sprintf("%s %s returned %d", method, u, resp.StatusCode),
			statusSuggestion(resp.StatusCode, data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Couldn't parse the response from %s", u),
			"The backend sent something that isn't the expected JSON")
	}
	return nil
}

func statusSuggestion(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return "Backend said: " + payload.Error
	}
	switch {
	case status == http.StatusNotFound:
		return "That endpoint doesn't exist. Check the widget's source in .pulse.yaml"
	case status >= 500:
		return "The backend hit an error. Check its logs"
	default:
		return ""
	}
}
