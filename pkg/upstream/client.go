// Package upstream provides the HTTP client for the read-only catalog API,
// with rate limiting, retry and error classification.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/holonet/swapi-gateway/pkg/logging"
)

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_upstream_requests_total",
		Help: "Total upstream requests by collection and status",
	}, []string{"collection", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by collection",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"collection"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Config holds the upstream client configuration.
type Config struct {
	// BaseURL is the catalog API root, e.g. "https://swapi.dev/api".
	BaseURL string

	// UserAgent identifies the gateway to the upstream service.
	UserAgent string

	// Timeout bounds every single request, including retries' individual
	// attempts.
	Timeout time.Duration

	// RateLimit is the client-side request rate cap in requests per second.
	// Zero disables rate limiting.
	RateLimit float64

	// Burst is the rate limiter burst size.
	Burst int

	// Retry configures backoff for server and network failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "swapi-gateway/0.1.0",
		Timeout:   15 * time.Second,
		RateLimit: 10,
		Burst:     20,
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the catalog API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     zerolog.Logger
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
		retry:     cfg.Retry,
		logger:    logging.NewLogger("upstream-client"),
	}, nil
}

// GetCollection fetches a collection listing, optionally filtered by search
// text. A failure here is a primary fetch failure: there is no partial
// result, so the error surfaces to the caller.
func (c *Client) GetCollection(ctx context.Context, collection, search string) (*ListPage, error) {
	u := c.baseURL + "/" + collection
	if search != "" {
		u += "?search=" + url.QueryEscape(search)
	}

	body, err := c.get(ctx, collection, u)
	if err != nil {
		return nil, err
	}

	var page ListPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode %s listing: %w", collection, err)
	}
	return &page, nil
}

// GetRecord fetches a single record by numeric id.
func (c *Client) GetRecord(ctx context.Context, collection string, id int) (Record, error) {
	body, err := c.GetRecordRaw(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode %s/%d: %w", collection, id, err)
	}
	return record, nil
}

// GetRecordRaw fetches a single record and returns the raw JSON body.
// The resolver uses this form so the exact upstream payload can be cached.
func (c *Client) GetRecordRaw(ctx context.Context, collection string, id int) ([]byte, error) {
	u := c.baseURL + "/" + collection + "/" + strconv.Itoa(id)
	return c.get(ctx, collection, u)
}

// get performs a GET with rate limiting, retry and metrics. Non-2xx
// responses become typed *Error values; 5xx and network failures are
// retried with backoff, 4xx are not.
func (c *Client) get(ctx context.Context, collection, rawURL string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(collection).Observe(time.Since(startTime).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	var body []byte
	retryErr := retryWithBackoff(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(collection, "network_error").Inc()
			return err
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(collection, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("url", rawURL).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Upstream request error")

			return &Error{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response body: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
