package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"mediahub/internal/metrics"
)

const (
	defaultRateLimit    = 5
	defaultRateBurst    = 10
	defaultMaxRetries   = 3
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 8 * time.Second
	defaultTimeout      = 15 * time.Second

	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// ClientConfig tunes the shared HTTP plumbing of a provider client.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	RateLimit    float64 // requests per second
	RateBurst    int
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// httpClient performs rate limited, retried, circuit-broken GET requests.
type httpClient struct {
	provider     string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       *slog.Logger
}

func newHTTPClient(provider, defaultBaseURL string, cfg ClientConfig) *httpClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = defaultMaxRetries
	}
	initial := cfg.InitialDelay
	if initial <= 0 {
		initial = defaultInitialDelay
	}
	maxDelay := cfg.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &httpClient{
		provider:     provider,
		baseURL:      baseURL,
		http:         hc,
		limiter:      rate.NewLimiter(rate.Limit(limit), burst),
		maxRetries:   retries,
		initialDelay: initial,
		maxDelay:     maxDelay,
		logger:       logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    provider,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Client errors say nothing about the provider's health.
			var ce *Error
			if errors.As(err, &ce) && ce.StatusCode >= 400 && ce.StatusCode < 500 && ce.StatusCode != http.StatusTooManyRequests {
				return true
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog_breaker_state_changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// getJSON fetches endpoint and decodes the body into out.
func (c *httpClient) getJSON(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, op, fullURL)
	})
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return err
		}
		return &Error{Provider: c.provider, Op: op, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Provider: c.provider, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *httpClient) fetch(ctx context.Context, op, fullURL string) ([]byte, error) {
	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Provider: c.provider, Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, &Error{Provider: c.provider, Op: op, Err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "MediaHub/1.0")

		resp, err := c.http.Do(req)
		if err != nil {
			metrics.RecordCatalogRequest(c.provider, 0)
			lastErr = err
			if attempt < c.maxRetries && ctx.Err() == nil {
				c.logger.Debug("catalog_request_retry", "provider", c.provider, "attempt", attempt+1, "error", err)
				if !c.sleep(ctx, delay) {
					break
				}
				delay = min(delay*2, c.maxDelay)
				continue
			}
			break
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.RecordCatalogRequest(c.provider, resp.StatusCode)

		if resp.StatusCode != http.StatusOK {
			lastErr = &Error{Provider: c.provider, Op: op, StatusCode: resp.StatusCode, Err: errors.New(truncate(string(body), 200))}
			if shouldRetry(resp.StatusCode) && attempt < c.maxRetries {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if secs, err := strconv.Atoi(retryAfter); err == nil {
						delay = min(time.Duration(secs)*time.Second, c.maxDelay)
					}
				}
				c.logger.Debug("catalog_request_retry", "provider", c.provider, "attempt", attempt+1, "status", resp.StatusCode)
				if !c.sleep(ctx, delay) {
					break
				}
				delay = min(delay*2, c.maxDelay)
				continue
			}
			return nil, lastErr
		}
		if readErr != nil {
			return nil, &Error{Provider: c.provider, Op: op, Err: fmt.Errorf("read body: %w", readErr)}
		}
		return body, nil
	}

	var ce *Error
	if errors.As(lastErr, &ce) {
		return nil, lastErr
	}
	return nil, &Error{Provider: c.provider, Op: op, Err: fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)}
}

func (c *httpClient) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// shouldRetry reports whether an HTTP status warrants another attempt.
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
