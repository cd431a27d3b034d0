package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/parlayscope/internal/config"
)

// Client is the HTTP client for the vision/analytics backend
type Client struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// NewClient creates a rate-limited, retrying vision service client
func NewClient(cfg *config.VisionServiceConfig, logger *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.CheckRetry = retryPolicy()
	retryClient.Logger = nil

	limit := cfg.RateLimitPerSecond
	if limit <= 0 {
		limit = 5
	}

	return &Client{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// ExtractSlip submits deduplicated slip frames for OCR extraction
func (c *Client) ExtractSlip(ctx context.Context, frames []string) (*ExtractedSlip, error) {
	if len(frames) == 0 {
		return nil, ErrNoFramesProvided
	}

	start := time.Now()
	defer func() {
		RequestLatency.WithLabelValues("extract_slip").Observe(time.Since(start).Seconds())
	}()

	var slip ExtractedSlip
	if err := c.post(ctx, "/api/v1/slips/extract", extractSlipRequest{Frames: frames}, &slip); err != nil {
		RequestErrorsTotal.WithLabelValues("extract_slip", errorLabel(err)).Inc()
		return nil, err
	}

	if err := slip.validate(); err != nil {
		RequestErrorsTotal.WithLabelValues("extract_slip", "malformed").Inc()
		return nil, err
	}

	RequestsTotal.WithLabelValues("extract_slip").Inc()
	c.logger.WithFields(logrus.Fields{
		"legs":       len(slip.Legs),
		"confidence": slip.Confidence,
		"duration":   time.Since(start),
	}).Debug("Slip extraction completed")

	return &slip, nil
}

// SharpMoney fetches the current sharp money report
func (c *Client) SharpMoney(ctx context.Context) (*SharpMoneyReport, error) {
	start := time.Now()
	defer func() {
		RequestLatency.WithLabelValues("sharp_money").Observe(time.Since(start).Seconds())
	}()

	var report SharpMoneyReport
	if err := c.get(ctx, "/api/v1/analytics/sharp-money", &report); err != nil {
		RequestErrorsTotal.WithLabelValues("sharp_money", errorLabel(err)).Inc()
		return nil, err
	}
	if err := report.validate(); err != nil {
		RequestErrorsTotal.WithLabelValues("sharp_money", "malformed").Inc()
		return nil, err
	}

	RequestsTotal.WithLabelValues("sharp_money").Inc()
	return &report, nil
}

// ScanHitRates fetches historical hit rates for the given leg descriptions
func (c *Client) ScanHitRates(ctx context.Context, descriptions []string) (*HitRateReport, error) {
	start := time.Now()
	defer func() {
		RequestLatency.WithLabelValues("hit_rates").Observe(time.Since(start).Seconds())
	}()

	var report HitRateReport
	if err := c.post(ctx, "/api/v1/analytics/hit-rates", hitRateRequest{Descriptions: descriptions}, &report); err != nil {
		RequestErrorsTotal.WithLabelValues("hit_rates", errorLabel(err)).Inc()
		return nil, err
	}
	if err := report.validate(); err != nil {
		RequestErrorsTotal.WithLabelValues("hit_rates", "malformed").Inc()
		return nil, err
	}

	RequestsTotal.WithLabelValues("hit_rates").Inc()
	return &report, nil
}

// HealthCheck verifies the vision service is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// post issues an authenticated JSON POST and decodes into out
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(ctx, req, out)
}

// get issues an authenticated GET and decodes into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *retryablehttp.Request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusUnprocessableEntity:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrExtractionFailed, string(body))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// retryPolicy retries network errors, 429s and 5xx responses only
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}
}

func errorLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	default:
		return "request_failed"
	}
}
