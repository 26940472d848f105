package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kjstillabower/citypage-weather/internal/observability"
)

// Fetcher retrieves one document. Implementations return a *TransportError on failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var ErrTransport = errors.New("transport failure")

// TransportError reports a failed fetch. StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch weather data for %s with status: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("failed to fetch weather data for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// CitypageClient fetches citypage XML documents over HTTP. A single GET per call, no retries.
type CitypageClient struct {
	client    *http.Client
	userAgent string
}

func NewCitypageClient(timeout time.Duration, userAgent string) *CitypageClient {
	return &CitypageClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (c *CitypageClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		observability.FetchTotal.WithLabelValues("error").Inc()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.FetchTotal.WithLabelValues("error").Inc()
		observability.FetchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &TransportError{URL: url, Err: fmt.Errorf("request timeout: %w", err)}
		}
		return nil, &TransportError{URL: url, Err: fmt.Errorf("http request failed: %w", err)}
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.FetchTotal.WithLabelValues(status).Inc()
	observability.FetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	observability.FetchBytes.Observe(float64(len(body)))
	return body, nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == http.StatusNotFound {
		return "not_found"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
