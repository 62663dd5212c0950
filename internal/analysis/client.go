// Package analysis calls the external text-analysis service: rate-limited
// per-review analyses, one holistic whole-corpus analysis, and statistical
// extrapolation for reviews beyond the per-review cap.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/reviewlens/reviewlens-api/internal/config"
)

// RateLimitError signals an HTTP 429 from the analysis service, carrying the
// server-requested wait when a Retry-After header was present.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("analysis service rate limited (retry after %s)", e.RetryAfter)
	}
	return "analysis service rate limited"
}

// IsRateLimit returns the RateLimitError inside err, if any.
func IsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// Client is an authenticated client for the OpenAI-compatible chat-completions
// endpoint of the text-analysis service. A token bucket caps the request rate
// in front of the service's own limiter.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an analysis client from the application config.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.AnalysisRPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		apiURL:     cfg.AnalysisAPIURL,
		apiKey:     cfg.AnalysisAPIKey,
		model:      cfg.AnalysisModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger.With("component", "analysis_client"),
	}
}

// Complete sends one prompt and returns the raw assistant message content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("analysis service error",
			"status_code", resp.StatusCode,
			"response_length", len(body),
		)
		return "", fmt.Errorf("analysis service error (status %d)", resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse analysis response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from analysis service")
	}

	return parsed.Choices[0].Message.Content, nil
}

// parseRetryAfter handles both Retry-After forms: delta-seconds and HTTP-date.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
