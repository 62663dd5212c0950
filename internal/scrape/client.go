// Package scrape talks to the external asynchronous scraping-job service:
// run submission, status polling and dataset retrieval, plus normalization of
// the arbitrarily-shaped payloads the service returns.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// Client is an authenticated HTTP client for the scraping-job service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a scraping-job service client.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With("component", "scrape_client"),
	}
}

// StartRun submits a run. The payload is provider-specific (start URLs, item
// caps, language filters, proxy flags). A non-2xx response is fatal for this
// fetch; run submissions are never retried.
func (c *Client) StartRun(ctx context.Context, payload map[string]any) (*models.ScrapeRun, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/runs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewUpstreamJobError("scrape run submission failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewUpstreamJobError(
			fmt.Sprintf("scrape run submission rejected (status %d): %s", resp.StatusCode, truncate(string(respBody), 200)),
			nil,
		)
	}

	var parsed struct {
		ID               string `json:"id"`
		DefaultDatasetID string `json:"defaultDatasetId"`
		Status           string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, models.NewUpstreamJobError("unparseable run submission response", err)
	}
	if parsed.ID == "" {
		return nil, models.NewUpstreamJobError("run submission response missing run id", nil)
	}

	c.logger.Info("scrape run submitted", "run_id", parsed.ID, "dataset_id", parsed.DefaultDatasetID)

	return &models.ScrapeRun{
		RunID:     parsed.ID,
		DatasetID: parsed.DefaultDatasetID,
		Status:    models.RunSubmitted,
	}, nil
}

// RunStatus fetches the current status of a run.
func (c *Client) RunStatus(ctx context.Context, runID string) (models.RunStatus, string, error) {
	respBody, err := c.get(ctx, "/runs/"+runID)
	if err != nil {
		return "", "", err
	}

	var parsed struct {
		Status        string `json:"status"`
		StatusMessage string `json:"statusMessage"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", models.NewUpstreamJobError("unparseable run status response", err)
	}

	return mapRunStatus(parsed.Status), parsed.StatusMessage, nil
}

// DatasetItems fetches the raw result items of a completed run. The shape of
// each item is opaque and provider-dependent; callers hand the bytes to the
// normalizer.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]byte, error) {
	return c.get(ctx, "/datasets/"+datasetID+"/items")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewUpstreamJobError("scrape service request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewUpstreamJobError(
			fmt.Sprintf("scrape service error (status %d) on %s", resp.StatusCode, path),
			nil,
		)
	}

	return body, nil
}

// mapRunStatus translates provider status strings into run states. Unknown
// states are treated as still running so the poll loop keeps waiting.
func mapRunStatus(s string) models.RunStatus {
	switch strings.ToUpper(s) {
	case "SUCCEEDED":
		return models.RunSucceeded
	case "FAILED":
		return models.RunFailed
	case "ABORTED", "ABORTING":
		return models.RunAborted
	case "TIMED-OUT", "TIMED_OUT":
		return models.RunTimedOut
	default:
		return models.RunRunning
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
