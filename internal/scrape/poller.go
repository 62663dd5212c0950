package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// Poller drives a submitted scrape run to completion by polling its status on
// a fixed interval, bounded by a per-source poll budget.
type Poller struct {
	client   *Client
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller. The interval applies between consecutive status
// checks; the poll budget is passed per call because it is source-specific.
func NewPoller(client *Client, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:   client,
		interval: interval,
		logger:   logger.With("component", "poller"),
	}
}

// AwaitCompletion polls until the run reaches a terminal state or maxPolls is
// exhausted, returning the dataset ID holding the results. The already-running
// remote job is not cancelled when the wait is abandoned.
func (p *Poller) AwaitCompletion(ctx context.Context, run *models.ScrapeRun, maxPolls int) (string, error) {
	for poll := 1; poll <= maxPolls; poll++ {
		if err := p.sleep(ctx); err != nil {
			return "", err
		}

		status, message, err := p.client.RunStatus(ctx, run.RunID)
		if err != nil {
			return "", err
		}
		run.Status = status
		run.StatusMessage = message

		p.logger.Info("scrape run status",
			"run_id", run.RunID,
			"status", status,
			"poll", poll,
			"max_polls", maxPolls,
		)

		if !status.Terminal() {
			continue
		}

		if status == models.RunSucceeded {
			return run.DatasetID, nil
		}

		if message == "" {
			message = string(status)
		}
		return "", models.NewUpstreamJobError(fmt.Sprintf("scrape run %s: %s", status, message), nil)
	}

	run.Status = models.RunTimedOut
	elapsed := time.Duration(maxPolls) * p.interval
	return "", models.NewUpstreamJobError(
		fmt.Sprintf("scrape run did not finish within %s (%d polls)", elapsed, maxPolls),
		nil,
	)
}

func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
