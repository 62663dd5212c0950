package scrape

import (
	"context"
	"log/slog"
	"time"
)

// Runner couples the client and poller into a one-shot run execution:
// submit, await completion, fetch the dataset items.
type Runner struct {
	client *Client
	poller *Poller
}

// NewRunner creates a runner polling at the given interval.
func NewRunner(client *Client, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		client: client,
		poller: NewPoller(client, interval, logger),
	}
}

// RunAndFetch executes a scrape run end to end and returns the raw dataset
// items. maxPolls bounds the wait; it is source-specific.
func (r *Runner) RunAndFetch(ctx context.Context, payload map[string]any, maxPolls int) ([]byte, error) {
	run, err := r.client.StartRun(ctx, payload)
	if err != nil {
		return nil, err
	}

	datasetID, err := r.poller.AwaitCompletion(ctx, run, maxPolls)
	if err != nil {
		return nil, err
	}

	return r.client.DatasetItems(ctx, datasetID)
}
