package reporting

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/fleetwan-core/internal/store"
)

const defaultPostTimeout = 10 * time.Second

// PostReporter delivers uplinks by POSTing the raw payload to the
// application's base URL as JSON.
type PostReporter struct {
	client *http.Client
}

// NewPostReporter creates a POST reporter. A nil client gets a default
// with a 10 second timeout.
func NewPostReporter(client *http.Client) *PostReporter {
	if client == nil {
		client = &http.Client{Timeout: defaultPostTimeout}
	}
	return &PostReporter{client: client}
}

func (r *PostReporter) Report(ctx context.Context, app *store.Application, up *Uplink) error {
	if app.BaseURL == "" {
		return ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, app.BaseURL, bytes.NewReader(up.Payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned status %d", ErrDeliveryFailed, app.BaseURL, resp.StatusCode)
	}
	return nil
}
