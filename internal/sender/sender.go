// Package sender submits snapshots to a collector over HTTP.
package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/go-tangra/go-tangra-memdev/internal/collector"
)

// submitResponse mirrors the collector's accepted-snapshot reply.
type submitResponse struct {
	ID       string    `json:"id"`
	StoredAt time.Time `json:"stored_at"`
}

// Send submits the snapshot to the collector at baseURL. When secret is
// non-empty it is sent as the X-Client-Secret header. Returns the
// assigned snapshot ID.
func Send(ctx context.Context, baseURL, secret string, snap *collector.Snapshot) (string, error) {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	if secret != "" {
		client.SetHeader("X-Client-Secret", secret)
	}

	var accepted submitResponse

	resp, err := client.R().
		SetContext(ctx).
		SetBody(snap).
		SetResult(&accepted).
		Post("/api/v1/snapshots")
	if err != nil {
		return "", fmt.Errorf("submit snapshot: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("submit snapshot: collector returned %s: %s", resp.Status(), resp.String())
	}

	return accepted.ID, nil
}
