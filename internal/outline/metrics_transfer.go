package outline

import (
	"context"
	"fmt"
	"net/http"
)

type transferMetrics struct {
	ByKey map[string]int64 `json:"bytesTransferredByUserId"`
}

// UsageByKey reports bytes transferred per access key id. Keys that have not
// moved any traffic are absent from the result.
func (c *Client) UsageByKey(ctx context.Context) (map[string]int64, error) {
	var m transferMetrics
	if err := c.doJSON(ctx, http.MethodGet, "/metrics/transfer", nil, &m); err != nil {
		return nil, fmt.Errorf("get transfer metrics: %w", err)
	}

	usage := make(map[string]int64, len(m.ByKey))
	for id, n := range m.ByKey {
		if n > 0 {
			usage[id] = n
		}
	}
	return usage, nil
}
