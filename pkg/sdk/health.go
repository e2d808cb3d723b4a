package sdk

import (
	"context"
	"net/http"
	"time"
)

// Health checks the server and its workers. An unhealthy server answers
// 503 with a report, which is returned without error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	var hs HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, &hs, http.StatusServiceUnavailable)
	c.obs.observe("health", start, err, "health", hs.Status)
	return hs, err
}
