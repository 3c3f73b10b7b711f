package landing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sherpa/waitlist/internal/pkg/httputil"
)

// Pinger is satisfied by the duplicate guard's Redis backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status            string                    `json:"status"` // "healthy", "degraded"
	Uptime            string                    `json:"uptime"`
	WebhookConfigured bool                      `json:"webhook_configured"`
	Checks            map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandleHealth reports liveness plus the state of optional dependencies.
// It always answers 200; a missing webhook or Redis only degrades the
// waitlist, the page keeps serving.
//
//	GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]ComponentCheck{
		"redis": h.checkRedis(r.Context()),
	}

	status := "healthy"
	if !h.controller.Configured() || checks["redis"].Status == "down" {
		status = "degraded"
	}

	httputil.OK(w, HealthStatus{
		Status:            status,
		Uptime:            formatUptime(time.Since(h.started)),
		WebhookConfigured: h.controller.Configured(),
		Checks:            checks,
	})
}

func (h *Handler) checkRedis(ctx context.Context) ComponentCheck {
	if h.redis == nil {
		return ComponentCheck{Status: "not_configured"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.redis.Ping(pingCtx)
	latency := time.Since(start)
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return ComponentCheck{Status: "up", Latency: latency.String()}
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
