package handler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// healthCheckTimeout bounds each dependency ping
const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health check can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	checks    map[string]Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. checks maps a component name
// ("database", "redis") to its pinger.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		checks:    checks,
		startTime: time.Now(),
	}
}

// ComponentStatus is the health of one dependency
type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health. All pings run concurrently; any failure
// turns the answer into a 503.
func (h *SystemHandler) Health(c *gin.Context) {
	components := h.checkAll(c.Request.Context())

	healthy := true
	for _, comp := range components {
		if comp.Status != "up" {
			healthy = false
			logger.GetGinLogger(c).Warn("Health check failed",
				zap.String("component", comp.Name), zap.String("error", comp.Error))
		}
	}

	resp := HealthResponse{
		Status:     "ok",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: components,
	}
	if !healthy {
		resp.Status = "degraded"
		dto.ServiceUnavailable(c, "Service unhealthy", resp)
		return
	}
	dto.Success(c, resp, "")
}

func (h *SystemHandler) checkAll(ctx context.Context) []ComponentStatus {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make([]ComponentStatus, 0, len(h.checks))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check Pinger) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			start := time.Now()
			status := ComponentStatus{Name: name, Status: "up"}
			if err := check.Ping(ctx); err != nil {
				status.Status = "down"
				status.Error = err.Error()
			}
			status.Latency = time.Since(start).Round(time.Microsecond).String()

			mu.Lock()
			out = append(out, status)
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetSystemInfo handles GET /api/v1/system/info
//
// @ID          getSystemInfo
// @Summary     Get system information
// @Tags        system
// @Produce     json
// @Success     200 {object} APIResponse[SystemInfoResponse]
// @Failure     500 {object} ErrorResponse
// @Router      /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	dto.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}, "")
}
