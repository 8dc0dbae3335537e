package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/resilience"
	"github.com/gin-gonic/gin"
)

// SessionSource provides the published session views
type SessionSource interface {
	Snapshot() []registry.SessionInfo
}

// BreakerSource provides discovery breaker states
type BreakerSource interface {
	BreakerStates() map[string]resilience.State
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions SessionSource
	breakers BreakerSource
	metrics  *monitoring.Metrics
	version  string
	started  time.Time
}

// NewHandlers creates a new handler set. breakers and metrics may be nil.
func NewHandlers(sessions SessionSource, breakers BreakerSource, metrics *monitoring.Metrics, version string) *Handlers {
	return &Handlers{
		sessions: sessions,
		breakers: breakers,
		metrics:  metrics,
		version:  version,
		started:  time.Now(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "media host",
		"version": h.version,
	})
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	infos := h.sessions.Snapshot()
	running, failed := 0, 0
	for _, info := range infos {
		if info.Running {
			running++
		}
		if info.Failed {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": len(infos),
		"running":  running,
		"failed":   failed,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// ListSessions returns every session
func (h *Handlers) ListSessions(c *gin.Context) {
	infos := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"sessions": infos,
		"count":    len(infos),
	})
}

// GetSession returns one session by session or target ID
func (h *Handlers) GetSession(c *gin.Context) {
	id := c.Param("id")
	for _, info := range h.sessions.Snapshot() {
		if info.ID == id || (info.Target != "" && info.Target == id) {
			c.JSON(http.StatusOK, info)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
}

// Breakers returns the discovery breaker state per host
func (h *Handlers) Breakers(c *gin.Context) {
	type hostState struct {
		Host  string `json:"host"`
		State string `json:"state"`
	}
	hosts := []hostState{}
	if h.breakers != nil {
		for host, st := range h.breakers.BreakerStates() {
			hosts = append(hosts, hostState{Host: host, State: st.String()})
		}
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Host < hosts[j].Host })
	c.JSON(http.StatusOK, gin.H{"hosts": hosts})
}

// MetricsSummary returns the JSON metrics snapshot
func (h *Handlers) MetricsSummary(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
