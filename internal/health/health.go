// Package health provides health checking and HTTP endpoints for the MCP server.
package health

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/kb"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check result
type Check struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Checker performs health checks
type Checker struct {
	kbPath  string
	session *session.State
	logger  *zap.Logger
}

// New creates a new health checker
func New(kbPath string, st *session.State, logger *zap.Logger) *Checker {
	return &Checker{
		kbPath:  kbPath,
		session: st,
		logger:  logger,
	}
}

// CheckAll performs all health checks
func (c *Checker) CheckAll() (Status, []Check) {
	checks := []Check{
		c.checkKnowledgeBase(),
		c.checkSessionStore(),
	}

	overallStatus := StatusHealthy
	for _, check := range checks {
		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return overallStatus, checks
}

// checkKnowledgeBase verifies the catalog file is loadable. A missing
// catalog degrades the server (only knowledge-base lookups fail) rather
// than making it unhealthy.
func (c *Checker) checkKnowledgeBase() Check {
	start := time.Now()
	check := Check{
		Name:      "knowledge_base",
		Timestamp: start,
	}

	entries, err := kb.LoadCatalog(c.kbPath)
	check.Duration = time.Since(start)

	if err != nil {
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("Knowledge base catalog unavailable: %v", err)
		c.logger.Warn("Health check degraded: knowledge base",
			zap.Error(err),
			zap.Duration("duration", check.Duration),
		)
	} else {
		check.Status = StatusHealthy
		check.Message = fmt.Sprintf("Catalog loaded with %d entries", len(entries))
	}
	return check
}

// checkSessionStore reports session store statistics
func (c *Checker) checkSessionStore() Check {
	start := time.Now()
	check := Check{
		Name:      "session_store",
		Timestamp: start,
	}

	stats := c.session.Stats()
	check.Duration = time.Since(start)
	check.Status = StatusHealthy
	check.Message = fmt.Sprintf("%v records across %d topics",
		stats["total_records"], len(stats["topics"].(map[string]int)))
	return check
}
