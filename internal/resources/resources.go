// Package resources provides MCP resource handlers for the yield analysis
// server. Resources expose read-only data to MCP clients for context and
// status information.
package resources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/config"
	"github.com/prodsight/yield-mcp-server/internal/kb"
	"github.com/prodsight/yield-mcp-server/internal/metrics"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// Registry holds all registered resources and their handlers
type Registry struct {
	config  *config.Config
	metrics *metrics.Metrics
	session *session.State
	logger  *zap.Logger
	version string
}

// NewRegistry creates a new resource registry
func NewRegistry(cfg *config.Config, m *metrics.Metrics, st *session.State, logger *zap.Logger, version string) *Registry {
	return &Registry{
		config:  cfg,
		metrics: m,
		session: st,
		logger:  logger,
		version: version,
	}
}

// RegisteredResource represents a resource with its definition and handler
type RegisteredResource struct {
	Resource *mcp.Resource
	Handler  mcp.ResourceHandler
}

// GetResources returns all registered resources with their handlers
func (r *Registry) GetResources() []RegisteredResource {
	return []RegisteredResource{
		r.aboutResource(),
		r.configResource(),
		r.catalogResource(),
		r.sessionResource(),
		r.metricsResource(),
	}
}

// aboutResource returns the about://service resource describing the server
func (r *Registry) aboutResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "about://service",
			Name:        "about://service",
			Title:       "About Yield Analysis Server",
			Description: "Service information and capabilities",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			aboutInfo := map[string]interface{}{
				"service": map[string]interface{}{
					"name":        "Manufacturing Yield Analysis",
					"description": "Session-scoped analysis toolkit for manufacturing yield: yield metrics, SPC, anomaly detection, failure patterns, 5-Whys, and action tracking",
				},
				"workflows": map[string]interface{}{
					"yield":    "calculate_yield_metrics → identify_low_yield_stages → suggest_improvement_actions",
					"spc":      "calculate_spc_metrics → identify_out_of_control_points",
					"rca":      "guide_root_cause_analysis (iterative, orchestrator-driven)",
					"tracking": "add_action_item → list_action_items → update_action_item_status",
				},
				"session": map[string]interface{}{
					"scope": "one conversation per process; nothing is persisted",
					"recap": "use get_session_context to review earlier results",
				},
				"mcp_server": map[string]interface{}{
					"version":      r.version,
					"capabilities": []string{"tools", "prompts", "resources"},
				},
			}

			return r.jsonResult("about://service", aboutInfo)
		},
	}
}

// configResource returns the config://current resource
func (r *Registry) configResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "config://current",
			Name:        "config://current",
			Title:       "Server Configuration",
			Description: "Current yield analysis MCP server configuration",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			currentConfig := map[string]interface{}{
				"kb_path":                r.config.KBPath,
				"maintenance_event_type": r.config.MaintenanceEventType,
				"health_port":            r.config.HealthPort,
				"metrics_endpoint":       r.config.MetricsEndpoint,
				"rate_limit":             r.config.RateLimit,
				"rate_limit_burst":       r.config.RateLimitBurst,
				"rate_limit_enabled":     r.config.EnableRateLimit,
				"tracing_enabled":        r.config.EnableTracing,
				"audit_log_enabled":      r.config.EnableAuditLog,
				"log_level":              r.config.LogLevel,
				"log_format":             r.config.LogFormat,
				"server_version":         r.version,
			}

			return r.jsonResult("config://current", currentConfig)
		},
	}
}

// catalogResource exposes the knowledge-base catalog as a browsable resource
func (r *Registry) catalogResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "kb://catalog",
			Name:        "kb://catalog",
			Title:       "Knowledge Base Catalog",
			Description: "Full problem/cause/solution catalog backing query_knowledge_base",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			entries, err := kb.LoadCatalog(r.config.KBPath)
			if err != nil {
				r.logger.Error("Failed to load knowledge base catalog", zap.Error(err))
				return nil, err
			}

			return r.jsonResult("kb://catalog", map[string]interface{}{
				"entries": entries,
				"count":   len(entries),
			})
		},
	}
}

// sessionResource exposes the current session state summary
func (r *Registry) sessionResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "session://current",
			Name:        "session://current",
			Title:       "Session State",
			Description: "Summary of what has been recorded in this conversation",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return r.jsonResult("session://current", map[string]interface{}{
				"stats":  r.session.Stats(),
				"topics": r.session.Topics(),
			})
		},
	}
}

// metricsResource returns the metrics://server resource
func (r *Registry) metricsResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "metrics://server",
			Name:        "metrics://server",
			Title:       "Server Metrics",
			Description: "Operational metrics including tool usage and latency statistics",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			total, successful, failed := r.metrics.Totals()

			metricsData := map[string]interface{}{
				"executions": map[string]interface{}{
					"total":      total,
					"successful": successful,
					"failed":     failed,
				},
				"tools":     r.metrics.GetToolStats(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.jsonResult("metrics://server", metricsData)
		},
	}
}

func (r *Registry) jsonResult(uri string, payload interface{}) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal resource", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
