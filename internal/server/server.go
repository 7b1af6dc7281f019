// Package server provides the MCP server implementation for the yield
// analysis service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prodsight/yield-mcp-server/internal/audit"
	"github.com/prodsight/yield-mcp-server/internal/config"
	"github.com/prodsight/yield-mcp-server/internal/health"
	"github.com/prodsight/yield-mcp-server/internal/metrics"
	"github.com/prodsight/yield-mcp-server/internal/prompts"
	"github.com/prodsight/yield-mcp-server/internal/resources"
	"github.com/prodsight/yield-mcp-server/internal/session"
	"github.com/prodsight/yield-mcp-server/internal/tools"
	"github.com/prodsight/yield-mcp-server/internal/tracing"
)

// Server represents the MCP server. It owns the conversation's session
// state store; the server runs over stdio, so one process serves exactly
// one conversation.
type Server struct {
	mcpServer    *mcp.Server
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	session      *session.State
	audit        *audit.Logger
	limiter      *rate.Limiter
	healthServer *health.Server
	version      string
}

// New creates a new MCP server instance.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "Yield Analysis MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasPrompts:   true,
		HasResources: true,
	})

	s := &Server{
		mcpServer: mcpServer,
		config:    cfg,
		logger:    logger,
		metrics:   metrics.New(logger),
		session:   session.New(),
		audit:     audit.NewLogger(logger, cfg.EnableAuditLog),
		version:   version,
	}

	if cfg.EnableRateLimit {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}

	// Create health server if port is configured (port > 0)
	if cfg.HealthPort > 0 {
		healthChecker := health.New(cfg.KBPath, s.session, logger)
		s.healthServer = health.NewServer(healthChecker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.MetricsEndpoint)
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	s.registerPrompts()
	s.registerResources()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() error {
	// Yield tools
	s.registerTool(tools.NewCalculateYieldMetricsTool(s.config, s.logger))
	s.registerTool(tools.NewIdentifyLowYieldStagesTool(s.config, s.logger))

	// SPC tools
	s.registerTool(tools.NewCalculateSPCMetricsTool(s.config, s.logger))
	s.registerTool(tools.NewIdentifyOutOfControlPointsTool(s.config, s.logger))

	// Anomaly detection
	s.registerTool(tools.NewDetectSimpleAnomaliesTool(s.config, s.logger))

	// Failure pattern mining
	s.registerTool(tools.NewIdentifyFailurePatternsTool(s.config, s.logger))

	// Root cause analysis
	s.registerTool(tools.NewGuideRootCauseAnalysisTool(s.config, s.logger))

	// Action item ledger
	s.registerTool(tools.NewAddActionItemTool(s.config, s.logger))
	s.registerTool(tools.NewListActionItemsTool(s.config, s.logger))
	s.registerTool(tools.NewUpdateActionItemStatusTool(s.config, s.logger))

	// Knowledge base
	s.registerTool(tools.NewQueryKnowledgeBaseTool(s.config, s.logger))

	// Suggestion synthesis
	s.registerTool(tools.NewSuggestImprovementActionsTool(s.config, s.logger))

	// Data file readers
	s.registerTool(tools.NewReadCSVDataTool(s.config, s.logger))
	s.registerTool(tools.NewReadExcelDataTool(s.config, s.logger))

	// Session introspection
	s.registerTool(tools.NewGetSessionContextTool(s.config, s.logger))

	s.logger.Info("Registered all MCP tools")
	return nil
}

// registerTool registers one tool with the MCP server, wrapping its
// Execute method with rate limiting, tracing, session injection, metrics,
// and audit logging.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
			}
			if time.Since(start) > time.Millisecond {
				s.metrics.RecordRateLimitWait()
			}
		}

		ctx = tracing.WithTrace(ctx, tracing.NewTraceInfo())
		ctx, span := tracing.StartSpan(ctx, "tool."+toolName,
			attribute.String("tool.name", toolName))
		defer span.End()

		ctx = tools.WithSession(ctx, s.session)
		s.session.RecordToolCall()

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		result, err := t.Execute(ctx, args)
		duration := time.Since(start)
		success := err == nil && (result == nil || !result.IsError)
		s.metrics.RecordToolExecution(toolName, success, duration)

		entry := audit.Entry{Tool: toolName, Success: success, Duration: duration}
		if err != nil {
			entry.ErrorMsg = err.Error()
		}
		s.audit.Log(ctx, entry)

		return result, err
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// registerPrompts registers all available MCP prompts
func (s *Server) registerPrompts() {
	registry := prompts.NewRegistry(s.logger)

	for _, p := range registry.GetPrompts() {
		s.mcpServer.AddPrompt(p.Prompt, p.Handler)
		s.logger.Debug("Registered prompt", zap.String("prompt", p.Prompt.Name))
	}

	s.logger.Info("Registered all MCP prompts", zap.Int("count", len(registry.GetPrompts())))
}

// registerResources registers all available MCP resources
func (s *Server) registerResources() {
	registry := resources.NewRegistry(s.config, s.metrics, s.session, s.logger, s.version)

	for _, r := range registry.GetResources() {
		s.mcpServer.AddResource(r.Resource, r.Handler)
		s.logger.Debug("Registered resource", zap.String("uri", r.Resource.URI))
	}

	s.logger.Info("Registered all MCP resources", zap.Int("count", len(registry.GetResources())))
}

// Start starts the MCP server over stdio and blocks until the context is
// cancelled or the transport closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server")

	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		s.healthServer.SetReady(true)
	}

	defer func() {
		s.metrics.LogStats()

		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}
	}()

	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// Session returns the conversation's session state store
func (s *Server) Session() *session.State {
	return s.session
}
