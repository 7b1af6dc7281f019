package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// IdentifyFailurePatternsTool mines an event log for failure counts and
// time-to-failure after maintenance
type IdentifyFailurePatternsTool struct {
	*BaseTool
}

// NewIdentifyFailurePatternsTool creates a new tool instance
func NewIdentifyFailurePatternsTool(cfg *config.Config, logger *zap.Logger) *IdentifyFailurePatternsTool {
	return &IdentifyFailurePatternsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *IdentifyFailurePatternsTool) Name() string {
	return "identify_failure_patterns"
}

// Annotations returns tool hints for LLMs
func (t *IdentifyFailurePatternsTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Identify Failure Patterns")
}

// Description returns the tool description
func (t *IdentifyFailurePatternsTool) Description() string {
	return `Mine an equipment event log for failure patterns.

**When to use:**
- The user has a log of timestamped events per equipment item
- To find recurring failure types or short times between maintenance and failure

**Returns:** failure counts per "item_id::event_type" key, and for failures
that followed a maintenance completion, the average and individual hours
from that maintenance to the first subsequent failure. Events whose type
matches the maintenance event type mark a maintenance completion rather
than a failure.`
}

// InputSchema returns the input schema
func (t *IdentifyFailurePatternsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"event_data": map[string]interface{}{
				"type":        "array",
				"description": "One record per event",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"timestamp": map[string]interface{}{
							"type":        "string",
							"description": "Event time, e.g. RFC 3339 or 'YYYY-MM-DD HH:MM:SS'",
						},
						"event_type": map[string]interface{}{"type": "string"},
						"item_id":    map[string]interface{}{"type": "string"},
					},
					"required": []string{"timestamp", "event_type", "item_id"},
				},
			},
			"maintenance_event_type": map[string]interface{}{
				"type":        "string",
				"description": "Event type marking completed maintenance (default 'maintenance_completed')",
			},
		},
		"required": []string{"event_data"},
	}
}

// Execute executes the tool
func (t *IdentifyFailurePatternsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := GetObjectListParam(arguments, "event_data", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	maintenanceType, err := GetStringParam(arguments, "maintenance_event_type", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	if maintenanceType == "" {
		maintenanceType = t.cfg.MaintenanceEventType
	}

	events, convErr := eventsFromRecords(records)
	if convErr != nil {
		return ErrorResult(convErr), nil
	}

	patterns, err := analysis.IdentifyFailurePatterns(st, events, maintenanceType)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(patterns)
}

func eventsFromRecords(records []map[string]interface{}) ([]analysis.Event, error) {
	events := make([]analysis.Event, 0, len(records))
	for i, record := range records {
		event := analysis.Event{}
		var ok bool
		if event.Timestamp, ok = record["timestamp"].(string); !ok {
			return nil, mcperrors.NewInvalidInputf("Event at position %d must have a string 'timestamp'.", i)
		}
		if event.EventType, ok = record["event_type"].(string); !ok {
			return nil, mcperrors.NewInvalidInputf("Event at position %d must have a string 'event_type'.", i)
		}
		if event.ItemID, ok = record["item_id"].(string); !ok {
			return nil, mcperrors.NewInvalidInputf("Event at position %d must have a string 'item_id'.", i)
		}
		events = append(events, event)
	}
	return events, nil
}
