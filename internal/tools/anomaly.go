package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
)

// DetectSimpleAnomaliesTool scans a series for threshold and rolling-window anomalies
type DetectSimpleAnomaliesTool struct {
	*BaseTool
}

// NewDetectSimpleAnomaliesTool creates a new tool instance
func NewDetectSimpleAnomaliesTool(cfg *config.Config, logger *zap.Logger) *DetectSimpleAnomaliesTool {
	return &DetectSimpleAnomaliesTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *DetectSimpleAnomaliesTool) Name() string {
	return "detect_simple_anomalies"
}

// Annotations returns tool hints for LLMs
func (t *DetectSimpleAnomaliesTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Detect Simple Anomalies")
}

// Description returns the tool description
func (t *DetectSimpleAnomaliesTool) Description() string {
	return `Detect anomalies in a numeric series using absolute thresholds and a
rolling mean/std-dev window.

**When to use:**
- The user wants to spot unusual values in sensor readings or process metrics
- Lighter-weight than full SPC when control limits are not established

**Returns:** the anomalous points, each with the reasons it was flagged (a
point can breach both an absolute threshold and the rolling band), plus the
effective parameters after defaults were applied. Edge positions where the
full window does not fit are checked only against absolute thresholds.`
}

// InputSchema returns the input schema
func (t *DetectSimpleAnomaliesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data_points": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "number"},
				"description": "Numeric series to scan",
			},
			"window_size": map[string]interface{}{
				"type":        "integer",
				"description": "Rolling window size, at least 2 (default 5)",
			},
			"std_dev_threshold": map[string]interface{}{
				"type":        "number",
				"description": "How many standard deviations from the rolling mean flag a point (default 2.0)",
			},
			"absolute_upper_threshold": map[string]interface{}{
				"type":        "number",
				"description": "Optional hard ceiling; values above it are anomalous",
			},
			"absolute_lower_threshold": map[string]interface{}{
				"type":        "number",
				"description": "Optional hard floor; values below it are anomalous",
			},
		},
		"required": []string{"data_points"},
	}
}

// Execute executes the tool
func (t *DetectSimpleAnomaliesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dataPoints, err := GetNumberListParam(arguments, "data_points", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	params := analysis.AnomalyParams{}
	if w, present, err := GetIntParam(arguments, "window_size", false); err != nil {
		return InvalidParamsResult(err), nil
	} else if present {
		params.WindowSize = w
	}
	if v, present, err := GetFloatParam(arguments, "std_dev_threshold", false); err != nil {
		return InvalidParamsResult(err), nil
	} else if present {
		params.StdDevThreshold = v
	}
	if v, present, err := GetFloatParam(arguments, "absolute_upper_threshold", false); err != nil {
		return InvalidParamsResult(err), nil
	} else if present {
		upper := v
		params.AbsoluteUpperThreshold = &upper
	}
	if v, present, err := GetFloatParam(arguments, "absolute_lower_threshold", false); err != nil {
		return InvalidParamsResult(err), nil
	} else if present {
		lower := v
		params.AbsoluteLowerThreshold = &lower
	}

	anomalies, effective, err := analysis.DetectSimpleAnomalies(st, dataPoints, params)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(map[string]interface{}{
		"anomalies":       anomalies,
		"parameters_used": effective,
	})
}
