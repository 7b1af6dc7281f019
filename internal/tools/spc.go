package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
)

// CalculateSPCMetricsTool computes control-chart statistics for a series
type CalculateSPCMetricsTool struct {
	*BaseTool
}

// NewCalculateSPCMetricsTool creates a new tool instance
func NewCalculateSPCMetricsTool(cfg *config.Config, logger *zap.Logger) *CalculateSPCMetricsTool {
	return &CalculateSPCMetricsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *CalculateSPCMetricsTool) Name() string {
	return "calculate_spc_metrics"
}

// Annotations returns tool hints for LLMs
func (t *CalculateSPCMetricsTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Calculate SPC Metrics")
}

// Description returns the tool description
func (t *CalculateSPCMetricsTool) Description() string {
	return `Calculate statistical process control (SPC) metrics for a numeric series.

**When to use:**
- The user has a time-ordered series of measurements (defect counts, temperatures, dimensions)
- Before checking for out-of-control points

**Returns:** mean, standard deviation, and upper/lower control limits at
mean ± sigma·std (default 3-sigma). The lower limit is clamped to zero for
all-non-negative data. Feed the limits into identify_out_of_control_points.`
}

// InputSchema returns the input schema
func (t *CalculateSPCMetricsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data_points": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "number"},
				"description": "Numeric series, at least two points",
			},
			"control_limit_sigma": map[string]interface{}{
				"type":        "number",
				"description": "Sigma multiplier for the control band (default 3.0)",
			},
		},
		"required": []string{"data_points"},
	}
}

// Execute executes the tool
func (t *CalculateSPCMetricsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dataPoints, err := GetNumberListParam(arguments, "data_points", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	sigma, present, err := GetFloatParam(arguments, "control_limit_sigma", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	if !present {
		sigma = analysis.DefaultControlLimitSigma
	}

	result, err := analysis.CalculateSPCMetrics(st, dataPoints, sigma)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(result)
}

// IdentifyOutOfControlPointsTool flags points outside a control band
type IdentifyOutOfControlPointsTool struct {
	*BaseTool
}

// NewIdentifyOutOfControlPointsTool creates a new tool instance
func NewIdentifyOutOfControlPointsTool(cfg *config.Config, logger *zap.Logger) *IdentifyOutOfControlPointsTool {
	return &IdentifyOutOfControlPointsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *IdentifyOutOfControlPointsTool) Name() string {
	return "identify_out_of_control_points"
}

// Annotations returns tool hints for LLMs
func (t *IdentifyOutOfControlPointsTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Identify Out-of-Control Points")
}

// Description returns the tool description
func (t *IdentifyOutOfControlPointsTool) Description() string {
	return `Identify data points strictly outside a control band.

**When to use:**
- After calculate_spc_metrics has produced control limits
- Or with limits the user supplies directly

**Returns:** the flagged points (index and value) in input order, plus the
limits used. Points exactly on a limit are in control. Flagged points can
feed suggest_improvement_actions.`
}

// InputSchema returns the input schema
func (t *IdentifyOutOfControlPointsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data_points": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "number"},
				"description": "Numeric series to check",
			},
			"upper_control_limit": map[string]interface{}{
				"type":        "number",
				"description": "Upper control limit",
			},
			"lower_control_limit": map[string]interface{}{
				"type":        "number",
				"description": "Lower control limit",
			},
		},
		"required": []string{"data_points", "upper_control_limit", "lower_control_limit"},
	}
}

// Execute executes the tool
func (t *IdentifyOutOfControlPointsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dataPoints, err := GetNumberListParam(arguments, "data_points", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	ucl, _, err := GetFloatParam(arguments, "upper_control_limit", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	lcl, _, err := GetFloatParam(arguments, "lower_control_limit", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	result, err := analysis.IdentifyOutOfControlPoints(st, dataPoints, ucl, lcl)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(result)
}
