package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// CalculateYieldMetricsTool computes yield and defect rates from production counts
type CalculateYieldMetricsTool struct {
	*BaseTool
}

// NewCalculateYieldMetricsTool creates a new tool instance
func NewCalculateYieldMetricsTool(cfg *config.Config, logger *zap.Logger) *CalculateYieldMetricsTool {
	return &CalculateYieldMetricsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *CalculateYieldMetricsTool) Name() string {
	return "calculate_yield_metrics"
}

// Annotations returns tool hints for LLMs
func (t *CalculateYieldMetricsTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Calculate Yield Metrics")
}

// Description returns the tool description
func (t *CalculateYieldMetricsTool) Description() string {
	return `Calculate yield rate and defect rate from production data.

**When to use:**
- The user has overall production counts (total units and defective units)
- As a first step before deeper analysis (low-yield stages, SPC)

**Returns:** yield_rate and defect_rate, both in [0, 1]. The calculation is
also recorded in the session for later reference.`
}

// InputSchema returns the input schema
func (t *CalculateYieldMetricsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"total_units": map[string]interface{}{
				"type":        "integer",
				"description": "Total number of units produced (must be positive)",
			},
			"defective_units": map[string]interface{}{
				"type":        "integer",
				"description": "Number of defective units (0 to total_units)",
			},
		},
		"required": []string{"total_units", "defective_units"},
	}
}

// Execute executes the tool
func (t *CalculateYieldMetricsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	total, _, err := GetIntParam(arguments, "total_units", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	defective, _, err := GetIntParam(arguments, "defective_units", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	metrics, err := analysis.CalculateYieldMetrics(st, total, defective)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(metrics)
}

// IdentifyLowYieldStagesTool finds production stages below a yield threshold
type IdentifyLowYieldStagesTool struct {
	*BaseTool
}

// NewIdentifyLowYieldStagesTool creates a new tool instance
func NewIdentifyLowYieldStagesTool(cfg *config.Config, logger *zap.Logger) *IdentifyLowYieldStagesTool {
	return &IdentifyLowYieldStagesTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *IdentifyLowYieldStagesTool) Name() string {
	return "identify_low_yield_stages"
}

// Annotations returns tool hints for LLMs
func (t *IdentifyLowYieldStagesTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Identify Low-Yield Stages")
}

// Description returns the tool description
func (t *IdentifyLowYieldStagesTool) Description() string {
	return `Identify production stages whose yield falls below a threshold.

**When to use:**
- The user has stage-wise production data (stage name, input units, output units)
- Always ask the user for their desired yield_threshold (e.g. 0.90 for 90%); do not assume one

**Returns:** the stages below the threshold in input order, each annotated
with its yield and unit counts. An empty list means every stage met the
threshold. Results can feed suggest_improvement_actions.`
}

// InputSchema returns the input schema
func (t *IdentifyLowYieldStagesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"production_data_per_stage": map[string]interface{}{
				"type":        "array",
				"description": "One record per stage",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"stage_name":   map[string]interface{}{"type": "string"},
						"input_units":  map[string]interface{}{"type": "integer"},
						"output_units": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"stage_name", "input_units", "output_units"},
				},
			},
			"yield_threshold": map[string]interface{}{
				"type":        "number",
				"description": "Minimum acceptable yield, in (0, 1]",
			},
		},
		"required": []string{"production_data_per_stage", "yield_threshold"},
	}
}

// Execute executes the tool
func (t *IdentifyLowYieldStagesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := GetObjectListParam(arguments, "production_data_per_stage", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	threshold, _, err := GetFloatParam(arguments, "yield_threshold", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	stages, convErr := stagesFromRecords(records)
	if convErr != nil {
		return ErrorResult(convErr), nil
	}

	lowYield, err := analysis.IdentifyLowYieldStages(st, stages, threshold)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(map[string]interface{}{"low_yield_stages": lowYield})
}

// stagesFromRecords converts loose JSON records into typed stages,
// naming the offending stage in every error.
func stagesFromRecords(records []map[string]interface{}) ([]analysis.ProductionStage, error) {
	stages := make([]analysis.ProductionStage, 0, len(records))
	for _, record := range records {
		for _, key := range []string{"stage_name", "input_units", "output_units"} {
			if _, ok := record[key]; !ok {
				return nil, mcperrors.NewInvalidInput(
					"Each stage must have 'stage_name', 'input_units', and 'output_units'.")
			}
		}
		name, ok := record["stage_name"].(string)
		if !ok {
			return nil, mcperrors.NewInvalidInput("Stage name must be a string.")
		}
		input, ok := intFromJSON(record["input_units"])
		if !ok {
			return nil, mcperrors.NewInvalidInputf("Input and output units must be integers (stage %s).", name)
		}
		output, ok := intFromJSON(record["output_units"])
		if !ok {
			return nil, mcperrors.NewInvalidInputf("Input and output units must be integers (stage %s).", name)
		}
		stages = append(stages, analysis.ProductionStage{StageName: name, InputUnits: input, OutputUnits: output})
	}
	return stages, nil
}

// intFromJSON accepts JSON numbers only when they carry integral values
func intFromJSON(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
