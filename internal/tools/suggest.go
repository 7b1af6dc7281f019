package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// SuggestImprovementActionsTool synthesizes suggestions from prior analysis results
type SuggestImprovementActionsTool struct {
	*BaseTool
}

// NewSuggestImprovementActionsTool creates a new tool instance
func NewSuggestImprovementActionsTool(cfg *config.Config, logger *zap.Logger) *SuggestImprovementActionsTool {
	return &SuggestImprovementActionsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *SuggestImprovementActionsTool) Name() string {
	return "suggest_improvement_actions"
}

// Annotations returns tool hints for LLMs
func (t *SuggestImprovementActionsTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Suggest Improvement Actions")
}

// Description returns the tool description
func (t *SuggestImprovementActionsTool) Description() string {
	return `Synthesize improvement suggestions from collected analysis results.

**When to use:**
- After running low-yield, SPC, or root cause analyses
- Pass along whichever results you have; every input is optional

**Returns:** a list of suggestion strings, one or more per finding. With no
inputs it suggests a general process review. Suggestions worth pursuing can
be recorded with add_action_item.`
}

// InputSchema returns the input schema
func (t *SuggestImprovementActionsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"low_yield_stages": map[string]interface{}{
				"type":        "array",
				"description": "Stages from identify_low_yield_stages output",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"stage_name": map[string]interface{}{"type": "string"},
						"yield":      map[string]interface{}{"type": "number"},
					},
					"required": []string{"stage_name"},
				},
			},
			"common_defect_types": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Recurring defect type names",
			},
			"spc_out_of_control_points": map[string]interface{}{
				"type":        "array",
				"description": "Points from identify_out_of_control_points output",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"index":       map[string]interface{}{"type": "integer"},
						"value":       map[string]interface{}{"type": "number"},
						"metric_name": map[string]interface{}{"type": "string"},
					},
					"required": []string{"index", "value"},
				},
			},
			"rca_summary": map[string]interface{}{
				"type":        "string",
				"description": "Root cause finding from guide_root_cause_analysis",
			},
		},
	}
}

// Execute executes the tool
func (t *SuggestImprovementActionsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stageRecords, err := GetObjectListParam(arguments, "low_yield_stages", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	defectTypes, err := GetStringListParam(arguments, "common_defect_types", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	oocRecords, err := GetObjectListParam(arguments, "spc_out_of_control_points", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	rcaSummary, err := GetStringParam(arguments, "rca_summary", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	stages, convErr := lowYieldInputsFromRecords(stageRecords)
	if convErr != nil {
		return ErrorResult(convErr), nil
	}
	oocPoints, convErr := oocInputsFromRecords(oocRecords)
	if convErr != nil {
		return ErrorResult(convErr), nil
	}

	suggestions, err := analysis.SuggestImprovementActions(st, stages, defectTypes, oocPoints, rcaSummary)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(map[string]interface{}{"suggestions": suggestions})
}

func lowYieldInputsFromRecords(records []map[string]interface{}) ([]analysis.LowYieldStageInput, error) {
	inputs := make([]analysis.LowYieldStageInput, 0, len(records))
	for i, record := range records {
		name, ok := record["stage_name"].(string)
		if !ok || name == "" {
			return nil, mcperrors.NewInvalidInputf(
				"Entry %d in low_yield_stages must have a non-empty string 'stage_name'.", i)
		}
		input := analysis.LowYieldStageInput{StageName: name}
		if raw, present := record["yield"]; present {
			y, ok := raw.(float64)
			if !ok {
				return nil, mcperrors.NewInvalidInputf(
					"Entry %d in low_yield_stages has a non-numeric 'yield'.", i)
			}
			input.Yield = &y
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func oocInputsFromRecords(records []map[string]interface{}) ([]analysis.OOCPointInput, error) {
	inputs := make([]analysis.OOCPointInput, 0, len(records))
	for i, record := range records {
		index, ok := intFromJSON(record["index"])
		if !ok {
			return nil, mcperrors.NewInvalidInputf(
				"Entry %d in spc_out_of_control_points must have an integer 'index'.", i)
		}
		value, ok := record["value"].(float64)
		if !ok {
			return nil, mcperrors.NewInvalidInputf(
				"Entry %d in spc_out_of_control_points must have a numeric 'value'.", i)
		}
		metricName, _ := record["metric_name"].(string)
		inputs = append(inputs, analysis.OOCPointInput{Index: index, Value: value, MetricName: metricName})
	}
	return inputs, nil
}
