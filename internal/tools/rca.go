package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// GuideRootCauseAnalysisTool drives a 5-Whys dialogue one step at a time
type GuideRootCauseAnalysisTool struct {
	*BaseTool
}

// NewGuideRootCauseAnalysisTool creates a new tool instance
func NewGuideRootCauseAnalysisTool(cfg *config.Config, logger *zap.Logger) *GuideRootCauseAnalysisTool {
	return &GuideRootCauseAnalysisTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *GuideRootCauseAnalysisTool) Name() string {
	return "guide_root_cause_analysis"
}

// Annotations returns tool hints for LLMs
func (t *GuideRootCauseAnalysisTool) Annotations() *mcp.ToolAnnotations {
	return AnalysisAnnotations("Guide Root Cause Analysis")
}

// Description returns the tool description
func (t *GuideRootCauseAnalysisTool) Description() string {
	return `Guide a 5-Whys root cause analysis, one question at a time.

**When to use:**
- The user wants to dig into why a problem is occurring
- Call once with only the problem statement to get the first question, then
  call again after each user answer, re-supplying the problem statement and
  ALL previous question/answer pairs

**Returns:** either the next 'why' question to pose to the user, or, after
five answers, a conclusion prompt asking them to confirm the root cause.
Every response includes the analysis path so far. The final summary can
feed suggest_improvement_actions or become action items.`
}

// InputSchema returns the input schema
func (t *GuideRootCauseAnalysisTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"problem_statement": map[string]interface{}{
				"type":        "string",
				"description": "The problem being analyzed",
			},
			"previous_whys": map[string]interface{}{
				"type":        "array",
				"description": "All prior question/answer pairs, in order",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"why_question": map[string]interface{}{"type": "string"},
						"user_answer":  map[string]interface{}{"type": "string"},
					},
					"required": []string{"why_question", "user_answer"},
				},
			},
		},
		"required": []string{"problem_statement"},
	}
}

// Execute executes the tool
func (t *GuideRootCauseAnalysisTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	problem, err := GetStringParam(arguments, "problem_statement", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	records, err := GetObjectListParam(arguments, "previous_whys", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	whys := make([]analysis.WhyStep, 0, len(records))
	for i, record := range records {
		question, ok := record["why_question"].(string)
		if !ok {
			return ErrorResult(mcperrors.NewInvalidInputf(
				"Entry %d in previous_whys must have a string 'why_question'.", i)), nil
		}
		answer, ok := record["user_answer"].(string)
		if !ok {
			return ErrorResult(mcperrors.NewInvalidInputf(
				"Entry %d in previous_whys must have a string 'user_answer'.", i)), nil
		}
		whys = append(whys, analysis.WhyStep{WhyQuestion: question, UserAnswer: answer})
	}

	outcome, err := analysis.GuideRootCauseAnalysis(st, problem, whys)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(outcome)
}
