// Package prompts provides pre-built prompts for common yield-analysis
// workflows. Each prompt walks the orchestrator through a multi-tool
// sequence: which tools to call, in what order, and what to ask the user
// between calls.
package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// PromptDefinition represents a prompt with its metadata and handler
type PromptDefinition struct {
	// Prompt is the MCP prompt metadata
	Prompt *mcp.Prompt
	// Handler is the function that generates the prompt content
	Handler mcp.PromptHandler
}

// Registry holds all registered prompts
type Registry struct {
	logger  *zap.Logger
	prompts []*PromptDefinition
}

// NewRegistry creates a new prompt registry with all available prompts
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger: logger,
	}
	r.registerPrompts()
	return r
}

// GetPrompts returns all registered prompt definitions
func (r *Registry) GetPrompts() []*PromptDefinition {
	return r.prompts
}

// registerPrompts registers all available prompts
func (r *Registry) registerPrompts() {
	r.prompts = []*PromptDefinition{
		r.yieldInvestigationPrompt(),
		r.fiveWhysWalkthroughPrompt(),
		r.spcReviewPrompt(),
	}
}

// Helper to create a prompt result with user role
func createPromptResult(description, content string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: content,
				},
			},
		},
	}
}

// getStringArg safely extracts a string argument with a default value
func getStringArg(args map[string]string, key, defaultVal string) string {
	if val, ok := args[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// yieldInvestigationPrompt creates the "yield_investigation" prompt definition
func (r *Registry) yieldInvestigationPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "yield_investigation",
			Title:       "Investigate Low Yield",
			Description: "Guide through investigating a yield problem end to end",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "product_line",
					Description: "Product line or process being investigated",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			productLine := getStringArg(req.Params.Arguments, "product_line", "the production line")

			content := fmt.Sprintf(`Let's investigate the yield problem on %s. I'll work through it step by step:

**Step 1: Establish the baseline**
- Ask the user for total and defective unit counts (or read them from a
  file with read_csv_data / read_excel_data using extract "yield_totals")
- Run: calculate_yield_metrics

**Step 2: Localize the problem**
- Ask for per-stage data (stage name, input units, output units) and the
  user's acceptable yield threshold — never assume a threshold
- Run: identify_low_yield_stages

**Step 3: Check for known causes**
- Run: query_knowledge_base with keywords describing the observed defects

**Step 4: Dig into the worst stage**
- Run: guide_root_cause_analysis with a problem statement for the worst
  stage, then relay each 'why' question to the user and call again with
  their answers

**Step 5: Turn findings into actions**
- Run: suggest_improvement_actions with the low-yield stages, defect
  types, and RCA summary collected above
- Record accepted suggestions with add_action_item

I'll keep everything in the session, so earlier results stay available via
get_session_context.`, productLine)

			return createPromptResult("Yield investigation workflow", content), nil
		},
	}
}

// fiveWhysWalkthroughPrompt creates the "five_whys_walkthrough" prompt definition
func (r *Registry) fiveWhysWalkthroughPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "five_whys_walkthrough",
			Title:       "5-Whys Walkthrough",
			Description: "Run a structured 5-Whys root cause analysis with the user",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "problem_statement",
					Description: "The problem to analyze",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			problem := getStringArg(req.Params.Arguments, "problem_statement", "the problem the user describes")

			content := fmt.Sprintf(`Let's run a 5-Whys analysis on: %s

**How to drive it:**
1. Call guide_root_cause_analysis with only the problem_statement. It
   returns the first 'why' question.
2. Pose that question to the user, verbatim.
3. Call the tool again with the problem_statement AND the full list of
   previous_whys (every question/answer pair so far, in order). You own
   the history; the tool only computes the next step.
4. Repeat until the tool returns a conclusion prompt (after five answers).

**Ground rules:**
- Don't answer the 'why' questions yourself; the user's knowledge of
  their process is the input
- If an answer is vague, ask the user to be more specific before
  continuing — the tool rejects empty answers
- When concluded, confirm the root cause with the user, then offer to
  record follow-ups with add_action_item and to run
  suggest_improvement_actions with the analysis summary`, problem)

			return createPromptResult("5-Whys walkthrough", content), nil
		},
	}
}

// spcReviewPrompt creates the "spc_review" prompt definition
func (r *Registry) spcReviewPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "spc_review",
			Title:       "SPC Review",
			Description: "Review process stability with control charts and anomaly detection",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "metric_name",
					Description: "Name of the measured metric (e.g. 'daily defect count')",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			metricName := getStringArg(req.Params.Arguments, "metric_name", "the measured metric")

			content := fmt.Sprintf(`Let's review process stability for %s.

**Step 1: Get the series**
- Ask the user for the time-ordered measurements, or read a file column
  with read_csv_data / read_excel_data using extract "series"

**Step 2: Compute control limits**
- Run: calculate_spc_metrics (default 3-sigma unless the user wants a
  tighter band)

**Step 3: Find out-of-control points**
- Run: identify_out_of_control_points with the limits from step 2

**Step 4: Cross-check with anomaly detection**
- Run: detect_simple_anomalies on the same series; the rolling window
  catches local shifts the global control limits can miss

**Step 5: Act on the findings**
- Run: suggest_improvement_actions with the out-of-control points
  (include metric_name "%s" for context)
- For recurring issues, offer a 5-Whys analysis via
  guide_root_cause_analysis

Remember: points exactly on a control limit are in control; only strict
violations are flagged.`, metricName, metricName)

			return createPromptResult("SPC review workflow", content), nil
		},
	}
}
