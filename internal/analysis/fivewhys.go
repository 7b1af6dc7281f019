package analysis

import (
	"fmt"
	"strings"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// MaxWhyDepth is the number of "why" iterations before the analysis concludes
const MaxWhyDepth = 5

// WhyStep is one question/answer pair in a 5-Whys dialogue
type WhyStep struct {
	WhyQuestion string `json:"why_question"`
	UserAnswer  string `json:"user_answer"`
}

// RCAOutcome is the result of one 5-Whys transition. When Concluded is
// false, NextPrompt holds the question the orchestrator should pose and
// Depth the level that question belongs to. When Concluded is true,
// ConclusionPrompt asks the user to confirm a root cause.
type RCAOutcome struct {
	NextPrompt       string `json:"next_prompt_for_user,omitempty"`
	ConclusionPrompt string `json:"conclusion_prompt,omitempty"`
	AnalysisSummary  string `json:"analysis_summary"`
	Depth            int    `json:"depth"`
	Concluded        bool   `json:"concluded"`
}

// GuideRootCauseAnalysis computes the next step of a caller-driven 5-Whys
// dialogue. The orchestrator is the source of truth for history: it
// re-supplies the problem statement and all prior question/answer pairs on
// every call. A trace of each distinct step is recorded under the
// "rca_sessions" topic; replays of an identical step append nothing.
func GuideRootCauseAnalysis(st *session.State, problemStatement string, previousWhys []WhyStep) (*RCAOutcome, error) {
	if strings.TrimSpace(problemStatement) == "" {
		return nil, mcperrors.NewInvalidInput("A problem statement is required to start a root cause analysis.")
	}

	depth := len(previousWhys)
	if depth > 0 && strings.TrimSpace(previousWhys[depth-1].UserAnswer) == "" {
		return nil, mcperrors.NewInvalidInput(
			"The most recent answer is empty. Re-prompt the user for a specific cause before continuing.")
	}

	summary := renderAnalysisPath(problemStatement, previousWhys)

	var outcome *RCAOutcome
	if depth >= MaxWhyDepth {
		outcome = &RCAOutcome{
			ConclusionPrompt: fmt.Sprintf(
				"We have explored %d levels of 'why'. Based on this path, does the final answer look like the root cause? "+
					"If so, consider creating action items to address it.", MaxWhyDepth),
			AnalysisSummary: summary,
			Depth:           depth,
			Concluded:       true,
		}
	} else {
		var question string
		if depth == 0 {
			question = fmt.Sprintf("Why is '%s' happening?", problemStatement)
		} else {
			question = fmt.Sprintf("Why did '%s' occur?", previousWhys[depth-1].UserAnswer)
		}
		outcome = &RCAOutcome{
			NextPrompt:      question,
			AnalysisSummary: summary,
			Depth:           depth + 1,
			Concluded:       false,
		}
	}

	st.AppendUnique(TopicRCASessions, session.Record{
		"problem": problemStatement,
		"path":    summary,
		"depth":   depth,
	})

	return outcome, nil
}

// renderAnalysisPath renders the problem line followed by each numbered
// question/answer pair.
func renderAnalysisPath(problemStatement string, whys []WhyStep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s", problemStatement)
	for i, step := range whys {
		fmt.Fprintf(&b, "\n%d. Q: %s\n   A: %s", i+1, step.WhyQuestion, step.UserAnswer)
	}
	return b.String()
}
