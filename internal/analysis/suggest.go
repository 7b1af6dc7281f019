package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prodsight/yield-mcp-server/internal/session"
)

// LowYieldStageInput is a low-yield stage reference supplied to the
// suggestion synthesizer, typically copied from IdentifyLowYieldStages
// output. Yield is optional; when present it is echoed as a percentage.
type LowYieldStageInput struct {
	StageName string   `json:"stage_name"`
	Yield     *float64 `json:"yield,omitempty"`
}

// OOCPointInput is an out-of-control point reference, typically copied
// from IdentifyOutOfControlPoints output. MetricName is optional context
// (e.g. "solder temperature").
type OOCPointInput struct {
	Index      int     `json:"index"`
	Value      float64 `json:"value"`
	MetricName string  `json:"metric_name,omitempty"`
}

var titleCaser = cases.Title(language.English)

// SuggestImprovementActions composes suggestion lines from whatever
// analysis outputs the orchestrator has collected. All inputs are
// optional; with no inputs at all it emits a single generic-review
// suggestion. The full input/output bundle is recorded under the
// "improvement_suggestions" topic.
func SuggestImprovementActions(
	st *session.State,
	lowYieldStages []LowYieldStageInput,
	commonDefectTypes []string,
	oocPoints []OOCPointInput,
	rcaSummary string,
) ([]string, error) {
	suggestions := []string{}

	for _, stage := range lowYieldStages {
		if stage.Yield != nil {
			suggestions = append(suggestions, fmt.Sprintf(
				"Investigate root causes for low yield at stage: %s (yield: %s).",
				stage.StageName, FormatPercent(*stage.Yield)))
		} else {
			suggestions = append(suggestions, fmt.Sprintf(
				"Investigate root causes for low yield at stage: %s.", stage.StageName))
		}
	}

	for _, defect := range commonDefectTypes {
		suggestions = append(suggestions, fmt.Sprintf(
			"Implement corrective actions for defect type: %s.", defect))
	}

	for _, p := range oocPoints {
		if p.MetricName != "" {
			suggestions = append(suggestions, fmt.Sprintf(
				"Review out-of-control point at index %d (value %.2f) on metric: %s.",
				p.Index, p.Value, titleCaser.String(p.MetricName)))
		} else {
			suggestions = append(suggestions, fmt.Sprintf(
				"Review out-of-control point at index %d (value %.2f).", p.Index, p.Value))
		}
	}
	if len(oocPoints) > 0 {
		suggestions = append(suggestions,
			"Investigate special causes of variation behind the out-of-control points and verify measurement equipment.")
	}

	if strings.TrimSpace(rcaSummary) != "" {
		suggestions = append(suggestions, fmt.Sprintf(
			"Follow up on the root cause analysis finding: %s", rcaSummary))
	}

	if len(lowYieldStages) == 0 && len(commonDefectTypes) == 0 && len(oocPoints) == 0 && strings.TrimSpace(rcaSummary) == "" {
		suggestions = append(suggestions,
			"No specific low-yield stages, defect types, SPC findings, or RCA results provided. "+
				"Consider a general process review for potential improvements.")
	}

	st.Append(TopicSuggestions, session.Record{
		"low_yield_stages_input":    toRecordSlice(lowYieldStages),
		"common_defect_types_input": commonDefectTypes,
		"spc_ooc_points_input":      toRecordSlice(oocPoints),
		"rca_summary_input":         rcaSummary,
		"suggestions_provided":      suggestions,
	})

	return suggestions, nil
}

func toRecordSlice[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
