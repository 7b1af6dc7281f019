// Package analysis implements the session-scoped manufacturing analysis
// toolkit: yield metrics, SPC limits, anomaly detection, failure-pattern
// mining, guided 5-Whys, the action-item ledger, and suggestion synthesis.
// Every operation validates its input, computes a result, and records it
// under a named topic in the session state store. A failing operation
// records nothing.
package analysis

import (
	"fmt"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// Session state topics written by this package
const (
	TopicCalculations     = "calculations"
	TopicLowYieldAnalysis = "low_yield_analysis"
	TopicSPCAnalysis      = "spc_analysis"
	TopicSPCOOCChecks     = "spc_ooc_checks"
	TopicAnomalyRuns      = "anomaly_detection_runs"
	TopicFailureRuns      = "failure_pattern_runs"
	TopicRCASessions      = "rca_sessions"
	TopicActionItems      = "action_items"
	TopicSuggestions      = "improvement_suggestions"
)

// YieldMetrics reports the yield and defect rates for a production run.
// yield_rate + defect_rate is always 1 within floating tolerance.
type YieldMetrics struct {
	TotalUnits     int     `json:"total_units"`
	DefectiveUnits int     `json:"defective_units"`
	YieldRate      float64 `json:"yield_rate"`
	DefectRate     float64 `json:"defect_rate"`
}

// CalculateYieldMetrics computes yield and defect rates from production
// counts and records the calculation under the "calculations" topic.
func CalculateYieldMetrics(st *session.State, totalUnits, defectiveUnits int) (*YieldMetrics, error) {
	if totalUnits <= 0 {
		return nil, mcperrors.NewInvalidInput("Total units must be a positive number.")
	}
	if defectiveUnits < 0 {
		return nil, mcperrors.NewInvalidInput("Defective units cannot be negative.")
	}
	if defectiveUnits > totalUnits {
		return nil, mcperrors.NewInvalidInput("Defective units cannot exceed total units.")
	}

	m := &YieldMetrics{
		TotalUnits:     totalUnits,
		DefectiveUnits: defectiveUnits,
		YieldRate:      float64(totalUnits-defectiveUnits) / float64(totalUnits),
		DefectRate:     float64(defectiveUnits) / float64(totalUnits),
	}

	st.Append(TopicCalculations, session.Record{
		"total_units":     m.TotalUnits,
		"defective_units": m.DefectiveUnits,
		"yield_rate":      m.YieldRate,
		"defect_rate":     m.DefectRate,
	})

	return m, nil
}

// ProductionStage is one stage of a production line with its unit counts
type ProductionStage struct {
	StageName   string `json:"stage_name"`
	InputUnits  int    `json:"input_units"`
	OutputUnits int    `json:"output_units"`
}

// StageYield annotates a stage with its computed yield
type StageYield struct {
	StageName   string  `json:"stage_name"`
	Yield       float64 `json:"yield"`
	InputUnits  int     `json:"input_units"`
	OutputUnits int     `json:"output_units"`
}

// IdentifyLowYieldStages returns the stages whose yield falls below the
// threshold, preserving input order. The result (possibly empty) is
// recorded under the "low_yield_analysis" topic.
func IdentifyLowYieldStages(st *session.State, stages []ProductionStage, yieldThreshold float64) ([]StageYield, error) {
	if len(stages) == 0 {
		return nil, mcperrors.NewInvalidInput("Production data must be a non-empty list of stages.")
	}
	if !(yieldThreshold > 0 && yieldThreshold <= 1) {
		return nil, mcperrors.NewInvalidInput("Yield threshold must be between 0 (exclusive) and 1 (inclusive).")
	}

	lowYield := []StageYield{}
	for _, stage := range stages {
		if stage.StageName == "" {
			return nil, mcperrors.NewInvalidInput("Each stage must have a non-empty stage name.")
		}
		if stage.InputUnits <= 0 {
			return nil, mcperrors.NewInvalidInputf("Input units for stage %s must be positive.", stage.StageName)
		}
		if stage.OutputUnits < 0 {
			return nil, mcperrors.NewInvalidInputf("Output units for stage %s cannot be negative.", stage.StageName)
		}
		if stage.OutputUnits > stage.InputUnits {
			return nil, mcperrors.NewInvalidInputf("Output units cannot exceed input units for stage %s.", stage.StageName)
		}

		stageYield := float64(stage.OutputUnits) / float64(stage.InputUnits)
		if stageYield < yieldThreshold {
			lowYield = append(lowYield, StageYield{
				StageName:   stage.StageName,
				Yield:       stageYield,
				InputUnits:  stage.InputUnits,
				OutputUnits: stage.OutputUnits,
			})
		}
	}

	identified := make([]interface{}, len(lowYield))
	for i, s := range lowYield {
		identified[i] = session.Record{
			"stage_name":   s.StageName,
			"yield":        s.Yield,
			"input_units":  s.InputUnits,
			"output_units": s.OutputUnits,
		}
	}
	st.Append(TopicLowYieldAnalysis, session.Record{
		"yield_threshold":             yieldThreshold,
		"identified_low_yield_stages": identified,
	})

	return lowYield, nil
}

// FormatPercent renders a rate in [0,1] as a percentage with one decimal,
// e.g. 0.85 -> "85.0%".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
