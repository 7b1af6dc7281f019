package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodsight/yield-mcp-server/internal/session"
)

func TestCalculateYieldMetrics(t *testing.T) {
	st := session.New()

	metrics, err := CalculateYieldMetrics(st, 100, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.9, metrics.YieldRate, 1e-9)
	assert.InDelta(t, 0.1, metrics.DefectRate, 1e-9)
	assert.InDelta(t, 1.0, metrics.YieldRate+metrics.DefectRate, 1e-9)

	records := st.Records(TopicCalculations)
	require.Len(t, records, 1)
	assert.Equal(t, 100, records[0]["total_units"])
	assert.Equal(t, 10, records[0]["defective_units"])
}

func TestCalculateYieldMetrics_ZeroDefects(t *testing.T) {
	st := session.New()

	metrics, err := CalculateYieldMetrics(st, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics.YieldRate)
	assert.Equal(t, 0.0, metrics.DefectRate)
}

func TestCalculateYieldMetrics_AllDefective(t *testing.T) {
	st := session.New()

	metrics, err := CalculateYieldMetrics(st, 25, 25)
	require.NoError(t, err)
	assert.Equal(t, 0.0, metrics.YieldRate)
	assert.Equal(t, 1.0, metrics.DefectRate)
}

func TestCalculateYieldMetrics_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		defective int
		wantMsg   string
	}{
		{"zero total", 0, 0, "Total units must be a positive number."},
		{"negative total", -5, 0, "Total units must be a positive number."},
		{"negative defective", 100, -1, "Defective units cannot be negative."},
		{"defective exceeds total", 10, 11, "Defective units cannot exceed total units."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := session.New()
			_, err := CalculateYieldMetrics(st, tt.total, tt.defective)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, st.Records(TopicCalculations), "failed calls must not be recorded")
		})
	}
}

func TestIdentifyLowYieldStages(t *testing.T) {
	st := session.New()
	stages := []ProductionStage{
		{StageName: "Assembly", InputUnits: 100, OutputUnits: 85},
		{StageName: "Soldering", InputUnits: 85, OutputUnits: 84},
		{StageName: "Inspection", InputUnits: 84, OutputUnits: 80},
	}

	lowYield, err := IdentifyLowYieldStages(st, stages, 0.90)
	require.NoError(t, err)

	// Assembly 0.85 is below 0.90; Soldering ~0.988 and Inspection ~0.952 are not
	require.Len(t, lowYield, 1)
	assert.Equal(t, "Assembly", lowYield[0].StageName)
	assert.InDelta(t, 0.85, lowYield[0].Yield, 1e-9)

	records := st.Records(TopicLowYieldAnalysis)
	require.Len(t, records, 1)
	assert.Equal(t, 0.90, records[0]["yield_threshold"])
}

func TestIdentifyLowYieldStages_ThresholdBoundary(t *testing.T) {
	st := session.New()
	stages := []ProductionStage{
		{StageName: "Assembly", InputUnits: 100, OutputUnits: 85},
	}

	// A stage exactly at the threshold is not low-yield
	lowYield, err := IdentifyLowYieldStages(st, stages, 0.85)
	require.NoError(t, err)
	assert.Empty(t, lowYield)

	// Just above the stage's yield it is
	lowYield, err = IdentifyLowYieldStages(st, stages, 0.86)
	require.NoError(t, err)
	assert.Len(t, lowYield, 1)
}

func TestIdentifyLowYieldStages_PreservesInputOrder(t *testing.T) {
	st := session.New()
	stages := []ProductionStage{
		{StageName: "C", InputUnits: 100, OutputUnits: 10},
		{StageName: "A", InputUnits: 100, OutputUnits: 20},
		{StageName: "B", InputUnits: 100, OutputUnits: 30},
	}

	lowYield, err := IdentifyLowYieldStages(st, stages, 0.95)
	require.NoError(t, err)
	require.Len(t, lowYield, 3)
	assert.Equal(t, "C", lowYield[0].StageName)
	assert.Equal(t, "A", lowYield[1].StageName)
	assert.Equal(t, "B", lowYield[2].StageName)
}

func TestIdentifyLowYieldStages_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		stages    []ProductionStage
		threshold float64
	}{
		{"empty stages", nil, 0.9},
		{"threshold zero", []ProductionStage{{StageName: "A", InputUnits: 10, OutputUnits: 9}}, 0},
		{"threshold above one", []ProductionStage{{StageName: "A", InputUnits: 10, OutputUnits: 9}}, 1.1},
		{"zero input units", []ProductionStage{{StageName: "A", InputUnits: 0, OutputUnits: 0}}, 0.9},
		{"output exceeds input", []ProductionStage{{StageName: "A", InputUnits: 10, OutputUnits: 11}}, 0.9},
		{"empty stage name", []ProductionStage{{StageName: "", InputUnits: 10, OutputUnits: 9}}, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := session.New()
			_, err := IdentifyLowYieldStages(st, tt.stages, tt.threshold)
			assert.Error(t, err)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "85.0%", FormatPercent(0.85))
	assert.Equal(t, "100.0%", FormatPercent(1))
	assert.Equal(t, "12.5%", FormatPercent(0.125))
}
