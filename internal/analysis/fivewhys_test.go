package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodsight/yield-mcp-server/internal/session"
)

func TestGuideRootCauseAnalysis_FirstStep(t *testing.T) {
	st := session.New()

	outcome, err := GuideRootCauseAnalysis(st, "High defect rate on line 2", nil)
	require.NoError(t, err)

	assert.False(t, outcome.Concluded)
	assert.Equal(t, 1, outcome.Depth)
	assert.Equal(t, "Why is 'High defect rate on line 2' happening?", outcome.NextPrompt)
	assert.Equal(t, "Problem: High defect rate on line 2", outcome.AnalysisSummary)

	require.Len(t, st.Records(TopicRCASessions), 1)
}

func TestGuideRootCauseAnalysis_SubsequentStep(t *testing.T) {
	st := session.New()
	whys := []WhyStep{
		{WhyQuestion: "Why is 'High defect rate' happening?", UserAnswer: "Solder paste is inconsistent"},
	}

	outcome, err := GuideRootCauseAnalysis(st, "High defect rate", whys)
	require.NoError(t, err)

	assert.False(t, outcome.Concluded)
	assert.Equal(t, 2, outcome.Depth)
	assert.Equal(t, "Why did 'Solder paste is inconsistent' occur?", outcome.NextPrompt)
	assert.Contains(t, outcome.AnalysisSummary, "1. Q: Why is 'High defect rate' happening?")
	assert.Contains(t, outcome.AnalysisSummary, "A: Solder paste is inconsistent")
}

func TestGuideRootCauseAnalysis_ConcludesAtMaxDepth(t *testing.T) {
	st := session.New()

	whys := make([]WhyStep, MaxWhyDepth)
	for i := range whys {
		whys[i] = WhyStep{
			WhyQuestion: fmt.Sprintf("Why %d?", i+1),
			UserAnswer:  fmt.Sprintf("Because of cause %d", i+1),
		}
	}

	outcome, err := GuideRootCauseAnalysis(st, "Recurring jam", whys)
	require.NoError(t, err)

	assert.True(t, outcome.Concluded)
	assert.Empty(t, outcome.NextPrompt)
	assert.NotEmpty(t, outcome.ConclusionPrompt)
	assert.Equal(t, MaxWhyDepth, outcome.Depth)
}

func TestGuideRootCauseAnalysis_ReplayIsIdempotent(t *testing.T) {
	st := session.New()

	_, err := GuideRootCauseAnalysis(st, "Problem", nil)
	require.NoError(t, err)
	_, err = GuideRootCauseAnalysis(st, "Problem", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Count(TopicRCASessions), "identical replays append nothing")
}

func TestGuideRootCauseAnalysis_Invalid(t *testing.T) {
	st := session.New()

	_, err := GuideRootCauseAnalysis(st, "  ", nil)
	assert.Error(t, err, "blank problem statement")

	_, err = GuideRootCauseAnalysis(st, "Problem", []WhyStep{
		{WhyQuestion: "Why?", UserAnswer: "   "},
	})
	assert.Error(t, err, "blank latest answer")
}
