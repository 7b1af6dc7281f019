package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodsight/yield-mcp-server/internal/session"
)

func TestIdentifyFailurePatterns_TimeToFailure(t *testing.T) {
	st := session.New()
	events := []Event{
		{Timestamp: "2026-01-01T00:00:00Z", EventType: DefaultMaintenanceEventType, ItemID: "press-1"},
		{Timestamp: "2026-01-01T02:00:00Z", EventType: "motor_failure", ItemID: "press-1"},
	}

	patterns, err := IdentifyFailurePatterns(st, events, "")
	require.NoError(t, err)

	key := PatternKey("press-1", "motor_failure")
	assert.Equal(t, 1, patterns.FailureTypeCounts[key])

	summary, ok := patterns.TimeToFailureSummary[key]
	require.True(t, ok)
	assert.Equal(t, 2.0, summary.AverageHours)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, []float64{2.0}, summary.AllHours)

	require.Len(t, st.Records(TopicFailureRuns), 1)
}

func TestIdentifyFailurePatterns_OnlyFirstFailureAttributed(t *testing.T) {
	st := session.New()
	events := []Event{
		{Timestamp: "2026-01-01T00:00:00Z", EventType: DefaultMaintenanceEventType, ItemID: "press-1"},
		{Timestamp: "2026-01-01T01:00:00Z", EventType: "motor_failure", ItemID: "press-1"},
		{Timestamp: "2026-01-01T03:00:00Z", EventType: "motor_failure", ItemID: "press-1"},
	}

	patterns, err := IdentifyFailurePatterns(st, events, "")
	require.NoError(t, err)

	key := PatternKey("press-1", "motor_failure")
	assert.Equal(t, 2, patterns.FailureTypeCounts[key])

	// Only the first failure after maintenance carries a time-to-failure
	summary := patterns.TimeToFailureSummary[key]
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, []float64{1.0}, summary.AllHours)
}

func TestIdentifyFailurePatterns_UnorderedInputAndMultipleItems(t *testing.T) {
	st := session.New()
	events := []Event{
		{Timestamp: "2026-01-02 06:30:00", EventType: "belt_failure", ItemID: "line-2"},
		{Timestamp: "2026-01-01T00:00:00Z", EventType: DefaultMaintenanceEventType, ItemID: "line-2"},
		{Timestamp: "2026-01-01T12:00:00Z", EventType: "jam", ItemID: "line-1"},
	}

	patterns, err := IdentifyFailurePatterns(st, events, "")
	require.NoError(t, err)

	assert.Equal(t, 1, patterns.FailureTypeCounts[PatternKey("line-1", "jam")])

	// Events are sorted per item before attribution: 30.5h from maintenance
	summary := patterns.TimeToFailureSummary[PatternKey("line-2", "belt_failure")]
	assert.Equal(t, 30.5, summary.AverageHours)

	// line-1 has no maintenance event, so no time-to-failure
	_, ok := patterns.TimeToFailureSummary[PatternKey("line-1", "jam")]
	assert.False(t, ok)
}

func TestIdentifyFailurePatterns_CustomMaintenanceType(t *testing.T) {
	st := session.New()
	events := []Event{
		{Timestamp: "2026-01-01T00:00:00Z", EventType: "pm_done", ItemID: "oven-3"},
		{Timestamp: "2026-01-01T04:15:00Z", EventType: "heater_failure", ItemID: "oven-3"},
	}

	patterns, err := IdentifyFailurePatterns(st, events, "pm_done")
	require.NoError(t, err)

	summary := patterns.TimeToFailureSummary[PatternKey("oven-3", "heater_failure")]
	assert.Equal(t, 4.25, summary.AverageHours)
	// The custom type is not counted as a failure
	assert.NotContains(t, patterns.FailureTypeCounts, PatternKey("oven-3", "pm_done"))
}

func TestIdentifyFailurePatterns_AllMaintenanceNotes(t *testing.T) {
	st := session.New()
	events := []Event{
		{Timestamp: "2026-01-01T00:00:00Z", EventType: DefaultMaintenanceEventType, ItemID: "a"},
		{Timestamp: "2026-01-02T00:00:00Z", EventType: DefaultMaintenanceEventType, ItemID: "b"},
	}

	patterns, err := IdentifyFailurePatterns(st, events, "")
	require.NoError(t, err)

	assert.Empty(t, patterns.FailureTypeCounts)
	assert.NotEmpty(t, patterns.Notes)
}

func TestIdentifyFailurePatterns_Invalid(t *testing.T) {
	st := session.New()

	_, err := IdentifyFailurePatterns(st, nil, "")
	assert.Error(t, err, "empty event list")

	_, err = IdentifyFailurePatterns(st, []Event{
		{Timestamp: "2026-01-01T00:00:00Z", EventType: "failure", ItemID: ""},
	}, "")
	assert.Error(t, err, "missing item_id")

	_, err = IdentifyFailurePatterns(st, []Event{
		{Timestamp: "not-a-time", EventType: "failure", ItemID: "x"},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not parse timestamp")

	assert.Empty(t, st.Records(TopicFailureRuns))
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, value := range []string{
		"2026-01-01T10:30:00.5Z",
		"2026-01-01T10:30:00Z",
		"2026-01-01T10:30:00",
		"2026-01-01 10:30:00",
		"2026-01-01",
	} {
		_, err := parseTimestamp(value)
		assert.NoError(t, err, value)
	}

	_, err := parseTimestamp("01/02/2026")
	assert.Error(t, err)
}
