package analysis

import (
	"math"
	"sort"
	"time"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// DefaultMaintenanceEventType marks the completion of maintenance on an item
const DefaultMaintenanceEventType = "maintenance_completed"

// Event is one entry in an equipment event log
type Event struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	ItemID    string `json:"item_id"`
}

// timestampLayouts are tried in order when parsing event timestamps
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeToFailureSummary aggregates the elapsed hours between a maintenance
// completion and the first subsequent failure of a given type on an item.
type TimeToFailureSummary struct {
	AverageHours float64   `json:"average_hours"`
	Count        int       `json:"count"`
	AllHours     []float64 `json:"all_hours"`
}

// FailurePatterns is the output of IdentifyFailurePatterns. Keys are
// "item_id::event_type" pairs.
type FailurePatterns struct {
	FailureTypeCounts    map[string]int                  `json:"failure_type_counts"`
	TimeToFailureSummary map[string]TimeToFailureSummary `json:"time_to_failure_summary"`
	Notes                []string                        `json:"notes,omitempty"`
}

// PatternKey builds the composite map key for an (item, event type) pair
func PatternKey(itemID, eventType string) string {
	return itemID + "::" + eventType
}

// IdentifyFailurePatterns counts failure events per (item, type) and
// measures hours from each maintenance completion to the first failure
// that follows it. The recorded maintenance time for an item is cleared
// once a failure has been attributed to it, so later failures after the
// same maintenance event carry no time-to-failure — the metric is
// deliberately time-to-first-failure. A new maintenance event overwrites
// any prior timestamp for the item. The run is summarised under the
// "failure_pattern_runs" topic.
func IdentifyFailurePatterns(st *session.State, events []Event, maintenanceEventType string) (*FailurePatterns, error) {
	if len(events) == 0 {
		return nil, mcperrors.NewInvalidInput("Event data must be a non-empty list of events.")
	}
	if maintenanceEventType == "" {
		maintenanceEventType = DefaultMaintenanceEventType
	}

	type parsedEvent struct {
		at        time.Time
		eventType string
		itemID    string
	}

	parsed := make([]parsedEvent, 0, len(events))
	for i, e := range events {
		if e.Timestamp == "" || e.EventType == "" || e.ItemID == "" {
			return nil, mcperrors.NewInvalidInputf(
				"Event at position %d must have 'timestamp', 'event_type', and 'item_id'.", i)
		}
		at, err := parseTimestamp(e.Timestamp)
		if err != nil {
			return nil, mcperrors.NewParseErrorf(
				"Could not parse timestamp %q for event at position %d.", e.Timestamp, i)
		}
		parsed = append(parsed, parsedEvent{at: at, eventType: e.EventType, itemID: e.ItemID})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		if parsed[i].itemID != parsed[j].itemID {
			return parsed[i].itemID < parsed[j].itemID
		}
		return parsed[i].at.Before(parsed[j].at)
	})

	counts := map[string]int{}
	hoursByKey := map[string][]float64{}
	lastMaintenance := map[string]time.Time{}

	for _, e := range parsed {
		if e.eventType == maintenanceEventType {
			lastMaintenance[e.itemID] = e.at
			continue
		}

		key := PatternKey(e.itemID, e.eventType)
		counts[key]++

		if maintAt, ok := lastMaintenance[e.itemID]; ok {
			hours := roundHours(e.at.Sub(maintAt).Hours())
			hoursByKey[key] = append(hoursByKey[key], hours)
			delete(lastMaintenance, e.itemID)
		}
	}

	summary := make(map[string]TimeToFailureSummary, len(hoursByKey))
	for key, hours := range hoursByKey {
		total := 0.0
		for _, h := range hours {
			total += h
		}
		summary[key] = TimeToFailureSummary{
			AverageHours: roundHours(total / float64(len(hours))),
			Count:        len(hours),
			AllHours:     hours,
		}
	}

	result := &FailurePatterns{
		FailureTypeCounts:    counts,
		TimeToFailureSummary: summary,
	}
	if len(counts) == 0 && len(summary) == 0 {
		result.Notes = []string{
			"No failure events found in the provided data.",
			"All events matched the maintenance event type '" + maintenanceEventType + "'.",
		}
	}

	st.Append(TopicFailureRuns, session.Record{
		"events_processed":       len(parsed),
		"maintenance_event_type": maintenanceEventType,
		"failure_key_count":      len(counts),
		"time_to_failure_keys":   len(summary),
	})

	return result, nil
}

func parseTimestamp(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		at, err := time.Parse(layout, value)
		if err == nil {
			return at, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
