package analysis

import (
	"fmt"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// Default anomaly-detection parameters
const (
	DefaultAnomalyWindowSize      = 5
	DefaultAnomalyStdDevThreshold = 2.0
)

// AnomalyParams configures DetectSimpleAnomalies. Zero WindowSize and
// StdDevThreshold select the defaults; nil absolute thresholds disable the
// corresponding rule.
type AnomalyParams struct {
	WindowSize             int      `json:"window_size"`
	StdDevThreshold        float64  `json:"std_dev_threshold"`
	AbsoluteUpperThreshold *float64 `json:"absolute_upper_threshold,omitempty"`
	AbsoluteLowerThreshold *float64 `json:"absolute_lower_threshold,omitempty"`
}

// Anomaly is one flagged data point. A point breaching both an absolute
// threshold and a rolling bound carries a reason for each rule.
type Anomaly struct {
	Index   int      `json:"index"`
	Value   float64  `json:"value"`
	Reasons []string `json:"reasons"`
}

// DetectSimpleAnomalies scans a series for absolute-threshold breaches and
// for deviations beyond threshold·std around a centered rolling mean.
// Positions near the edges, where the full window does not fit, are
// evaluated only against the absolute thresholds. The run (parameters and
// anomaly count) is recorded under the "anomaly_detection_runs" topic.
func DetectSimpleAnomalies(st *session.State, dataPoints []float64, params AnomalyParams) ([]Anomaly, AnomalyParams, error) {
	if params.WindowSize == 0 {
		params.WindowSize = DefaultAnomalyWindowSize
	}
	if params.StdDevThreshold == 0 {
		params.StdDevThreshold = DefaultAnomalyStdDevThreshold
	}

	if params.WindowSize < 2 {
		return nil, params, mcperrors.NewInvalidInput("Window size must be an integer of at least 2.")
	}
	if params.StdDevThreshold <= 0 {
		return nil, params, mcperrors.NewInvalidInput("Standard deviation threshold must be a positive number.")
	}
	if len(dataPoints) < params.WindowSize {
		return nil, params, mcperrors.NewInvalidInputf(
			"At least %d data points are required for window size %d.", params.WindowSize, params.WindowSize)
	}
	if params.AbsoluteUpperThreshold != nil && params.AbsoluteLowerThreshold != nil &&
		*params.AbsoluteLowerThreshold >= *params.AbsoluteUpperThreshold {
		return nil, params, mcperrors.NewInvalidInput("Absolute lower threshold must be below the absolute upper threshold.")
	}

	anomalies := []Anomaly{}
	w := params.WindowSize
	left := w / 2

	for i, v := range dataPoints {
		var reasons []string

		if params.AbsoluteUpperThreshold != nil && v > *params.AbsoluteUpperThreshold {
			reasons = append(reasons, fmt.Sprintf(
				"Value %.2f exceeds absolute upper threshold %.2f", v, *params.AbsoluteUpperThreshold))
		}
		if params.AbsoluteLowerThreshold != nil && v < *params.AbsoluteLowerThreshold {
			reasons = append(reasons, fmt.Sprintf(
				"Value %.2f falls below absolute lower threshold %.2f", v, *params.AbsoluteLowerThreshold))
		}

		start := i - left
		if start >= 0 && start+w <= len(dataPoints) {
			window := dataPoints[start : start+w]
			mean := meanOf(window)
			std := populationStdDev(window, mean)
			upper := mean + params.StdDevThreshold*std
			lower := mean - params.StdDevThreshold*std

			if v > upper {
				reasons = append(reasons, fmt.Sprintf(
					"Value %.2f exceeds rolling upper bound %.2f (mean %.2f, std dev %.2f)", v, upper, mean, std))
			} else if v < lower {
				reasons = append(reasons, fmt.Sprintf(
					"Value %.2f falls below rolling lower bound %.2f (mean %.2f, std dev %.2f)", v, lower, mean, std))
			}
		}

		if len(reasons) > 0 {
			anomalies = append(anomalies, Anomaly{Index: i, Value: v, Reasons: reasons})
		}
	}

	st.Append(TopicAnomalyRuns, session.Record{
		"window_size":       params.WindowSize,
		"std_dev_threshold": params.StdDevThreshold,
		"absolute_upper":    floatOrNil(params.AbsoluteUpperThreshold),
		"absolute_lower":    floatOrNil(params.AbsoluteLowerThreshold),
		"points_scanned":    len(dataPoints),
		"anomaly_count":     len(anomalies),
	})

	return anomalies, params, nil
}

func floatOrNil(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
