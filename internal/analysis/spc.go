package analysis

import (
	"math"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

// DefaultControlLimitSigma is the conventional 3-sigma control band
const DefaultControlLimitSigma = 3.0

// SPCResult holds the control-chart statistics for a series.
// LCL is clamped to zero when every input value is non-negative, since a
// negative limit is meaningless for counts and rates.
type SPCResult struct {
	Mean              float64 `json:"mean"`
	StdDev            float64 `json:"std_dev"`
	UpperControlLimit float64 `json:"upper_control_limit"`
	LowerControlLimit float64 `json:"lower_control_limit"`
	SigmaUsed         float64 `json:"sigma_used"`
	N                 int     `json:"n"`
}

// CalculateSPCMetrics computes the population mean, population standard
// deviation, and control limits at mean ± sigma·std for a series of at
// least two points. Pass sigma <= 0 is rejected; callers wanting the
// conventional band use DefaultControlLimitSigma. The result is recorded
// under the "spc_analysis" topic.
func CalculateSPCMetrics(st *session.State, dataPoints []float64, controlLimitSigma float64) (*SPCResult, error) {
	if len(dataPoints) < 2 {
		return nil, mcperrors.NewInvalidInput("At least two data points are required for SPC analysis.")
	}
	if controlLimitSigma <= 0 {
		return nil, mcperrors.NewInvalidInput("Control limit sigma must be a positive number.")
	}

	mean := meanOf(dataPoints)
	std := populationStdDev(dataPoints, mean)

	ucl := mean + controlLimitSigma*std
	lcl := mean - controlLimitSigma*std

	allNonNegative := true
	for _, v := range dataPoints {
		if v < 0 {
			allNonNegative = false
			break
		}
	}
	if allNonNegative {
		lcl = math.Max(lcl, 0)
	}

	result := &SPCResult{
		Mean:              mean,
		StdDev:            std,
		UpperControlLimit: ucl,
		LowerControlLimit: lcl,
		SigmaUsed:         controlLimitSigma,
		N:                 len(dataPoints),
	}

	st.Append(TopicSPCAnalysis, session.Record{
		"mean":                result.Mean,
		"std_dev":             result.StdDev,
		"upper_control_limit": result.UpperControlLimit,
		"lower_control_limit": result.LowerControlLimit,
		"sigma_used":          result.SigmaUsed,
		"n":                   result.N,
	})

	return result, nil
}

// OutOfControlPoint is a data point outside the control band
type OutOfControlPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// OutOfControlResult lists the flagged points and the limits used
type OutOfControlResult struct {
	Points            []OutOfControlPoint `json:"out_of_control_points"`
	UpperControlLimit float64             `json:"upper_control_limit"`
	LowerControlLimit float64             `json:"lower_control_limit"`
}

// IdentifyOutOfControlPoints flags every point strictly outside the
// [lcl, ucl] band, in input order, and records a summary under the
// "spc_ooc_checks" topic.
func IdentifyOutOfControlPoints(st *session.State, dataPoints []float64, ucl, lcl float64) (*OutOfControlResult, error) {
	if len(dataPoints) == 0 {
		return nil, mcperrors.NewInvalidInput("Data points must be a non-empty list of numbers.")
	}
	if lcl > ucl {
		return nil, mcperrors.NewInvalidInput("Lower control limit cannot exceed the upper control limit.")
	}

	points := []OutOfControlPoint{}
	for i, v := range dataPoints {
		if v > ucl || v < lcl {
			points = append(points, OutOfControlPoint{Index: i, Value: v})
		}
	}

	result := &OutOfControlResult{
		Points:            points,
		UpperControlLimit: ucl,
		LowerControlLimit: lcl,
	}

	flagged := make([]interface{}, len(points))
	for i, p := range points {
		flagged[i] = session.Record{"index": p.Index, "value": p.Value}
	}
	st.Append(TopicSPCOOCChecks, session.Record{
		"upper_control_limit":   ucl,
		"lower_control_limit":   lcl,
		"points_checked":        len(dataPoints),
		"out_of_control_points": flagged,
	})

	return result, nil
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1. Control limits describe the
// observed series itself, not an estimate of a larger population.
func populationStdDev(values []float64, mean float64) float64 {
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
