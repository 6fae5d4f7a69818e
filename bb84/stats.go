package bb84

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidence is the confidence level of the intervals in a Summary.
var DefaultConfidence = 0.95

// An Interval is a point estimate of a proportion with a confidence interval
// around it.
type Interval struct {
	Estimate float64
	Lo, Hi   float64
}

// A Summary condenses a harness run into rates with Wilson score intervals.
type Summary struct {
	// DetectionRate is P(detected | eavesdropping).
	DetectionRate Interval
	// FalseAlarmRate is P(detected | no eavesdropping).
	FalseAlarmRate Interval
	// Accuracy is the proportion of trials whose verdict matched the truth.
	Accuracy Interval

	// MeanRatio and MeanQBER average over eavesdropped trials only; they are
	// NaN if there were none.
	MeanRatio float64
	MeanQBER  float64
}

// Summary computes detection statistics from the table alone.
func (t Table) Summary() Summary {
	enabled := t.EnabledDetected + t.EnabledUndetected
	disabled := t.DisabledDetected + t.DisabledUndetected
	return Summary{
		DetectionRate:  wilson(t.EnabledDetected, enabled, DefaultConfidence),
		FalseAlarmRate: wilson(t.DisabledDetected, disabled, DefaultConfidence),
		Accuracy:       wilson(t.EnabledDetected+t.DisabledUndetected, t.Total(), DefaultConfidence),
		MeanRatio:      math.NaN(),
		MeanQBER:       math.NaN(),
	}
}

// Summary computes detection statistics, including mean ratio and QBER of the
// eavesdropped trials.
func (r Results) Summary() Summary {
	s := r.Table.Summary()
	var ratios, qbers []float64
	for _, tr := range r.Trials {
		if !tr.Eavesdropping {
			continue
		}
		ratios = append(ratios, tr.EavesdroppingRatio)
		qbers = append(qbers, tr.QBER)
	}
	if len(ratios) > 0 {
		s.MeanRatio = stat.Mean(ratios, nil)
		s.MeanQBER = stat.Mean(qbers, nil)
	}
	return s
}

// wilson returns the Wilson score interval for k successes out of n at the
// given confidence. With no observations the interval spans [0, 1].
func wilson(k, n int, confidence float64) Interval {
	if n == 0 {
		return Interval{Lo: 0, Hi: 1}
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	p := float64(k) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return Interval{
		Estimate: p,
		// Rounding can push the bounds past the estimate at k == 0 or k == n.
		Lo: math.Min(p, math.Max(0, center-half)),
		Hi: math.Max(p, math.Min(1, center+half)),
	}
}
