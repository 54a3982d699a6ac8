// Package normality implements the D'Agostino-Pearson omnibus test and
// the threshold rule that classifies a group of values as normal or not
package normality

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultThreshold is the significance level below which a group is
	// considered not normally distributed
	DefaultThreshold = 1e-3
	// MinSamples is the smallest group the skewness test is defined for
	MinSamples = 8
)

// ErrInsufficientData is matched by InsufficientDataError via errors.Is
var ErrInsufficientData = errors.New("insufficient data for normality test")

// InsufficientDataError reports a group too small to be tested
type InsufficientDataError struct {
	N   int
	Min int
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("normality test needs at least %d samples, got %d", e.Min, e.N)
}

// Is reports whether target is ErrInsufficientData
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Result holds the outcome of a normality test
type Result struct {
	N         int     `json:"n" yaml:"n"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	SkewZ     float64 `json:"skew_z" yaml:"skew_z"`
	KurtosisZ float64 `json:"kurtosis_z" yaml:"kurtosis_z"`
	// Degenerate is set when every value is identical; such a group
	// cannot come from a normal distribution.
	Degenerate bool `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
	IsNormal   bool `json:"is_normal" yaml:"is_normal"`
}

var chiSquared2 = distuv.ChiSquared{K: 2}

// Test runs the D'Agostino-Pearson K² test on values. The statistic is
// the sum of the squared z-scores of the sample skewness and kurtosis and
// the p-value is its chi-squared (2 d.o.f.) survival probability.
// IsNormal is left unset; see Classifier.
func Test(values []float64) (Result, error) {
	n := len(values)
	if n < MinSamples {
		return Result{N: n}, &InsufficientDataError{N: n, Min: MinSamples}
	}

	m2 := stat.Moment(2, values, nil)
	if m2 == 0 || math.IsNaN(m2) {
		return Result{
			N:          n,
			Statistic:  math.Inf(1),
			PValue:     0,
			Degenerate: true,
		}, nil
	}
	m3 := stat.Moment(3, values, nil)
	m4 := stat.Moment(4, values, nil)

	skew := m3 / math.Pow(m2, 1.5)
	kurtosis := m4 / (m2 * m2)

	zs := skewZ(skew, n)
	zk := kurtosisZ(kurtosis, n)
	k2 := zs*zs + zk*zk

	return Result{
		N:         n,
		Statistic: k2,
		PValue:    chiSquared2.Survival(k2),
		SkewZ:     zs,
		KurtosisZ: zk,
	}, nil
}

// skewZ transforms the sample skewness into an approximately standard
// normal score (D'Agostino 1970)
func skewZ(b1 float64, n int) float64 {
	nf := float64(n)
	y := b1 * math.Sqrt((nf+1)*(nf+3)/(6*(nf-2)))
	beta2 := 3 * (nf*nf + 27*nf - 70) * (nf + 1) * (nf + 3) /
		((nf - 2) * (nf + 5) * (nf + 7) * (nf + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisZ transforms the sample kurtosis into an approximately standard
// normal score (Anscombe & Glynn 1983)
func kurtosisZ(b2 float64, n int) float64 {
	nf := float64(n)
	mean := 3 * (nf - 1) / (nf + 1)
	variance := 24 * nf * (nf - 2) * (nf - 3) /
		((nf + 1) * (nf + 1) * (nf + 3) * (nf + 5))
	x := (b2 - mean) / math.Sqrt(variance)

	sqrtBeta1 := 6 * (nf*nf - 5*nf + 2) / ((nf + 7) * (nf + 9)) *
		math.Sqrt(6*(nf+3)*(nf+5)/(nf*(nf-2)*(nf-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))

	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

// Classifier applies the p-value threshold to test results
type Classifier struct {
	Threshold  float64
	MinSamples int
}

// NewClassifier returns a classifier with the given threshold. A
// non-positive threshold falls back to DefaultThreshold and minSamples
// is raised to MinSamples when lower.
func NewClassifier(threshold float64, minSamples int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		Threshold:  threshold,
		MinSamples: max(minSamples, MinSamples),
	}
}

// Classify tests values and marks the result normal when its p-value is
// at least the threshold. values is not modified.
func (c *Classifier) Classify(values []float64) (Result, error) {
	if len(values) < c.MinSamples {
		return Result{N: len(values)}, &InsufficientDataError{N: len(values), Min: c.MinSamples}
	}

	res, err := Test(values)
	if err != nil {
		return res, err
	}
	res.IsNormal = res.PValue >= c.Threshold
	return res, nil
}
