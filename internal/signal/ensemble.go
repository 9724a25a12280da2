package signal

import (
	"fmt"
	"math"

	"github.com/phytolab/phyto.signal/internal/stats"
)

// EnsembleSize is the length of the fingerprint FeatureEnsemble produces
// per channel.
const EnsembleSize = 10

// FeatureEnsemble reduces each channel to a fixed statistical fingerprint:
// mean, mean absolute first difference, mean absolute second difference,
// variance of the signal and of its first and second differences, the two
// Hjorth parameters (mobility and complexity), skewness and excess
// kurtosis. This is the terminal feature map most pipelines apply after
// windowing.
type FeatureEnsemble struct{ stateless }

// NewFeatureEnsemble constructs the transform.
func NewFeatureEnsemble() *FeatureEnsemble { return &FeatureEnsemble{} }

func (t *FeatureEnsemble) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("feature-ensemble", t.extract, batch)
}

func (t *FeatureEnsemble) extract(s Sample) (Sample, error) {
	return perChannel(ensembleSeries, s)
}

// EnsembleInner returns an Inner reducing each slice to the ensemble
// fingerprint, for use inside Window and DecimateWindow.
func EnsembleInner() Inner { return InnerFunc(ensembleSeries) }

func ensembleSeries(x []float64) ([]float64, error) {
	if len(x) < 3 {
		return nil, fmt.Errorf("%w: %d points, second difference needs at least 3", ErrDegenerate, len(x))
	}
	diff1 := stats.Differential(x)
	diff2 := stats.Differential(diff1)

	m, err := stats.Mean(x)
	if err != nil {
		return nil, err
	}
	absDiff1, err := stats.MeanAbs(diff1)
	if err != nil {
		return nil, err
	}
	absDiff2, err := stats.MeanAbs(diff2)
	if err != nil {
		return nil, err
	}
	vari, err := stats.Variance(x)
	if err != nil {
		return nil, err
	}
	varDiff1, err := stats.Variance(diff1)
	if err != nil {
		return nil, err
	}
	varDiff2, err := stats.Variance(diff2)
	if err != nil {
		return nil, err
	}
	if vari == 0 || varDiff1 == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDegenerate, stats.ErrZeroVariance)
	}
	mobility := math.Sqrt(varDiff1 / vari)
	complexity := math.Sqrt(varDiff2/varDiff1) / mobility

	skew, err := stats.Skewness(x)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
	}
	kurt, err := stats.Kurtosis(x)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
	}

	return []float64{m, absDiff1, absDiff2, vari, varDiff1, varDiff2, mobility, complexity, skew, kurt}, nil
}
