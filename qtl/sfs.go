package qtl

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrequencyDistribution is a discrete distribution over allele frequencies.
// Draws search the cumulative weights, so a fixed stream always maps to the
// same sequence of frequencies.
type FrequencyDistribution struct {
	frequencies []float64
	weights     []float64
	cumsum      []float64
	totalWeight float64
}

func NewFrequencyDistribution(frequencies, weights []float64) (*FrequencyDistribution, error) {
	if len(frequencies) == 0 {
		return nil, ErrEmptyDistribution
	}
	if len(frequencies) != len(weights) {
		return nil, fmt.Errorf("%w: %d frequencies, %d weights", ErrLengthMismatch, len(frequencies), len(weights))
	}
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight[%d] = %v", ErrInvalidWeight, i, w)
		}
	}

	dist := &FrequencyDistribution{
		frequencies: append([]float64(nil), frequencies...),
		weights:     append([]float64(nil), weights...),
	}
	dist.cumsum = floats.CumSum(make([]float64, len(weights)), dist.weights)
	dist.totalWeight = dist.cumsum[len(dist.cumsum)-1]
	return dist, nil
}

// NewNeutralFrequencyDistribution returns the neutral site frequency spectrum
// for n samples: frequencies i/n with weight 1/i, i = 1..n-1.
func NewNeutralFrequencyDistribution(sampleCount int) (*FrequencyDistribution, error) {
	return newSampleGrid(sampleCount, func(i float64) float64 { return 1 / i })
}

// NewUniformFrequencyDistribution uses the neutral grid with equal weights.
func NewUniformFrequencyDistribution(sampleCount int) (*FrequencyDistribution, error) {
	return newSampleGrid(sampleCount, func(float64) float64 { return 1 })
}

func newSampleGrid(sampleCount int, weight func(i float64) float64) (*FrequencyDistribution, error) {
	if sampleCount < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrSampleCount, sampleCount)
	}
	frequencies := make([]float64, sampleCount-1)
	weights := make([]float64, sampleCount-1)
	for k := range frequencies {
		i := float64(k + 1)
		frequencies[k] = i / float64(sampleCount)
		weights[k] = weight(i)
	}
	return NewFrequencyDistribution(frequencies, weights)
}

func (dist *FrequencyDistribution) Len() int {
	return len(dist.frequencies)
}

func (dist *FrequencyDistribution) Frequencies() []float64 {
	return append([]float64(nil), dist.frequencies...)
}

func (dist *FrequencyDistribution) Weights() []float64 {
	return append([]float64(nil), dist.weights...)
}

func (dist *FrequencyDistribution) TotalWeight() float64 {
	return dist.totalWeight
}

// RandomFrequency draws roll in [0, total weight) and returns the frequency
// at the first cumulative weight strictly greater than roll.
func (dist *FrequencyDistribution) RandomFrequency(rnd *rand.Rand) float64 {
	roll := rnd.Float64() * dist.totalWeight
	index := sort.Search(len(dist.cumsum), func(i int) bool { return dist.cumsum[i] > roll })
	if index == len(dist.cumsum) {
		index--
	}
	return dist.frequencies[index]
}

// ExpectedBinomialVariance is E[p(1-p)] under the distribution.
func (dist *FrequencyDistribution) ExpectedBinomialVariance() float64 {
	pq := make([]float64, len(dist.frequencies))
	for i, p := range dist.frequencies {
		pq[i] = p * (1 - p)
	}
	return stat.Mean(pq, dist.weights)
}
