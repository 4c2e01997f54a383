package qtl

import (
	"testing"

	"github.com/hhcho/qtlsim/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomFrequencyFollowsWeights(t *testing.T) {
	dist, err := NewFrequencyDistribution([]float64{0, 1, 2}, []float64{1, 2, 3})
	require.NoError(t, err)

	rnd := rng.New(11)
	draws := 6000
	counts := map[float64]int{}
	for i := 0; i < draws; i++ {
		counts[dist.RandomFrequency(rnd)]++
	}
	require.Len(t, counts, 3)
	assert.InDelta(t, 1./6, float64(counts[0])/float64(draws), .05)
	assert.InDelta(t, 2./6, float64(counts[1])/float64(draws), .05)
	assert.InDelta(t, 3./6, float64(counts[2])/float64(draws), .05)
}

func TestRandomFrequencySingleValue(t *testing.T) {
	dist, err := NewFrequencyDistribution([]float64{.3}, []float64{5})
	require.NoError(t, err)
	rnd := rng.New(1)
	for i := 0; i < 100; i++ {
		require.Equal(t, .3, dist.RandomFrequency(rnd))
	}
}

func TestRandomFrequencyIsReproducible(t *testing.T) {
	dist, err := NewNeutralFrequencyDistribution(20)
	require.NoError(t, err)
	a, b := rng.New(5), rng.New(5)
	for i := 0; i < 200; i++ {
		require.Equal(t, dist.RandomFrequency(a), dist.RandomFrequency(b))
	}
}

func TestNeutralFrequencyDistribution(t *testing.T) {
	dist, err := NewNeutralFrequencyDistribution(4)
	require.NoError(t, err)
	assert.Equal(t, 3, dist.Len())
	assert.Equal(t, []float64{.25, .5, .75}, dist.Frequencies())
	assert.InDeltaSlice(t, []float64{1, .5, 1. / 3}, dist.Weights(), 1e-12)
	assert.InDelta(t, 11./6, dist.TotalWeight(), 1e-12)
}

func TestUniformFrequencyDistribution(t *testing.T) {
	dist, err := NewUniformFrequencyDistribution(5)
	require.NoError(t, err)
	assert.Equal(t, []float64{.2, .4, .6, .8}, dist.Frequencies())
	assert.Equal(t, []float64{1, 1, 1, 1}, dist.Weights())
}

func TestExpectedBinomialVariance(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want float64
	}{
		{2, .25},
		{3, 2. / 9},
		{4, (3. / 8) / (1 + .5 + 1./3)},
	} {
		dist, err := NewNeutralFrequencyDistribution(tc.n)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, dist.ExpectedBinomialVariance(), 1e-12, "n = %d", tc.n)
	}

	dist, err := NewFrequencyDistribution([]float64{.25, .25, .5}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, (.1875+2*.1875+3*.25)/6, dist.ExpectedBinomialVariance(), 1e-12)
}

func TestFrequencyDistributionErrors(t *testing.T) {
	_, err := NewFrequencyDistribution(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = NewFrequencyDistribution([]float64{.1, .2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewFrequencyDistribution([]float64{.1, .2}, []float64{1, 0})
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = NewFrequencyDistribution([]float64{.1}, []float64{-1})
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = NewNeutralFrequencyDistribution(1)
	assert.ErrorIs(t, err, ErrSampleCount)

	_, err = NewUniformFrequencyDistribution(0)
	assert.ErrorIs(t, err, ErrSampleCount)
}

func TestFrequencyDistributionCopiesInput(t *testing.T) {
	freqs := []float64{.1, .9}
	weights := []float64{1, 1}
	dist, err := NewFrequencyDistribution(freqs, weights)
	require.NoError(t, err)
	freqs[0] = .5
	weights[0] = 100
	assert.Equal(t, []float64{.1, .9}, dist.Frequencies())
	assert.Equal(t, 2., dist.TotalWeight())
}
