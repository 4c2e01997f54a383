package msstats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hhcho/qtlsim/qtl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const msOutput = `ms 4 1 -t 2
1 2 3

//
segsites: 3
positions: 0.1 0.5 0.9
001
011
100
000
`

func TestSummaryStatistics(t *testing.T) {
	s, err := Read(strings.NewReader(msOutput))
	require.NoError(t, err)

	assert.Equal(t, 4, s.SampleCount())
	assert.Equal(t, 3, s.SegregatingSites())
	assert.Equal(t, []float64{0, 2, 1, 0, 0}, s.SFS())
	assert.InDelta(t, 10./6, s.Pi(), 1e-12)
	assert.InDelta(t, 18./11, s.ThetaW(), 1e-12)

	d, err := s.TajimaD()
	require.NoError(t, err)
	assert.InDelta(t, 0.16765579503394953, d, 1e-9)
}

func TestFixedSitesDoNotCount(t *testing.T) {
	pop := &qtl.Population{SegSites: 3, Haplotypes: []string{"010", "011", "010"}}
	s, err := New(pop)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 1}, s.SFS())
	assert.InDelta(t, 2./3, s.Pi(), 1e-12)
}

func TestNoSegregatingSites(t *testing.T) {
	s, err := Read(strings.NewReader("ms 5 1 -t 1\n1 2 3\n\n//\nsegsites: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, s.SampleCount())
	assert.Equal(t, 0., s.Pi())
	assert.Equal(t, 0., s.ThetaW())
	_, err = s.TajimaD()
	assert.ErrorIs(t, err, ErrNoVariance)
}

func TestTooFewSamples(t *testing.T) {
	_, err := New(&qtl.Population{SegSites: 2, Haplotypes: []string{"01"}})
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestLoadWrittenPopulation(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "trait0.pop0.txt")
	pop := &qtl.Population{SegSites: 2, Haplotypes: []string{"01", "11", "00", "10"}}
	f, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, qtl.WritePopulation(f, "trait0.pop0.txt", pop))
	require.NoError(t, f.Close())

	s, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, 4, s.SampleCount())
	assert.Equal(t, []float64{0, 0, 2, 0, 0}, s.SFS())
	assert.InDelta(t, 8./6, s.Pi(), 1e-12)
}
