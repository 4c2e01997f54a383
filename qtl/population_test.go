package qtl

import (
	"testing"

	"github.com/hhcho/qtlsim/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func populationTrait(t *testing.T) *Trait {
	loci := []Locus{sexLocus()}
	frequencies := []float64{0}
	for i, p := range []float64{0, 1, .5, .1} {
		loci = append(loci, AdditiveLocus(1, 10*i, 1))
		frequencies = append(frequencies, p)
	}
	trait, err := NewTrait("t", 1, loci, frequencies)
	require.NoError(t, err)
	return trait
}

func TestHaplotypeCountPopulation(t *testing.T) {
	trait := populationTrait(t)
	pop := HaplotypeCountPopulation(trait, 400, rng.New(1))
	require.NoError(t, pop.Validate())
	assert.Equal(t, trait.NumLoci(), pop.SegSites)
	require.Len(t, pop.Haplotypes, 400)

	oddOnes, ones50 := 0, 0
	for h, haplotype := range pop.Haplotypes {
		require.Len(t, haplotype, 5)
		if h%2 == 0 {
			assert.Equal(t, byte('0'), haplotype[0], "haplotype %d", h)
		} else if haplotype[0] == '1' {
			oddOnes++
		}
		assert.Equal(t, byte('0'), haplotype[1])
		assert.Equal(t, byte('1'), haplotype[2])
		if haplotype[3] == '1' {
			ones50++
		}
	}
	assert.InDelta(t, .5, float64(oddOnes)/200, .15)
	assert.InDelta(t, .5, float64(ones50)/400, .1)
}

func TestHaplotypeCountPopulationEmpty(t *testing.T) {
	pop := HaplotypeCountPopulation(populationTrait(t), 0, rng.New(1))
	assert.Empty(t, pop.Haplotypes)
	assert.Equal(t, 5, pop.SegSites)
}

func TestHomozygousFounderPopulation(t *testing.T) {
	trait := populationTrait(t)
	lines, perLine := 4, 3
	pop := HomozygousFounderPopulation(trait, lines, perLine, rng.New(2))
	require.NoError(t, pop.Validate())
	require.Len(t, pop.Haplotypes, 2*lines*perLine)

	for line := 0; line < lines; line++ {
		founder := pop.Haplotypes[2*line*perLine]
		assert.Equal(t, byte('0'), founder[0])
		for j := 0; j < perLine; j++ {
			first := pop.Haplotypes[2*(line*perLine+j)]
			second := pop.Haplotypes[2*(line*perLine+j)+1]
			assert.Equal(t, founder, first)
			assert.Equal(t, founder[1:], second[1:])
			if j%2 == 0 {
				assert.Equal(t, byte('1'), second[0])
			} else {
				assert.Equal(t, byte('0'), second[0])
			}
		}
	}
}

func TestGeneratePopulationDispatch(t *testing.T) {
	trait := populationTrait(t)
	c := &Config{PopulationGenerator: HomozygousFounderPopulations, FounderLineCount: 2, IndividualsPerFounderLine: 5}
	pop, err := GeneratePopulation(c, trait, rng.New(3))
	require.NoError(t, err)
	assert.Len(t, pop.Haplotypes, 20)

	c = &Config{PopulationGenerator: HaplotypeCountPopulations, HaplotypeCount: 7}
	pop, err = GeneratePopulation(c, trait, rng.New(3))
	require.NoError(t, err)
	assert.Len(t, pop.Haplotypes, 7)
}

func TestPopulationValidate(t *testing.T) {
	assert.ErrorIs(t, (&Population{SegSites: 3, Haplotypes: []string{"01"}}).Validate(), ErrMalformedPopulation)
	assert.ErrorIs(t, (&Population{SegSites: 2, Haplotypes: []string{"0x"}}).Validate(), ErrMalformedPopulation)
	assert.NoError(t, (&Population{SegSites: 0, Haplotypes: []string{"", ""}}).Validate())
}

func TestPopulationToMatDense(t *testing.T) {
	pop := &Population{SegSites: 3, Haplotypes: []string{"010", "111"}}
	want := mat.NewDense(2, 3, []float64{0, 1, 0, 1, 1, 1})
	assert.True(t, mat.Equal(want, pop.ToMatDense()))
}

func TestBernoulliSite(t *testing.T) {
	rnd := rng.New(4)
	ones := 0
	for i := 0; i < 4000; i++ {
		site := bernoulliSite(.25, rnd)
		require.Contains(t, []byte{'0', '1'}, site)
		if site == '1' {
			ones++
		}
	}
	assert.InDelta(t, .25, float64(ones)/4000, .03)
	assert.Equal(t, byte('0'), bernoulliSite(0, rnd))
	assert.Equal(t, byte('1'), bernoulliSite(1, rnd))
}
