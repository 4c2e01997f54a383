package qtl

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Population is a set of haplotypes over the loci of one trait, in trait
// locus order. Each haplotype is a string of '0'/'1' of length SegSites.
type Population struct {
	SegSites   int
	Haplotypes []string
}

func (pop *Population) Validate() error {
	for i, h := range pop.Haplotypes {
		if len(h) != pop.SegSites {
			return fmt.Errorf("%w: haplotype %d has %d sites, segsites is %d", ErrMalformedPopulation, i, len(h), pop.SegSites)
		}
		for j := 0; j < len(h); j++ {
			if h[j] != '0' && h[j] != '1' {
				return fmt.Errorf("%w: haplotype %d site %d is %q", ErrMalformedPopulation, i, j, h[j])
			}
		}
	}
	return nil
}

// ToMatDense returns the haplotypes as a haplotype x site 0/1 matrix.
func (pop *Population) ToMatDense() *mat.Dense {
	if len(pop.Haplotypes) == 0 || pop.SegSites == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(pop.Haplotypes), pop.SegSites, nil)
	for i, h := range pop.Haplotypes {
		row := out.RawRowView(i)
		for j := 0; j < pop.SegSites; j++ {
			if h[j] == '1' {
				row[j] = 1
			}
		}
	}
	return out
}

// GeneratePopulation runs the configured population model on trait t.
func GeneratePopulation(c *Config, t *Trait, rnd *rand.Rand) (*Population, error) {
	switch c.PopulationGenerator {
	case HaplotypeCountPopulations:
		return HaplotypeCountPopulation(t, c.HaplotypeCount, rnd), nil
	case HomozygousFounderPopulations:
		return HomozygousFounderPopulation(t, c.FounderLineCount, c.IndividualsPerFounderLine, rnd), nil
	default:
		return nil, fmt.Errorf("%w: population generator %d", ErrUnknownGenerator, c.PopulationGenerator)
	}
}

// HaplotypeCountPopulation samples each site of each haplotype independently
// at its allele frequency (Hardy-Weinberg, no linkage). Locus 0 is a
// Bernoulli(1/2) draw on odd-indexed haplotypes and 0 on even ones.
func HaplotypeCountPopulation(t *Trait, haplotypeCount int, rnd *rand.Rand) *Population {
	siteCount := t.NumLoci()
	haplotypes := make([]string, haplotypeCount)
	for h := range haplotypes {
		sites := make([]byte, siteCount)
		sites[0] = '0'
		if h%2 == 1 && rnd.Float64() < .5 {
			sites[0] = '1'
		}
		for i := 1; i < siteCount; i++ {
			sites[i] = bernoulliSite(t.AlleleFrequency(i), rnd)
		}
		haplotypes[h] = string(sites)
	}
	return &Population{SegSites: siteCount, Haplotypes: haplotypes}
}

// HomozygousFounderPopulation draws one homozygous founder per line and
// emits two haplotypes for each of its individuals: the founder itself, then
// a copy whose locus 0 is 1 for even individuals within the line and 0 for
// odd ones.
func HomozygousFounderPopulation(t *Trait, founderLineCount, individualsPerFounderLine int, rnd *rand.Rand) *Population {
	siteCount := t.NumLoci()
	haplotypes := make([]string, 0, 2*founderLineCount*individualsPerFounderLine)
	for line := 0; line < founderLineCount; line++ {
		founder := make([]byte, siteCount)
		founder[0] = '0'
		for i := 1; i < siteCount; i++ {
			founder[i] = bernoulliSite(t.AlleleFrequency(i), rnd)
		}

		second := append([]byte(nil), founder...)
		for j := 0; j < individualsPerFounderLine; j++ {
			second[0] = '0'
			if j%2 == 0 {
				second[0] = '1'
			}
			haplotypes = append(haplotypes, string(founder), string(second))
		}
	}
	return &Population{SegSites: siteCount, Haplotypes: haplotypes}
}

func bernoulliSite(p float64, rnd *rand.Rand) byte {
	dist := distuv.Bernoulli{P: p, Src: rnd}
	if dist.Rand() == 1 {
		return '1'
	}
	return '0'
}
