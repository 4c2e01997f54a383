package qtl

import (
	"fmt"
	"math"
	"sort"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateTraits builds the trait replicates for the configured strategy.
// All randomness comes from rnd.
func GenerateTraits(c *Config, rnd *rand.Rand) ([]*Trait, error) {
	switch c.TraitGenerator {
	case DemoTraits:
		return generateDemoTraits(c, rnd)
	case FixedQTLCountTraits:
		return generateFixedQTLCountTraits(c, rnd)
	case FocalQTLTraits:
		return generateFocalQTLTraits(c, rnd)
	default:
		return nil, fmt.Errorf("%w: trait generator %d", ErrUnknownGenerator, c.TraitGenerator)
	}
}

// generateDemoTraits draws qtl_count loci with uniform effects in [0,1)
// and uniform allele frequencies. No heritability target.
func generateDemoTraits(c *Config, rnd *rand.Rand) ([]*Trait, error) {
	traits := make([]*Trait, 0, c.TraitReplicateCount)
	for r := 0; r < c.TraitReplicateCount; r++ {
		loci := []Locus{sexLocus()}
		alleleFrequencies := []float64{0}
		for i := 0; i < c.QTLCount; i++ {
			chromosome, position := randomPosition(c.ChromosomeLengths, rnd)
			effect := rnd.Float64()
			loci = append(loci, AdditiveLocus(chromosome, position, effect))
			alleleFrequencies = append(alleleFrequencies, rnd.Float64())
		}
		trait, err := NewTrait(c.TraitName, c.EnvironmentalVariance, loci, alleleFrequencies)
		if err != nil {
			return nil, err
		}
		traits = append(traits, trait)
	}
	return traits, nil
}

// generateFixedQTLCountTraits calibrates an exponential effect size
// distribution so that
//
//	h*V = (qtl_count-1) * E[a^2] * E[p(1-p)],  E[a^2] = 2/rate^2
//
// with E[p(1-p)] taken over the neutral spectrum of the founder lines.
func generateFixedQTLCountTraits(c *Config, rnd *rand.Rand) ([]*Trait, error) {
	sfs, err := NewNeutralFrequencyDistribution(c.FounderLineCount)
	if err != nil {
		return nil, err
	}

	geneticVariance := c.Heritability * c.TotalVariance
	environmentalVariance := c.TotalVariance - geneticVariance
	rate, err := EffectSizeRate(geneticVariance, c.QTLCount-1, sfs.ExpectedBinomialVariance())
	if err != nil {
		return nil, err
	}
	log.Lvl2("fixed_qtl_count: genetic variance", geneticVariance, "rate", rate)

	traits := make([]*Trait, 0, c.TraitReplicateCount)
	for r := 0; r < c.TraitReplicateCount; r++ {
		loci := []Locus{sexLocus()}
		alleleFrequencies := []float64{0}

		effects := drawEffectSizes(rate, c.QTLCount+c.NeutralCount, rnd)
		loci, alleleFrequencies = appendRandomLoci(loci, alleleFrequencies, effects, c.ChromosomeLengths, sfs, rnd)

		trait, err := NewTrait(c.TraitName, environmentalVariance, loci, alleleFrequencies)
		if err != nil {
			return nil, err
		}
		traits = append(traits, trait)
	}
	return traits, nil
}

// generateFocalQTLTraits places a caller-supplied locus at index 1 and
// calibrates the remaining qtl_count-1 loci against the variance left over.
// One batch of trait_replicate_count traits is produced per (effect size,
// allele frequency) pair, effect sizes varying slowest.
func generateFocalQTLTraits(c *Config, rnd *rand.Rand) ([]*Trait, error) {
	sfs, err := NewNeutralFrequencyDistribution(c.FounderLineCount)
	if err != nil {
		return nil, err
	}
	expectedBinomialVariance := sfs.ExpectedBinomialVariance()
	geneticVariance := c.Heritability * c.TotalVariance
	environmentalVariance := c.TotalVariance - geneticVariance

	traits := make([]*Trait, 0, c.TraitReplicateCount*len(c.FocalEffectSizes)*len(c.FocalAlleleFrequencies))
	for _, focalEffect := range c.FocalEffectSizes {
		for _, focalFrequency := range c.FocalAlleleFrequencies {
			focalVariance := focalEffect * focalEffect * focalFrequency * (1 - focalFrequency)
			if focalVariance > geneticVariance {
				return nil, fmt.Errorf("%w: effect size %v, allele frequency %v: focal variance %v > genetic variance %v",
					ErrFocalVariance, focalEffect, focalFrequency, focalVariance, geneticVariance)
			}

			rate, err := EffectSizeRate(geneticVariance-focalVariance, c.QTLCount-2, expectedBinomialVariance)
			if err != nil {
				return nil, fmt.Errorf("focal effect size %v, allele frequency %v: %w", focalEffect, focalFrequency, err)
			}
			log.Lvl2("focal_qtl: effect", focalEffect, "frequency", focalFrequency, "rate", rate)

			for r := 0; r < c.TraitReplicateCount; r++ {
				loci := []Locus{
					sexLocus(),
					AdditiveLocus(c.FocalLocus.Chromosome, c.FocalLocus.Position, focalEffect),
				}
				alleleFrequencies := []float64{0, focalFrequency}

				effects := drawEffectSizes(rate, c.QTLCount-1+c.NeutralCount, rnd)
				loci, alleleFrequencies = appendRandomLoci(loci, alleleFrequencies, effects, c.ChromosomeLengths, sfs, rnd)

				trait, err := NewTrait(c.TraitName, environmentalVariance, loci, alleleFrequencies)
				if err != nil {
					return nil, err
				}
				traits = append(traits, trait)
			}
		}
	}
	return traits, nil
}

// EffectSizeRate solves variance = terms * (2/rate^2) * expectedBinomialVariance
// for the exponential rate.
func EffectSizeRate(variance float64, terms int, expectedBinomialVariance float64) (float64, error) {
	meanSquaredEffect := variance / float64(terms) / expectedBinomialVariance
	rate := math.Sqrt(2 / meanSquaredEffect)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, fmt.Errorf("%w: variance %v over %d loci gives rate %v", ErrNonFiniteRate, variance, terms, rate)
	}
	return rate, nil
}

// drawEffectSizes returns n exponential draws sorted largest first, so the
// largest effect always lands at locus 1.
func drawEffectSizes(rate float64, n int, rnd *rand.Rand) []float64 {
	dist := distuv.Exponential{Rate: rate, Src: rnd}
	effects := make([]float64, n)
	for i := range effects {
		effects[i] = dist.Rand()
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(effects)))
	return effects
}

// appendRandomLoci adds one locus per effect at a random position, with an
// allele frequency from sfs reflected to 1-p half of the time.
func appendRandomLoci(loci []Locus, alleleFrequencies, effects []float64, chromosomeLengths []int, sfs *FrequencyDistribution, rnd *rand.Rand) ([]Locus, []float64) {
	for _, effect := range effects {
		chromosome, position := randomPosition(chromosomeLengths, rnd)
		loci = append(loci, AdditiveLocus(chromosome, position, effect))

		p := sfs.RandomFrequency(rnd)
		if rnd.Float64() >= .5 {
			p = 1 - p
		}
		alleleFrequencies = append(alleleFrequencies, p)
	}
	return loci, alleleFrequencies
}

// randomPosition picks a chromosome uniformly (not by length) and then a
// position uniformly in [0, length].
func randomPosition(chromosomeLengths []int, rnd *rand.Rand) (int, int) {
	chromosome := 1 + rnd.Intn(len(chromosomeLengths))
	position := rnd.Intn(chromosomeLengths[chromosome-1] + 1)
	return chromosome, position
}
