package qtl

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Locus is a biallelic causal site. Effects are indexed by genotype dose
// 0, 1, 2; Effect() is the dose-1 (additive) value.
type Locus struct {
	chromosome int
	position   int
	effects    [3]float64
}

func NewLocus(chromosome, position int, effects []float64) (Locus, error) {
	if len(effects) != 3 {
		return Locus{}, fmt.Errorf("%w: got %d", ErrLocusEffects, len(effects))
	}
	return Locus{
		chromosome: chromosome,
		position:   position,
		effects:    [3]float64{effects[0], effects[1], effects[2]},
	}, nil
}

// AdditiveLocus has effects {0, a, 2a}.
func AdditiveLocus(chromosome, position int, effect float64) Locus {
	return Locus{
		chromosome: chromosome,
		position:   position,
		effects:    [3]float64{0, effect, 2 * effect},
	}
}

// sexLocus is locus 0 of every trait: a fixed sex/batch label that is
// written to the config but never counted in the genetic variance.
func sexLocus() Locus {
	return Locus{chromosome: 1, position: 0, effects: [3]float64{0, 100, 1000}}
}

func (l Locus) Chromosome() int { return l.chromosome }
func (l Locus) Position() int { return l.position }
func (l Locus) Effects() [3]float64 { return l.effects }
func (l Locus) Effect() float64 { return l.effects[1] }
func (l Locus) String() string {
	return fmt.Sprintf("QTL (%d,%d) %v", l.chromosome, l.position, l.effects)
}

// Trait is an additive quantitative trait. Index 0 of the loci is the
// sex/batch locus; loci and allele frequencies are index-aligned.
type Trait struct {
	name                  string
	loci                  []Locus
	alleleFrequencies     []float64
	environmentalVariance float64
}

func NewTrait(name string, environmentalVariance float64, loci []Locus, alleleFrequencies []float64) (*Trait, error) {
	if len(loci) != len(alleleFrequencies) {
		return nil, fmt.Errorf("%w: %d loci, %d allele frequencies", ErrLengthMismatch, len(loci), len(alleleFrequencies))
	}
	if len(loci) < 2 {
		return nil, fmt.Errorf("%w: need locus 0 and at least one causal locus, got %d loci", ErrInvalidTrait, len(loci))
	}
	for i, p := range alleleFrequencies {
		if !(p >= 0 && p <= 1) {
			return nil, fmt.Errorf("%w: allele frequency[%d] = %v", ErrInvalidTrait, i, p)
		}
	}
	if !(environmentalVariance >= 0) || math.IsInf(environmentalVariance, 0) {
		return nil, fmt.Errorf("%w: environmental variance %v", ErrInvalidTrait, environmentalVariance)
	}
	return &Trait{
		name:                  name,
		loci:                  append([]Locus(nil), loci...),
		alleleFrequencies:     append([]float64(nil), alleleFrequencies...),
		environmentalVariance: environmentalVariance,
	}, nil
}

func (t *Trait) Name() string { return t.name }
func (t *Trait) NumLoci() int { return len(t.loci) }
func (t *Trait) Locus(i int) Locus { return t.loci[i] }
func (t *Trait) AlleleFrequency(i int) float64 { return t.alleleFrequencies[i] }
func (t *Trait) EnvironmentalVariance() float64 { return t.environmentalVariance }

func (t *Trait) Loci() []Locus {
	return append([]Locus(nil), t.loci...)
}

func (t *Trait) AlleleFrequencies() []float64 {
	return append([]float64(nil), t.alleleFrequencies...)
}

// LargestEffect is the additive effect of locus 1, which generators fill
// with the largest (or focal) effect.
func (t *Trait) LargestEffect() float64 {
	return t.loci[1].Effect()
}

// LocusVariance is a^2 p(1-p) for locus i.
func (t *Trait) LocusVariance(i int) float64 {
	a := t.loci[i].Effect()
	p := t.alleleFrequencies[i]
	return a * a * p * (1 - p)
}

// GeneticVariance sums LocusVariance over the causal loci (index >= 1).
func (t *Trait) GeneticVariance() float64 {
	total := 0.0
	for i := 1; i < len(t.loci); i++ {
		total += t.LocusVariance(i)
	}
	return total
}

func (t *Trait) TotalVariance() float64 {
	return t.GeneticVariance() + t.environmentalVariance
}

func (t *Trait) Heritability() (float64, error) {
	total := t.TotalVariance()
	if total == 0 {
		return 0, ErrZeroTotalVariance
	}
	return t.GeneticVariance() / total, nil
}

// WriteSummary writes the per-locus variance decomposition table. Locus 0
// is included with whatever its frequency contributes.
func (t *Trait) WriteSummary(w io.Writer) error {
	total := t.TotalVariance()
	if total == 0 {
		return ErrZeroTotalVariance
	}

	writer := bufio.NewWriter(w)
	fmt.Fprintln(writer, "chromosome position effect_size allele_frequency qtl_variance qtl_heritability")
	for i, locus := range t.loci {
		v := t.LocusVariance(i)
		fmt.Fprintln(writer, locus.chromosome, locus.position,
			formatFloat(locus.Effect()), formatFloat(t.alleleFrequencies[i]),
			formatFloat(v), formatFloat(v/total))
	}
	return writer.Flush()
}

// WriteConfig writes the locus list and trait definition blocks read by
// the forward simulator. name goes into the comment header.
func (t *Trait) WriteConfig(w io.Writer, name string) error {
	writer := bufio.NewWriter(w)
	writeHeader(writer, name)
	fmt.Fprintln(writer, "LocusList qtls")
	for _, locus := range t.loci {
		fmt.Fprintln(writer, "    chromosome:position =", locus.chromosome, locus.position)
	}
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, "QuantitativeTrait_IndependentLoci", t.name)
	fmt.Fprintln(writer, "    environmental_variance =", formatFloat(t.environmentalVariance))
	for i, locus := range t.loci {
		fmt.Fprintf(writer, "    qtl = qtls[%d] %s %s %s\n", i,
			formatFloat(locus.effects[0]), formatFloat(locus.effects[1]), formatFloat(locus.effects[2]))
	}
	fmt.Fprintln(writer)
	return writer.Flush()
}
