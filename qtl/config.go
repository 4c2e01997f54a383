package qtl

import (
	"fmt"
	"strconv"
	"strings"
)

type TraitGenerator int

const (
	DemoTraits TraitGenerator = iota
	FixedQTLCountTraits
	FocalQTLTraits
)

var traitGeneratorNames = map[TraitGenerator]string{
	DemoTraits:          "demo",
	FixedQTLCountTraits: "fixed_qtl_count",
	FocalQTLTraits:      "focal_qtl",
}

func ParseTraitGenerator(name string) (TraitGenerator, error) {
	for kind, s := range traitGeneratorNames {
		if s == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: trait_generator %q (want demo|fixed_qtl_count|focal_qtl)", ErrUnknownGenerator, name)
}

func (g TraitGenerator) String() string {
	return traitGeneratorNames[g]
}

type PopulationGenerator int

const (
	HaplotypeCountPopulations PopulationGenerator = iota
	HomozygousFounderPopulations
)

var populationGeneratorNames = map[PopulationGenerator]string{
	HaplotypeCountPopulations:    "haplotype_count",
	HomozygousFounderPopulations: "homozygous_founders",
}

func ParsePopulationGenerator(name string) (PopulationGenerator, error) {
	for kind, s := range populationGeneratorNames {
		if s == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: population_generator %q (want haplotype_count|homozygous_founders)", ErrUnknownGenerator, name)
}

func (g PopulationGenerator) String() string {
	return populationGeneratorNames[g]
}

type FocalLocus struct {
	Chromosome int
	Position   int
}

// Config is the validated run configuration. Fields that a chosen
// generator does not use stay at their zero value.
type Config struct {
	TraitGenerator      TraitGenerator
	PopulationGenerator PopulationGenerator

	TraitReplicateCount      int
	PopulationReplicateCount int

	ChromosomeLengths []int
	TraitName         string
	QTLCount          int
	NeutralCount      int

	EnvironmentalVariance float64
	TotalVariance         float64
	Heritability          float64

	FounderLineCount          int
	HaplotypeCount            int
	IndividualsPerFounderLine int

	FocalLocus             FocalLocus
	FocalEffectSizes       []float64
	FocalAlleleFrequencies []float64

	Seed    int64
	HasSeed bool

	OutDir      string
	MemoryLimit uint64
}

// NewConfig checks every parameter the selected generators need and fails
// on the first missing or out-of-range value.
func NewConfig(p Parameters) (*Config, error) {
	c := &Config{OutDir: "."}
	var err error

	name, err := p.String("trait_generator")
	if err != nil {
		return nil, err
	}
	if c.TraitGenerator, err = ParseTraitGenerator(name); err != nil {
		return nil, err
	}
	if name, err = p.String("population_generator"); err != nil {
		return nil, err
	}
	if c.PopulationGenerator, err = ParsePopulationGenerator(name); err != nil {
		return nil, err
	}

	if c.TraitReplicateCount, err = p.Int("trait_replicate_count"); err != nil {
		return nil, err
	}
	if c.TraitReplicateCount < 1 {
		return nil, invalid("trait_replicate_count", c.TraitReplicateCount, "must be at least 1")
	}
	if c.PopulationReplicateCount, err = p.Int("population_replicate_count"); err != nil {
		return nil, err
	}
	if c.PopulationReplicateCount < 0 {
		return nil, invalid("population_replicate_count", c.PopulationReplicateCount, "must be non-negative")
	}

	if c.ChromosomeLengths, err = p.Truncations("chromosome_lengths"); err != nil {
		return nil, err
	}
	if len(c.ChromosomeLengths) == 0 {
		return nil, invalid("chromosome_lengths", "", "at least one chromosome required")
	}
	for i, length := range c.ChromosomeLengths {
		if length < 0 {
			return nil, invalid(fmt.Sprintf("chromosome_lengths[%d]", i), length, "must be non-negative")
		}
	}
	if c.TraitName, err = p.String("trait_name"); err != nil {
		return nil, err
	}
	if c.QTLCount, err = p.Int("qtl_count"); err != nil {
		return nil, err
	}
	if c.NeutralCount, err = p.IntOr("neutral_count", 0); err != nil {
		return nil, err
	}
	if c.NeutralCount < 0 {
		return nil, invalid("neutral_count", c.NeutralCount, "must be non-negative")
	}

	switch c.TraitGenerator {
	case DemoTraits:
		err = c.loadDemo(p)
	case FixedQTLCountTraits:
		err = c.loadCalibrated(p, 2)
	case FocalQTLTraits:
		if err = c.loadCalibrated(p, 3); err == nil {
			err = c.loadFocal(p)
		}
	}
	if err != nil {
		return nil, err
	}

	switch c.PopulationGenerator {
	case HaplotypeCountPopulations:
		if c.HaplotypeCount, err = p.Int("haplotype_count"); err != nil {
			return nil, err
		}
		if c.HaplotypeCount < 0 {
			return nil, invalid("haplotype_count", c.HaplotypeCount, "must be non-negative")
		}
	case HomozygousFounderPopulations:
		if err = c.loadFounderLineCount(p); err != nil {
			return nil, err
		}
		if c.IndividualsPerFounderLine, err = p.Int("individuals_per_founder_line"); err != nil {
			return nil, err
		}
		if c.IndividualsPerFounderLine < 0 {
			return nil, invalid("individuals_per_founder_line", c.IndividualsPerFounderLine, "must be non-negative")
		}
	}

	if p.Has("seed") {
		value, _ := p.String("seed")
		if c.Seed, err = strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return nil, invalid("seed", value, "must be an integer")
		}
		c.HasSeed = true
	}
	if p.Has("output_dir") {
		c.OutDir, _ = p.String("output_dir")
	}
	if p.Has("memory_limit") {
		value, _ := p.String("memory_limit")
		if c.MemoryLimit, err = strconv.ParseUint(strings.TrimSpace(value), 10, 64); err != nil {
			return nil, invalid("memory_limit", value, "must be a byte count")
		}
	}
	return c, nil
}

func (c *Config) loadDemo(p Parameters) error {
	var err error
	if c.QTLCount < 1 {
		return invalid("qtl_count", c.QTLCount, "demo traits need at least 1 qtl")
	}
	if c.EnvironmentalVariance, err = p.Float("environmental_variance"); err != nil {
		return err
	}
	if !(c.EnvironmentalVariance >= 0) {
		return invalid("environmental_variance", c.EnvironmentalVariance, "must be non-negative")
	}
	return nil
}

func (c *Config) loadCalibrated(p Parameters, minQTLCount int) error {
	var err error
	if c.QTLCount < minQTLCount {
		return invalid("qtl_count", c.QTLCount, fmt.Sprintf("%s traits need at least %d qtls", c.TraitGenerator, minQTLCount))
	}
	if c.TotalVariance, err = p.Float("total_variance"); err != nil {
		return err
	}
	if !(c.TotalVariance > 0) {
		return invalid("total_variance", c.TotalVariance, "must be positive")
	}
	if c.Heritability, err = p.Float("heritability"); err != nil {
		return err
	}
	if !(c.Heritability >= 0 && c.Heritability <= 1) {
		return invalid("heritability", c.Heritability, "must be in [0,1]")
	}
	return c.loadFounderLineCount(p)
}

func (c *Config) loadFounderLineCount(p Parameters) error {
	var err error
	if c.FounderLineCount, err = p.Int("founder_line_count"); err != nil {
		return err
	}
	if c.FounderLineCount < 2 {
		return invalid("founder_line_count", c.FounderLineCount, "must be at least 2")
	}
	return nil
}

func (c *Config) loadFocal(p Parameters) error {
	value, err := p.String("focal_qtl_locus")
	if err != nil {
		return err
	}
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return invalid("focal_qtl_locus", value, `want "chromosome position"`)
	}
	if c.FocalLocus.Chromosome, err = strconv.Atoi(fields[0]); err != nil {
		return invalid("focal_qtl_locus", value, "chromosome is not an integer")
	}
	position, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return invalid("focal_qtl_locus", value, "position is not a number")
	}
	c.FocalLocus.Position = int(position)
	if c.FocalLocus.Chromosome < 1 || c.FocalLocus.Chromosome > len(c.ChromosomeLengths) {
		return invalid("focal_qtl_locus", value, fmt.Sprintf("chromosome must be in 1..%d", len(c.ChromosomeLengths)))
	}
	if c.FocalLocus.Position < 0 || c.FocalLocus.Position > c.ChromosomeLengths[c.FocalLocus.Chromosome-1] {
		return invalid("focal_qtl_locus", value, "position outside chromosome")
	}

	if c.FocalEffectSizes, err = p.Floats("focal_qtl_effect_sizes"); err != nil {
		return err
	}
	if len(c.FocalEffectSizes) == 0 {
		return invalid("focal_qtl_effect_sizes", "", "at least one effect size required")
	}
	if c.FocalAlleleFrequencies, err = p.Floats("focal_qtl_allele_frequencies"); err != nil {
		return err
	}
	if len(c.FocalAlleleFrequencies) == 0 {
		return invalid("focal_qtl_allele_frequencies", "", "at least one allele frequency required")
	}
	for i, f := range c.FocalAlleleFrequencies {
		if !(f >= 0 && f <= 1) {
			return invalid(fmt.Sprintf("focal_qtl_allele_frequencies[%d]", i), f, "must be in [0,1]")
		}
	}
	return nil
}

func invalid(name string, value interface{}, reason string) error {
	return fmt.Errorf("%w: %s = %v: %s", ErrInvalidParameter, name, value, reason)
}
