package qtl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

const ArchitectureSummaryFile = "architecture_summary.txt"

// ArchitectureSummary collects per-trait heritability and largest effect
// size for the aggregate report.
type ArchitectureSummary struct {
	Heritabilities     []float64
	LargestEffectSizes []float64
}

func (s *ArchitectureSummary) MeanHeritability() float64 {
	return stat.Mean(s.Heritabilities, nil)
}

func (s *ArchitectureSummary) MeanLargestEffectSize() float64 {
	return stat.Mean(s.LargestEffectSizes, nil)
}

// Write emits "index heritability largest_effect_size" rows and a trailing
// mean row.
func (s *ArchitectureSummary) Write(w io.Writer) error {
	writer := bufio.NewWriter(w)
	fmt.Fprintln(writer, "index heritability largest_effect_size")
	for i := range s.Heritabilities {
		fmt.Fprintln(writer, i, formatFloat(s.Heritabilities[i]), formatFloat(s.LargestEffectSizes[i]))
	}
	fmt.Fprintln(writer, "mean", formatFloat(s.MeanHeritability()), formatFloat(s.MeanLargestEffectSize()))
	return writer.Flush()
}

// Simulation runs the trait and population generators for one
// configuration and writes every replicate under Config.OutDir.
type Simulation struct {
	config *Config
	rnd    *rand.Rand
}

func NewSimulation(config *Config, rnd *rand.Rand) *Simulation {
	return &Simulation{config: config, rnd: rnd}
}

func (s *Simulation) OutFile(filename string) string {
	return outFile(s.config.OutDir, filename)
}

func TraitFileStem(traitReplicate int) string {
	return "trait" + strconv.Itoa(traitReplicate)
}

func PopulationFileName(traitReplicate, populationReplicate int) string {
	return TraitFileStem(traitReplicate) + ".pop" + strconv.Itoa(populationReplicate) + ".txt"
}

// Run generates all traits, then for each one writes its summary, config
// and population replicates, then the aggregate summary. It stops at the
// first error; files from earlier replicates are left in place.
func (s *Simulation) Run() (*ArchitectureSummary, error) {
	start := time.Now()
	if err := CheckNotExist(s.OutFile(ArchitectureSummaryFile)); err != nil {
		return nil, err
	}

	traits, err := GenerateTraits(s.config, s.rnd)
	if err != nil {
		return nil, err
	}
	log.Lvl1("Generated", len(traits), s.config.TraitGenerator, "traits")

	summary := &ArchitectureSummary{
		Heritabilities:     make([]float64, len(traits)),
		LargestEffectSizes: make([]float64, len(traits)),
	}
	for k, trait := range traits {
		if k%100 == 0 {
			log.Lvl1("trait", k)
		}
		if summary.Heritabilities[k], err = s.writeReplicate(k, trait); err != nil {
			return nil, err
		}
		summary.LargestEffectSizes[k] = trait.LargestEffect()
	}

	if err := WriteNewFile(s.OutFile(ArchitectureSummaryFile), summary.Write); err != nil {
		return nil, err
	}
	log.LLvl1("Wrote", len(traits), "trait replicates in", time.Since(start))
	return summary, nil
}

func (s *Simulation) writeReplicate(k int, trait *Trait) (float64, error) {
	stem := TraitFileStem(k)
	summaryName := stem + ".summary.txt"
	configName := stem + ".config.txt"
	populationNames := make([]string, s.config.PopulationReplicateCount)
	for j := range populationNames {
		populationNames[j] = PopulationFileName(k, j)
	}

	targets := []string{s.OutFile(summaryName), s.OutFile(configName)}
	for _, name := range populationNames {
		targets = append(targets, s.OutFile(name))
	}
	if err := CheckNotExist(targets...); err != nil {
		return 0, err
	}

	heritability, err := trait.Heritability()
	if err != nil {
		return 0, fmt.Errorf("trait %d: %w", k, err)
	}

	if err := WriteNewFile(s.OutFile(summaryName), trait.WriteSummary); err != nil {
		return 0, err
	}
	err = WriteNewFile(s.OutFile(configName), func(w io.Writer) error {
		return trait.WriteConfig(w, configName)
	})
	if err != nil {
		return 0, err
	}

	for j, name := range populationNames {
		pop, err := GeneratePopulation(s.config, trait, s.rnd)
		if err != nil {
			return 0, fmt.Errorf("trait %d population %d: %w", k, j, err)
		}
		err = WriteNewFile(s.OutFile(name), func(w io.Writer) error {
			return WritePopulation(w, name, pop)
		})
		if err != nil {
			return 0, err
		}
	}
	return heritability, nil
}
