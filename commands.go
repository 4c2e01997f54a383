package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hhcho/qtlsim/configgen"
	"github.com/hhcho/qtlsim/msstats"
	"github.com/hhcho/qtlsim/qtl"
	"github.com/hhcho/qtlsim/rng"
	"github.com/raulk/go-watchdog"
	"github.com/spf13/cobra"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/exp/rand"
)

const parameterFileHelp = `Parameter file format, one "name value" pair per line ('#' starts a comment):

    trait_generator             demo | fixed_qtl_count | focal_qtl
    population_generator        haplotype_count | homozygous_founders
    trait_replicate_count       10
    population_replicate_count  1
    chromosome_lengths          1e6 1e6
    trait_name                  trait
    qtl_count                   20
    neutral_count               0
    environmental_variance      1           (demo)
    total_variance              1           (fixed_qtl_count, focal_qtl)
    heritability                .5          (fixed_qtl_count, focal_qtl)
    founder_line_count          20
    haplotype_count             100         (haplotype_count)
    individuals_per_founder_line 10         (homozygous_founders)
    focal_qtl_locus             1 500000    (focal_qtl)
    focal_qtl_effect_sizes      .1 .2       (focal_qtl)
    focal_qtl_allele_frequencies .1 .5      (focal_qtl)
    seed                        123
    output_dir                  .
    memory_limit                0

Files ending in .toml are read as TOML with the same names.
Extra name=value arguments override the file.`

func newRootCommand() *cobra.Command {
	var debug int
	root := &cobra.Command{
		Use:           "qtlsim",
		Short:         "Simulate quantitative trait architectures and founder populations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebugVisible(debug)
		},
	}
	root.PersistentFlags().IntVar(&debug, "debug", 1, "log verbosity level")
	root.AddCommand(newGenerateCommand(), newSummarizeCommand(), newExpandCommand())
	return root
}

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <parameter_file> [name=value ...]",
		Short: "Generate trait architectures and populations",
		Long:  "Generate trait architectures and populations.\n\n" + parameterFileHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], args[1:])
		},
	}
}

func runGenerate(cmd *cobra.Command, filename string, overrides []string) error {
	params, err := qtl.LoadParameters(filename, overrides)
	if err != nil {
		return err
	}
	log.Lvl1("Parameters:")
	for _, name := range params.Names() {
		log.Lvl1("    " + name + ": " + params[name])
	}

	config, err := qtl.NewConfig(params)
	if err != nil {
		return err
	}

	if config.MemoryLimit > 0 {
		err, stopFn := watchdog.HeapDriven(config.MemoryLimit, 40, watchdog.NewAdaptivePolicy(0.5))
		if err != nil {
			return fmt.Errorf("memory watchdog: %w", err)
		}
		defer stopFn()
	}

	var rnd *rand.Rand
	if config.HasSeed {
		rnd = rng.New(config.Seed)
	} else {
		var seed int64
		rnd, seed = rng.NewFromEntropy()
		log.LLvl1("No seed given, using seed", seed)
	}

	if err := os.MkdirAll(config.OutDir, 0755); err != nil {
		return err
	}
	summary, err := qtl.NewSimulation(config, rnd).Run()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "mean heritability:", summary.MeanHeritability())
	fmt.Fprintln(cmd.OutOrStdout(), "mean largest effect size:", summary.MeanLargestEffectSize())
	return nil
}

func newSummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <population_file>",
		Short: "Report pi, Watterson's theta and Tajima's D for a population or ms file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := msstats.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sfs := summary.SFS()
			interior := make([]string, 0, len(sfs))
			for _, count := range sfs[1 : len(sfs)-1] {
				interior = append(interior, strconv.FormatFloat(count, 'g', -1, 64))
			}
			fmt.Fprintln(out, "n:", summary.SampleCount())
			fmt.Fprintln(out, "S:", summary.SegregatingSites())
			fmt.Fprintf(out, "sfs: [%s]\n", strings.Join(interior, " "))
			fmt.Fprintln(out, "pi:", summary.Pi())
			fmt.Fprintln(out, "theta_W:", summary.ThetaW())
			d, err := summary.TajimaD()
			if errors.Is(err, msstats.ErrNoVariance) {
				fmt.Fprintln(out, "Tajima's D: undefined")
				return nil
			}
			fmt.Fprintln(out, "Tajima's D:", d)
			return err
		},
	}
}

func newExpandCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "expand <template_file> <replacement_file> <replicate_count> [seed]",
		Short: "Generate config files from a template and replacement rules",
		Long: `Generate config files by replacing text in <template_file> using the rules in
<replacement_file>. Parameter sets iterate through the Cartesian product of the
ranges, each repeated <replicate_count> times.

Replacement syntax:
    function <text_to_replace> <text>     ({i}: 1-based index, {seed}: random seed)
    range <text_to_replace> <values>      (space separated, or a:b for integers)

Replacement examples:
    function FILENAME config_{i}.txt
    function OUTDIR output_{i}
    function SEED {seed}
    range VALUE 0:3
    range COLOR red green blue`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			replacement, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			replicateCount, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("replicate count %q: %w", args[2], err)
			}

			var rnd *rand.Rand
			if len(args) == 4 {
				seed, err := strconv.ParseInt(args[3], 10, 64)
				if err != nil {
					return fmt.Errorf("seed %q: %w", args[3], err)
				}
				rnd = rng.New(seed)
			} else {
				rnd, _ = rng.NewFromEntropy()
			}

			g, err := configgen.NewGenerator(string(template), string(replacement), replicateCount, rnd)
			if err != nil {
				return err
			}
			log.Lvl1(g)
			log.Lvl1("Generating", g.Len(), "configuration files.")
			return g.WriteAll(outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "output-dir", ".", "directory for generated files")
	return cmd
}
