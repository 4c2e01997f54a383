// Package configgen expands a text template into one file per parameter
// set. Parameter sets are the Cartesian product of "range" rules, each
// repeated a fixed number of times; "function" rules are evaluated per file.
//
// Replacement rules, one per line:
//
//	range NAME v1 v2 v3      (a single a:b token expands to a, a+1, ..., b-1)
//	function NAME TEXT       ({i} is the 1-based file index, {seed} a fresh 32-bit seed)
package configgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hhcho/qtlsim/qtl"
	"go.dedis.ch/onet/v3/log"
	"golang.org/x/exp/rand"
)

const (
	LogFile            = "log.generate_config_files.txt"
	ParameterTableFile = "parameter_table.txt"
	FilenameKey        = "FILENAME"
)

var (
	ErrSyntax         = errors.New("invalid replacement syntax")
	ErrCommand        = errors.New("invalid replacement command")
	ErrConfigIndex    = errors.New("invalid config file index")
	ErrReplicateCount = errors.New("replicate count must be positive")
)

type rule struct {
	key   string
	value string
}

type rangeRule struct {
	key    string
	values []string
}

type Generator struct {
	template       string
	functions      []rule
	ranges         []rangeRule
	replicateCount int
	maps           []map[string]string
}

// NewGenerator parses the replacement rules and builds every replacement
// map. rnd supplies {seed} values in file order.
func NewGenerator(template, replacement string, replicateCount int, rnd *rand.Rand) (*Generator, error) {
	if replicateCount < 1 {
		return nil, fmt.Errorf("%w: %d", ErrReplicateCount, replicateCount)
	}
	g := &Generator{template: template, replicateCount: replicateCount}
	if err := g.parseReplacement(replacement); err != nil {
		return nil, err
	}
	g.generateReplacementMaps(rnd)
	return g, nil
}

func (g *Generator) parseReplacement(replacement string) error {
	scanner := bufio.NewScanner(strings.NewReader(replacement))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 || parts[1] == "" {
			return fmt.Errorf("%w:\n%s", ErrSyntax, line)
		}
		command, key, value := parts[0], parts[1], strings.TrimSpace(parts[2])
		switch command {
		case "function":
			g.functions = append(g.functions, rule{key: key, value: value})
		case "range":
			values, err := parseRange(value)
			if err != nil {
				return fmt.Errorf("%w:\n%s", err, line)
			}
			g.ranges = append(g.ranges, rangeRule{key: key, values: values})
		default:
			return fmt.Errorf("%w: %s", ErrCommand, command)
		}
	}
	return scanner.Err()
}

func parseRange(value string) ([]string, error) {
	fields := strings.Fields(value)
	if len(fields) == 1 {
		if lo, hi, ok := strings.Cut(fields[0], ":"); ok {
			a, errA := strconv.Atoi(lo)
			b, errB := strconv.Atoi(hi)
			if errA != nil || errB != nil {
				return nil, ErrSyntax
			}
			values := []string{}
			for i := a; i < b; i++ {
				values = append(values, strconv.Itoa(i))
			}
			return values, nil
		}
	}
	if len(fields) == 0 {
		return nil, ErrSyntax
	}
	return fields, nil
}

// generateReplacementMaps walks the product of ranges with the last range
// varying fastest.
func (g *Generator) generateReplacementMaps(rnd *rand.Rand) {
	combos := [][]string{{}}
	for _, r := range g.ranges {
		next := make([][]string, 0, len(combos)*len(r.values))
		for _, combo := range combos {
			for _, v := range r.values {
				next = append(next, append(append([]string(nil), combo...), v))
			}
		}
		combos = next
	}

	index := 0
	for _, combo := range combos {
		for replicate := 0; replicate < g.replicateCount; replicate++ {
			index++
			m := make(map[string]string, len(g.ranges)+len(g.functions))
			for i, r := range g.ranges {
				m[r.key] = combo[i]
			}
			for _, f := range g.functions {
				m[f.key] = expandFunction(f.value, index, rnd)
			}
			g.maps = append(g.maps, m)
		}
	}
}

func expandFunction(text string, index int, rnd *rand.Rand) string {
	out := strings.ReplaceAll(text, "{i}", strconv.Itoa(index))
	for strings.Contains(out, "{seed}") {
		out = strings.Replace(out, "{seed}", strconv.FormatUint(uint64(rnd.Uint32()), 10), 1)
	}
	return out
}

func (g *Generator) Len() int {
	return len(g.maps)
}

// ReplacementMap returns the substitutions for 0-based file index.
func (g *Generator) ReplacementMap(index int) map[string]string {
	return g.maps[index]
}

// Config returns the expanded template for 0-based index. Keys are applied
// in declaration order, functions first.
func (g *Generator) Config(index int) (string, error) {
	if index < 0 || index >= len(g.maps) {
		return "", fmt.Errorf("%w: %d", ErrConfigIndex, index)
	}
	result := g.template
	for _, key := range g.keys() {
		result = strings.ReplaceAll(result, key, g.maps[index][key])
	}
	return result, nil
}

// Filename is the FILENAME function's value for 1-based index, or
// "<index>.txt" without one.
func (g *Generator) Filename(index int) string {
	for _, f := range g.functions {
		if f.key == FilenameKey {
			if index >= 1 && index <= len(g.maps) {
				return g.maps[index-1][FilenameKey]
			}
			return strings.ReplaceAll(f.value, "{i}", strconv.Itoa(index))
		}
	}
	return strconv.Itoa(index) + ".txt"
}

func (g *Generator) keys() []string {
	keys := make([]string, 0, len(g.functions)+len(g.ranges))
	for _, f := range g.functions {
		keys = append(keys, f.key)
	}
	for _, r := range g.ranges {
		keys = append(keys, r.key)
	}
	return keys
}

func (g *Generator) String() string {
	var b strings.Builder
	for _, r := range g.ranges {
		fmt.Fprintf(&b, "%s: %v\n", r.key, r.values)
	}
	fmt.Fprintf(&b, "replicate count: %d", g.replicateCount)
	return b.String()
}

// WriteAll writes the log, the parameter table and every config file into
// dir. No existing file is overwritten.
func (g *Generator) WriteAll(dir string) error {
	err := qtl.WriteNewFile(filepath.Join(dir, LogFile), func(w io.Writer) error {
		_, err := fmt.Fprintln(w, g)
		return err
	})
	if err != nil {
		return err
	}
	if err := qtl.WriteNewFile(filepath.Join(dir, ParameterTableFile), g.writeParameterTable); err != nil {
		return err
	}
	for i := 0; i < g.Len(); i++ {
		filename := filepath.Join(dir, g.Filename(i+1))
		config, _ := g.Config(i)
		err := qtl.WriteNewFile(filename, func(w io.Writer) error {
			_, err := io.WriteString(w, config)
			return err
		})
		if err != nil {
			return err
		}
		log.Lvl1(filename)
	}
	return nil
}

func (g *Generator) writeParameterTable(w io.Writer) error {
	writer := bufio.NewWriter(w)
	keys := g.keys()
	if len(g.maps) > 0 {
		fmt.Fprintln(writer, "index", strings.Join(keys, " "))
	}
	for i, m := range g.maps {
		values := make([]string, len(keys))
		for j, key := range keys {
			values[j] = m[key]
		}
		fmt.Fprintln(writer, i+1, strings.Join(values, " "))
	}
	return writer.Flush()
}
