package qtl

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.dedis.ch/onet/v3/log"
)

// Parameters holds raw name/value pairs as read from a parameter file and
// command-line overrides. Typed access goes through Config.
type Parameters map[string]string

// LoadParameters reads filename and layers name=value overrides on top.
// Files ending in .toml are decoded as TOML; anything else uses the
// "name value" line format.
func LoadParameters(filename string, overrides []string) (Parameters, error) {
	var params Parameters
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		var raw map[string]interface{}
		if _, err := toml.DecodeFile(filename, &raw); err != nil {
			return nil, fmt.Errorf("parameter file %s: %w", filename, err)
		}
		params = make(Parameters, len(raw))
		for name, value := range raw {
			params[name] = tomlValueString(value)
		}
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("parameter file: %w", err)
		}
		defer f.Close()
		if params, err = ParseParameters(f); err != nil {
			return nil, fmt.Errorf("parameter file %s: %w", filename, err)
		}
	}
	params.Apply(overrides)
	return params, nil
}

// ParseParameters reads "name value" lines. Text after '#' is ignored;
// lines without a value are skipped with a warning.
func ParseParameters(r io.Reader) (Parameters, error) {
	params := make(Parameters)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			log.Warn("ignoring parameter line:", line)
			continue
		}
		params[line[:i]] = strings.TrimSpace(line[i+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return params, nil
}

// Apply sets each name=value override, warning on malformed entries.
func (p Parameters) Apply(overrides []string) {
	for _, arg := range overrides {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			log.Warn("ignoring command line parameter", arg)
			continue
		}
		p[name] = value
	}
}

func (p Parameters) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns parameter names in sorted order.
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Parameters) String(name string) (string, error) {
	value, ok := p[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return value, nil
}

func (p Parameters) Int(name string) (int, error) {
	value, err := p.String(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q is not an integer", ErrInvalidParameter, name, value)
	}
	return n, nil
}

func (p Parameters) IntOr(name string, fallback int) (int, error) {
	if !p.Has(name) {
		return fallback, nil
	}
	return p.Int(name)
}

func (p Parameters) Float(name string) (float64, error) {
	value, err := p.String(name)
	if err != nil {
		return 0, err
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q is not a number", ErrInvalidParameter, name, value)
	}
	return x, nil
}

func (p Parameters) Floats(name string) ([]float64, error) {
	value, err := p.String(name)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(value)
	out := make([]float64, len(fields))
	for i, field := range fields {
		if out[i], err = strconv.ParseFloat(field, 64); err != nil {
			return nil, fmt.Errorf("%w: %s[%d] = %q is not a number", ErrInvalidParameter, name, i, field)
		}
	}
	return out, nil
}

// Truncations parses a list of numbers written in integer or float
// notation (1000000 or 1e6) and truncates each to an integer.
func (p Parameters) Truncations(name string) ([]int, error) {
	values, err := p.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= math.MaxInt {
			return nil, fmt.Errorf("%w: %s[%d] = %v is out of range", ErrInvalidParameter, name, i, x)
		}
		out[i] = int(x)
	}
	return out, nil
}

func tomlValueString(value interface{}) string {
	switch v := value.(type) {
	case []interface{}:
		parts := make([]string, len(v))
		for i := range v {
			parts[i] = tomlValueString(v[i])
		}
		return strings.Join(parts, " ")
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprint(v)
	}
}
