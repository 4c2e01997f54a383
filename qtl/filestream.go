package qtl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WritePopulation writes pop in the ms-style layout: a comment banner,
// "segsites: S", then one haplotype per line.
func WritePopulation(w io.Writer, name string, pop *Population) error {
	if err := pop.Validate(); err != nil {
		return err
	}
	writer := bufio.NewWriter(w)
	writeHeader(writer, name)
	fmt.Fprintln(writer, "segsites:", pop.SegSites)
	for _, h := range pop.Haplotypes {
		fmt.Fprintln(writer, h)
	}
	return writer.Flush()
}

// PopulationFile is a population read back from disk. Files written by ms
// also carry the declared sample count and site positions.
type PopulationFile struct {
	Population
	DeclaredSamples int
	Positions       []float64
}

// ReadPopulation parses files written by WritePopulation as well as single
// replicate ms output ("ms nsam 1 ..." header, "positions:" line).
func ReadPopulation(r io.Reader) (*PopulationFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	out := &PopulationFile{DeclaredSamples: -1}

	lineCount := 0
	foundSegSites := false
	for scanner.Scan() {
		lineCount++
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !foundSegSites {
			switch {
			case fields[0] == "ms" && out.DeclaredSamples < 0:
				if len(fields) < 3 {
					return nil, fmt.Errorf("%w: line %d: ms command line needs nsam and howmany", ErrMalformedPopulation, lineCount)
				}
				n, err := strconv.Atoi(fields[1])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: line %d: bad nsam %q", ErrMalformedPopulation, lineCount, fields[1])
				}
				if fields[2] != "1" {
					return nil, fmt.Errorf("%w: line %d: only single ms replicates are supported", ErrMalformedPopulation, lineCount)
				}
				out.DeclaredSamples = n
			case fields[0] == "segsites:":
				if len(fields) != 2 {
					return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedPopulation, lineCount, line)
				}
				s, err := strconv.Atoi(fields[1])
				if err != nil || s < 0 {
					return nil, fmt.Errorf("%w: line %d: bad segsites %q", ErrMalformedPopulation, lineCount, fields[1])
				}
				out.SegSites = s
				foundSegSites = true
			}
			continue
		}

		if fields[0] == "positions:" && out.Positions == nil && len(out.Haplotypes) == 0 {
			out.Positions = make([]float64, len(fields)-1)
			for i, field := range fields[1:] {
				x, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: bad position %q", ErrMalformedPopulation, lineCount, field)
				}
				out.Positions[i] = x
			}
			if len(out.Positions) != out.SegSites {
				return nil, fmt.Errorf("%w: %d positions for %d segsites", ErrMalformedPopulation, len(out.Positions), out.SegSites)
			}
			continue
		}
		out.Haplotypes = append(out.Haplotypes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !foundSegSites {
		return nil, fmt.Errorf("%w: segsites line not found", ErrMalformedPopulation)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if out.DeclaredSamples >= 0 && out.SegSites > 0 && len(out.Haplotypes) != out.DeclaredSamples {
		return nil, fmt.Errorf("%w: %d haplotypes, ms header declares %d", ErrMalformedPopulation, len(out.Haplotypes), out.DeclaredSamples)
	}
	return out, nil
}

// SampleCount is the declared ms sample count if present, otherwise the
// number of haplotype rows.
func (pf *PopulationFile) SampleCount() int {
	if pf.DeclaredSamples >= 0 {
		return pf.DeclaredSamples
	}
	return len(pf.Haplotypes)
}
