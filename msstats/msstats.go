// Package msstats computes classical diversity statistics from a single
// population sample: the site frequency spectrum, nucleotide diversity,
// Watterson's theta and Tajima's D.
package msstats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hhcho/qtlsim/qtl"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

var (
	ErrTooFewSamples = errors.New("at least 2 samples required")
	ErrNoVariance    = errors.New("Tajima's D undefined without segregating sites")
)

type Summary struct {
	n   int
	s   int
	sfs []float64
}

func Load(filename string) (*Summary, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (*Summary, error) {
	pf, err := qtl.ReadPopulation(r)
	if err != nil {
		return nil, err
	}
	// ms prints no rows when segsites is 0
	if n := pf.SampleCount(); pf.SegSites == 0 && n >= 2 {
		return &Summary{n: n, sfs: make([]float64, n+1)}, nil
	}
	return New(&pf.Population)
}

// New tallies the unfolded spectrum: sfs[k] is the number of sites at which
// k of the n haplotypes carry allele 1.
func New(pop *qtl.Population) (*Summary, error) {
	if err := pop.Validate(); err != nil {
		return nil, err
	}
	n := len(pop.Haplotypes)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, n)
	}

	sfs := make([]float64, n+1)
	if pop.SegSites > 0 {
		data := pop.ToMatDense()
		col := make([]float64, n)
		for j := 0; j < pop.SegSites; j++ {
			count := int(floats.Sum(mat.Col(col, j, data)))
			sfs[count]++
		}
	}
	return &Summary{n: n, s: pop.SegSites, sfs: sfs}, nil
}

func (s *Summary) SampleCount() int      { return s.n }
func (s *Summary) SegregatingSites() int { return s.s }

func (s *Summary) SFS() []float64 {
	return append([]float64(nil), s.sfs...)
}

// Pi is the mean number of pairwise differences.
func (s *Summary) Pi() float64 {
	n := float64(s.n)
	total := 0.0
	for i := 1; i < s.n; i++ {
		total += s.sfs[i] * float64(i) * (n - float64(i))
	}
	return total / float64(combin.Binomial(s.n, 2))
}

// ThetaW is Watterson's estimator S / a1, a1 = sum_{i=1}^{n-1} 1/i.
func (s *Summary) ThetaW() float64 {
	a1, _ := harmonic(s.n - 1)
	return float64(s.s) / a1
}

func (s *Summary) TajimaD() (float64, error) {
	n := float64(s.n)
	a1, a2 := harmonic(s.n - 1)
	b1 := (n + 1) / 3 / (n - 1)
	b2 := 2 * (n*n + n + 3) / 9 / n / (n - 1)
	c1 := b1 - 1/a1
	c2 := b2 - (n+2)/a1/n + a2/(a1*a1)
	e1 := c1 / a1
	e2 := c2 / (a1*a1 + a2)

	segsites := float64(s.s)
	v := e1*segsites + e2*segsites*(segsites-1)
	if !(v > 0) {
		return 0, ErrNoVariance
	}
	return (s.Pi() - s.ThetaW()) / math.Sqrt(v), nil
}

// harmonic returns sum 1/i and sum 1/i^2 for i = 1..m.
func harmonic(m int) (float64, float64) {
	a1, a2 := 0.0, 0.0
	for i := 1; i <= m; i++ {
		x := float64(i)
		a1 += 1 / x
		a2 += 1 / (x * x)
	}
	return a1, a2
}
