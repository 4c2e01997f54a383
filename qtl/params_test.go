package qtl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameters(t *testing.T) {
	input := `# comment line
trait_generator fixed_qtl_count   # trailing comment
chromosome_lengths   1e6 2000000

lonely
qtl_count	20
`
	params, err := ParseParameters(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Parameters{
		"trait_generator":    "fixed_qtl_count",
		"chromosome_lengths": "1e6 2000000",
		"qtl_count":          "20",
	}, params)
}

func TestApplyOverrides(t *testing.T) {
	params := Parameters{"qtl_count": "20"}
	params.Apply([]string{"qtl_count=5", "seed=9", "bogus", "=x"})
	assert.Equal(t, Parameters{"qtl_count": "5", "seed": "9"}, params)
}

func TestTypedGetters(t *testing.T) {
	params := Parameters{
		"n":       "12",
		"x":       ".25",
		"xs":      "1 2.5 1e3",
		"lengths": "1e6 2000000 10.9",
		"bad":     "twelve",
	}

	n, err := params.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = params.IntOr("missing", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	x, err := params.Float("x")
	require.NoError(t, err)
	assert.Equal(t, .25, x)

	xs, err := params.Floats("xs")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 1000}, xs)

	lengths, err := params.Truncations("lengths")
	require.NoError(t, err)
	assert.Equal(t, []int{1000000, 2000000, 10}, lengths)

	_, err = params.Int("bad")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = params.Float("bad")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = params.Int("missing")
	assert.ErrorIs(t, err, ErrMissingParameter)

	assert.Equal(t, []string{"bad", "lengths", "n", "x", "xs"}, params.Names())
}

func TestLoadParameters(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "params.txt")
	require.NoError(t, os.WriteFile(filename, []byte("qtl_count 20\ntrait_name height\n"), 0644))

	params, err := LoadParameters(filename, []string{"qtl_count=3"})
	require.NoError(t, err)
	assert.Equal(t, "3", params["qtl_count"])
	assert.Equal(t, "height", params["trait_name"])

	_, err = LoadParameters(filepath.Join(dir, "missing.txt"), nil)
	assert.Error(t, err)
}

func TestLoadTOMLParameters(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "params.toml")
	content := `trait_generator = "demo"
qtl_count = 4
environmental_variance = 0.5
chromosome_lengths = [1000, 2000]
`
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))

	params, err := LoadParameters(filename, []string{"qtl_count=6"})
	require.NoError(t, err)
	assert.Equal(t, "demo", params["trait_generator"])
	assert.Equal(t, "6", params["qtl_count"])
	assert.Equal(t, "0.5", params["environmental_variance"])

	lengths, err := params.Truncations("chromosome_lengths")
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000}, lengths)
}

func TestTruncationsLargeChromosomes(t *testing.T) {
	lengths, err := Parameters{"chromosome_lengths": "3e9 248956422"}.Truncations("chromosome_lengths")
	require.NoError(t, err)
	assert.Equal(t, []int{3000000000, 248956422}, lengths)

	_, err = Parameters{"chromosome_lengths": "1e30"}.Truncations("chromosome_lengths")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestParseParametersLongLine(t *testing.T) {
	lengths := strings.TrimSpace(strings.Repeat("1000000 ", 10000))
	params, err := ParseParameters(strings.NewReader("trait_name t\nchromosome_lengths " + lengths + "\n"))
	require.NoError(t, err)

	values, err := params.Truncations("chromosome_lengths")
	require.NoError(t, err)
	assert.Len(t, values, 10000)
	assert.Equal(t, "t", params["trait_name"])
}
