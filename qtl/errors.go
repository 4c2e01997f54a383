package qtl

import "errors"

var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownGenerator = errors.New("unknown generator")

	ErrEmptyDistribution = errors.New("empty frequency distribution")
	ErrLengthMismatch    = errors.New("array size mismatch")
	ErrInvalidWeight     = errors.New("weights must be positive and finite")
	ErrSampleCount       = errors.New("sample count must be at least 2")

	ErrLocusEffects      = errors.New("3 effect sizes required")
	ErrInvalidTrait      = errors.New("invalid trait")
	ErrZeroTotalVariance = errors.New("total variance is zero")

	ErrNonFiniteRate = errors.New("effect size rate is not finite")
	ErrFocalVariance = errors.New("focal qtl variance exceeds genetic variance")

	ErrOutputExists        = errors.New("output file already exists")
	ErrMalformedPopulation = errors.New("malformed population")
)
