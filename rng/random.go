package rng

import (
	"encoding/binary"

	"github.com/aead/chacha20/chacha"
	"github.com/hhcho/frand"
	"golang.org/x/exp/rand"
)

const (
	bufferSize int = 1024
	rounds     int = 20
)

// Source is a ChaCha keystream exposed as a rand.Source. The 64-bit seed
// fills the low bytes of the ChaCha key, so equal seeds give equal streams.
type Source struct {
	seed uint64
	prg  *frand.RNG
	buf  []byte
}

func NewSource(seed uint64) *Source {
	src := &Source{buf: make([]byte, 8)}
	src.Seed(seed)
	return src
}

func (src *Source) Seed(seed uint64) {
	key := make([]byte, chacha.KeySize)
	binary.LittleEndian.PutUint64(key, seed)
	src.seed = seed
	src.prg = frand.NewCustom(key, bufferSize, rounds)
}

func (src *Source) Uint64() uint64 {
	src.prg.Read(src.buf)
	return binary.LittleEndian.Uint64(src.buf)
}

func (src *Source) InitialSeed() uint64 {
	return src.seed
}

// New returns the single random stream a run threads through every
// generator. Two streams built from the same seed are identical.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(uint64(seed)))
}

// NewFromEntropy seeds a stream from system entropy and returns the seed so
// the run can be reported and reproduced.
func NewFromEntropy() (*rand.Rand, int64) {
	b := make([]byte, 8)
	frand.Read(b)
	seed := int64(binary.LittleEndian.Uint64(b) >> 1)
	return New(seed), seed
}
