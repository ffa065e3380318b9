package worker

import (
	cryptoRand "crypto/rand"
	"math/big"
	"math/rand/v2"
)

// RandomSource abstracts integer randomness so tests can seed it.
type RandomSource interface {
	IntN(n int) int // [0, n)
}

// crypto random: default generation method
type cryptoRNG struct{}

func (cryptoRNG) IntN(n int) int {
	v, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// back to math/rand/v2
		return rand.IntN(n)
	}
	return int(v.Int64())
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (tests, Monte Carlo runs)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }

// UniformInt draws uniformly from [lo, hi]. A collapsed or inverted range
// returns lo.
func UniformInt(rng RandomSource, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + int64(rng.IntN(int(hi-lo+1)))
}
