package phit

import (
	"encoding/binary"
	"math/rand/v2"
)

// PRNG is a pseudo-random generator that draws every output word from a
// fresh pool extraction, so phase noise keeps perturbing the stream instead
// of merely seeding it once. It satisfies math/rand/v2's Source; wrap it in
// rand.New to get the stdlib distributions on top.
//
// The stream holds up against the battery in the stat package, but no
// cryptographic claim is made for it. Use crypto/rand where an adversary
// matters.
//
// A PRNG is not safe for concurrent use.
type PRNG struct {
	pool      *Pool
	generated uint64
}

var _ rand.Source = (*PRNG)(nil)

// NewPRNG returns a seeded generator. Seeding runs DefaultSeedRounds
// harvests (tunable with WithSeedRounds) so that around 64 phits of credit
// sit in the pool before the first output; an unseeded pool would emit a
// thinly mixed counter stream for its first few words.
func NewPRNG(opts ...Option) *PRNG {
	c := buildConfig(opts)
	r := &PRNG{pool: newPool(c)}
	for i := 0; i < c.seedRounds; i++ {
		r.pool.Harvest()
	}
	return r
}

// Uint64 returns the next output word.
func (r *PRNG) Uint64() uint64 {
	r.generated++
	return r.pool.Extract()
}

// Uint32 returns the top half of the next output word. The high bits are
// preferred because every lane rotation in Extract touches them.
func (r *PRNG) Uint32() uint32 {
	return uint32(r.Uint64() >> 32)
}

// Float64 returns a value in [0, 1) built from the top 53 bits of the next
// output word, the usual double-precision ladder.
func (r *PRNG) Float64() float64 {
	return float64(r.Uint64()>>11) / float64(1<<53)
}

// Uint32n returns a value in [0, max) by modulo reduction, or 0 if max is 0.
// The reduction keeps the usual modulo bias of at most max/2^64, which sits
// far below the noise floor of the extraction itself; callers that need
// exact uniformity should reject-sample on Uint64.
func (r *PRNG) Uint32n(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	return uint32(r.Uint64() % uint64(max))
}

// Fill overwrites buf with generator output, eight little-endian bytes per
// word. A partial tail consumes one extra word and keeps its low bytes.
func (r *PRNG) Fill(buf []byte) {
	for len(buf) >= 8 {
		binary.LittleEndian.PutUint64(buf, r.Uint64())
		buf = buf[8:]
	}
	if len(buf) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], r.Uint64())
		copy(buf, tail[:])
	}
}

// Read implements io.Reader over the generator stream. It always fills p
// completely and never returns an error.
func (r *PRNG) Read(p []byte) (int, error) {
	r.Fill(p)
	return len(p), nil
}

// Generated returns how many output words have been produced. Diagnostic
// only.
func (r *PRNG) Generated() uint64 { return r.generated }
