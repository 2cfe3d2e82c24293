package phit

import "math"

// PhaseKey derives keystream material from a set of known clock
// frequencies. The key is not stored bits but a relationship: with the
// frequencies in hand, the phase vector Φ(t) = (f0·t mod 1, f1·t mod 1,
// f2·t mod 1) is computable for any instant, and the keystream follows from
// it. Without the frequencies the vector is noise.
//
// This is an experiment in temporal key material, not a cipher. The
// derivation is a toy KDF with no security analysis behind it; nothing in
// this package makes a cryptographic claim.
type PhaseKey struct {
	// Freqs holds the three clock frequencies in Hz. On Apple silicon the
	// natural triple is P-core, E-core and the 24 MHz generic timer.
	Freqs [3]float64
}

// KeystreamByte returns the keystream byte for position index at time t, in
// seconds. The three phases are weighted onto separate byte ranges of the
// combined value, the index adds a golden-ratio offset so message positions
// decorrelate, and the packed bits run through Mix64. The full double
// precision of the phase vector enters the mix, so a nanosecond of time or
// a fraction of a hertz changes every byte.
func (k PhaseKey) KeystreamByte(t float64, index int) byte {
	combined := math.Mod(k.Freqs[0]*t, 1)*256 +
		math.Mod(k.Freqs[1]*t, 1)*65536 +
		math.Mod(k.Freqs[2]*t, 1)*16777216 +
		float64(index)*0.618033988749895
	return byte(Mix64(math.Float64bits(combined)))
}

// XORKeystream writes src XOR keystream(t) into dst and returns the number
// of bytes transformed, the shorter of the two slices. The transform is its
// own inverse: applying it twice with the same key and time restores the
// input. dst and src may alias.
func (k PhaseKey) XORKeystream(t float64, dst, src []byte) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = src[i] ^ k.KeystreamByte(t, i)
	}
	return n
}

// PhaseLock gates access on the relative phase of one clock pair. With
// incommensurate frequencies the window recurs at the pair's beat period
// and stays closed the rest of the cycle, so the fraction of time the lock
// is open equals the window width.
type PhaseLock struct {
	Key    PhaseKey
	Center float64 // target relative phase in [-0.5, 0.5)
	Width  float64 // window width; Open accepts within Width/2 of Center
	Pair   int     // first clock of the pair (0, 1 or 2); the other is the next one
}

// Open reports whether the pair's relative phase at time t, in seconds,
// falls inside the window. The relative phase is normalized to [-0.5, 0.5)
// and the distance to the window center is taken on the circle, so windows
// straddling the wrap point behave like any other.
func (l PhaseLock) Open(t float64) bool {
	i := l.Pair
	j := (i + 1) % 3
	rel := math.Mod(l.Key.Freqs[i]*t, 1) - math.Mod(l.Key.Freqs[j]*t, 1)
	rel -= math.Round(rel)

	dist := math.Abs(rel - l.Center)
	if dist > 0.5 {
		dist = 1 - dist
	}
	return dist <= l.Width/2
}
