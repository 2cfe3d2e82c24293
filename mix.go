package phit

// Integer avalanche mixers used for whitening throughout the library: the
// sampler whitens packed phase keys with Mix32, and the entropy pool whitens
// every feed with Mix64. Both are fixed multiply-xor-shift chains chosen for
// strong avalanche behavior: flipping one input bit flips about half of the
// output bits.
//
// Determinism is part of the contract. Identical inputs must always produce
// identical outputs so that whitening never masks a broken sample source and
// so that tests can pin exact values.

// Mix32 applies a 32-bit avalanche transform to key.
//
// The chain multiplies by Knuth's 2654435761 (the odd fractional part of the
// golden ratio scaled to 32 bits) and by the MurmurHash3 finalizer constant
// 0x85ebca6b. Both multipliers are odd, so each multiplication is a bijection
// on uint32; combined with the xor-shifts the whole chain remains invertible,
// which means Mix32 cannot collapse distinct raw samples onto one key.
func Mix32(key uint32) uint32 {
	key *= 2654435761
	key ^= key >> 16
	key *= 0x85ebca6b
	key ^= key >> 13
	return key
}

// Mix64 applies the SplitMix64 finalizer to key.
//
// Same bijectivity argument as Mix32: odd multipliers and xor-shifts compose
// to an invertible transform on uint64. This is the whitening step between
// raw timing material and the entropy pool lanes.
func Mix64(key uint64) uint64 {
	key = (key ^ (key >> 30)) * 0xBF58476D1CE4E5B9
	key = (key ^ (key >> 27)) * 0x94D049BB133111EB
	return key ^ (key >> 31)
}

// goldenGamma is the odd fractional part of the golden ratio scaled to 64
// bits. Used as a Weyl increment: adding i*goldenGamma before mixing keeps
// successive feeds on distinct trajectories even when the raw samples repeat.
const goldenGamma = 0x9E3779B97F4A7C15
