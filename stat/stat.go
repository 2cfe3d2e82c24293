// Package stat holds the instruments that certify phase extraction: NIST
// SP 800-22 inspired bit-stream tests for generator output, chi-squared
// uniformity checks for routing slots, and distribution summaries for raw
// timing deltas.
//
// Every function is pure: it reads caller-supplied data and returns a
// result carrying both the statistic and the verdict against the exported
// threshold. Nothing in this package draws samples; the caller decides what
// stream to put under the instrument.
package stat

import (
	"math"
	"math/bits"
)

const (
	// ZCritical is the two-sided normal critical value at p ≈ 0.001. The
	// bit-stream tests pass while their absolute z-score stays below it.
	ZCritical = 3.29

	// ByteChi2Critical is the chi-squared critical value for 255 degrees of
	// freedom at p ≈ 0.01, the byte-distribution passing bar.
	ByteChi2Critical = 310.0
)

// ChiSquaredCritical approximates the p ≈ 0.05 chi-squared critical value
// for df degrees of freedom as df + 2·sqrt(df). The approximation runs a
// little strict of the exact point, which suits a field instrument.
func ChiSquaredCritical(df int) float64 {
	if df <= 0 {
		return 0
	}
	return float64(df) + 2*math.Sqrt(float64(df))
}

// MonobitResult reports the one-bit fraction of a stream.
type MonobitResult struct {
	Bits  int
	Ones  int
	Ratio float64
	Z     float64 // absolute z-score of Ratio against 0.5
	Pass  bool
}

// Monobit counts one bits across words and scores the deviation from an
// even split. An empty input fails.
func Monobit(words []uint64) MonobitResult {
	n := len(words) * 64
	if n == 0 {
		return MonobitResult{}
	}
	ones := 0
	for _, w := range words {
		ones += bits.OnesCount64(w)
	}
	ratio := float64(ones) / float64(n)
	z := math.Abs(ratio-0.5) / math.Sqrt(0.25/float64(n))
	return MonobitResult{
		Bits:  n,
		Ones:  ones,
		Ratio: ratio,
		Z:     z,
		Pass:  z < ZCritical,
	}
}

// RunsResult reports the count of maximal same-bit runs in a stream.
type RunsResult struct {
	Bits     int
	Ones     int
	Runs     int
	Expected float64
	Z        float64
	Pass     bool
}

// Runs counts maximal runs of equal bits, walking each word from its least
// significant bit, and scores the count against the expectation for the
// observed bias. A stream can pass Monobit with long stretches of frozen
// bits; this is the test that catches them. An empty input fails.
func Runs(words []uint64) RunsResult {
	n := len(words) * 64
	if n == 0 {
		return RunsResult{}
	}
	runs := 1
	ones := 0
	var prev uint64
	first := true
	for _, w := range words {
		for b := 0; b < 64; b++ {
			bit := (w >> b) & 1
			ones += int(bit)
			if !first && bit != prev {
				runs++
			}
			prev = bit
			first = false
		}
	}

	nf := float64(n)
	pi := float64(ones) / nf
	expected := 1 + 2*nf*pi*(1-pi)
	variance := 2 * nf * pi * (1 - pi) * (2*nf*pi*(1-pi) - 1) / (nf - 1)
	z := math.Abs(float64(runs)-expected) / math.Sqrt(variance)
	return RunsResult{
		Bits:     n,
		Ones:     ones,
		Runs:     runs,
		Expected: expected,
		Z:        z,
		Pass:     z < ZCritical,
	}
}

// ChiSquaredResult reports a goodness-of-fit check against the uniform
// distribution.
type ChiSquaredResult struct {
	Buckets      int
	Observations int
	Chi2         float64
	Critical     float64
	MaxBias      float64 // worst relative deviation of any bucket from its expectation
	Pass         bool
}

// ByteChiSquared buckets every byte of every word, least significant byte
// first, and scores the histogram against uniform over 256 values at the
// ByteChi2Critical bar.
func ByteChiSquared(words []uint64) ChiSquaredResult {
	var hist [256]int
	for _, w := range words {
		for b := 0; b < 8; b++ {
			hist[byte(w>>(8*b))]++
		}
	}
	return chiSquared(hist[:], ByteChi2Critical)
}

// SlotChiSquared scores observed slot counts against uniform occupancy,
// with the critical value taken from ChiSquaredCritical for len(counts)-1
// degrees of freedom.
func SlotChiSquared(counts []int) ChiSquaredResult {
	return chiSquared(counts, ChiSquaredCritical(len(counts)-1))
}

func chiSquared(counts []int, critical float64) ChiSquaredResult {
	total := 0
	for _, c := range counts {
		total += c
	}
	res := ChiSquaredResult{
		Buckets:      len(counts),
		Observations: total,
		Critical:     critical,
	}
	if len(counts) == 0 || total == 0 {
		return res
	}
	expected := float64(total) / float64(len(counts))
	for _, c := range counts {
		diff := float64(c) - expected
		res.Chi2 += diff * diff / expected
		if bias := math.Abs(float64(c)/expected - 1); bias > res.MaxBias {
			res.MaxBias = bias
		}
	}
	res.Pass = res.Chi2 < critical
	return res
}

// BitEntropyResult reports the Shannon entropy of each of the 64 bit
// positions across a word stream.
type BitEntropyResult struct {
	Words      int
	PerBit     [64]float64
	Total      float64 // out of 64
	MinBit     int
	MinEntropy float64
	MaxBit     int
	MaxEntropy float64
}

// Verdict bands the total entropy: above 63 bits excellent, above 60 good,
// above 50 acceptable, otherwise poor.
func (r BitEntropyResult) Verdict() string {
	switch {
	case r.Total > 63:
		return "excellent"
	case r.Total > 60:
		return "good"
	case r.Total > 50:
		return "acceptable"
	default:
		return "poor"
	}
}

// BitEntropy measures the Shannon entropy of every bit position across the
// stream. Monobit sees only the aggregate bias; this is the instrument that
// localizes a weak or frozen bit to its position.
func BitEntropy(words []uint64) BitEntropyResult {
	res := BitEntropyResult{Words: len(words)}
	if len(words) == 0 {
		return res
	}
	var ones [64]int
	for _, w := range words {
		for b := 0; b < 64; b++ {
			if (w>>b)&1 == 1 {
				ones[b]++
			}
		}
	}
	res.MinEntropy = 1
	n := float64(len(words))
	for b := 0; b < 64; b++ {
		h := binaryEntropy(float64(ones[b]) / n)
		res.PerBit[b] = h
		res.Total += h
		if h < res.MinEntropy {
			res.MinEntropy = h
			res.MinBit = b
		}
		if h > res.MaxEntropy {
			res.MaxEntropy = h
			res.MaxBit = b
		}
	}
	return res
}

func binaryEntropy(p1 float64) float64 {
	p0 := 1 - p1
	if p0 <= 1e-10 || p1 <= 1e-10 {
		return 0
	}
	return -(p0*math.Log2(p0) + p1*math.Log2(p1))
}

// ShannonEntropy returns the entropy in bits of the empirical distribution
// described by counts. This is the phit yield of one draw from whatever
// process produced the histogram. Empty histograms return 0.
func ShannonEntropy(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// Summary condenses a raw delta series. Std is the population standard
// deviation.
type Summary struct {
	Count int
	Min   uint64
	Max   uint64
	Mean  float64
	Std   float64
}

// Range returns the spread between the largest and smallest value.
func (s Summary) Range() uint64 { return s.Max - s.Min }

// DeltaSummary computes the summary of a raw delta series. An empty series
// returns the zero Summary.
func DeltaSummary(deltas []uint64) Summary {
	if len(deltas) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(deltas), Min: deltas[0], Max: deltas[0]}
	var sum float64
	for _, d := range deltas {
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
		sum += float64(d)
	}
	s.Mean = sum / float64(s.Count)

	var sq float64
	for _, d := range deltas {
		diff := float64(d) - s.Mean
		sq += diff * diff
	}
	s.Std = math.Sqrt(sq / float64(s.Count))
	return s
}

// Autocorrelation returns the normalized autocorrelation of the series at
// the given lag, in [-1, 1]. A peak at some lag means periodic structure,
// scheduler ticks and DVFS transitions being the usual suspects.
// Non-positive lags, lags past the series and series with no variance all
// return 0.
func Autocorrelation(deltas []uint64, lag int) float64 {
	n := len(deltas)
	if lag <= 0 || lag >= n {
		return 0
	}

	var mean float64
	for _, d := range deltas {
		mean += float64(d)
	}
	mean /= float64(n)

	var variance float64
	for _, d := range deltas {
		diff := float64(d) - mean
		variance += diff * diff
	}
	variance /= float64(n)
	if variance == 0 {
		return 0
	}

	var cov float64
	for i := 0; i < n-lag; i++ {
		cov += (float64(deltas[i]) - mean) * (float64(deltas[i+lag]) - mean)
	}
	cov /= float64(n - lag)
	return cov / variance
}
