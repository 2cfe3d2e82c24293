package phit

import (
	"errors"
	"math"
	"testing"

	phiterrors "github.com/triphase/phit/errors"
)

func benchmarkSamplerWith(b *testing.B, work Workload) {
	s := NewSampler(WithWorkload(work))
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(uint64(s.Sample()))
	}
}

func BenchmarkSampleALU(b *testing.B)    { benchmarkSamplerWith(b, ALUWorkload(DefaultWorkIters)) }
func BenchmarkSampleBranch(b *testing.B) { benchmarkSamplerWith(b, BranchWorkload(DefaultWorkIters)) }
func BenchmarkSampleHash(b *testing.B)   { benchmarkSamplerWith(b, HashWorkload(512)) }
func BenchmarkSampleMemory(b *testing.B) { benchmarkSamplerWith(b, MemoryWorkload(16)) }
func BenchmarkSampleNop(b *testing.B)    { benchmarkSamplerWith(b, NopWorkload) }

func BenchmarkSampleCompound2(b *testing.B) {
	s := NewSampler()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(uint64(s.SampleCompound(2)))
	}
}

func BenchmarkDelta(b *testing.B) {
	s := NewSampler()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(s.Delta())
	}
}

func BenchmarkQuickRoute8(b *testing.B) {
	s := NewSampler()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(uint64(s.QuickRoute(8)))
	}
}

func BenchmarkQuickRouteParallel(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		s := NewSampler()
		for pb.Next() {
			discard(uint64(s.QuickRoute(8)))
		}
	})
}

func BenchmarkPoolFeed(b *testing.B) {
	p := NewPool()
	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		p.Feed(uint64(i))
	}
}

func BenchmarkPoolExtract(b *testing.B) {
	p := NewPool()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(p.Extract())
	}
}

func BenchmarkUint64(b *testing.B) {
	r := NewPRNG()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(r.Uint64())
	}
}

func BenchmarkFloat64(b *testing.B) {
	r := NewPRNG()
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(math.Float64bits(r.Float64()))
	}
}

func benchmarkFillSize(b *testing.B, size int) {
	r := NewPRNG()
	buf := make([]byte, size)
	b.SetBytes(int64(size))
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		r.Fill(buf)
	}
}

func BenchmarkFill64B(b *testing.B) { benchmarkFillSize(b, 64) }
func BenchmarkFill1K(b *testing.B)  { benchmarkFillSize(b, 1024) }
func BenchmarkFill64K(b *testing.B) { benchmarkFillSize(b, 65536) }

func BenchmarkRouteSample(b *testing.B) {
	r, err := NewRouter()
	if err != nil {
		b.Fatal(err)
	}
	if _, err := r.Calibrate(8, 20000); err != nil && !errors.Is(err, phiterrors.ErrDomainOverflow) {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		discard(uint64(r.RouteSample()))
	}
}

func BenchmarkRouteLookup(b *testing.B) {
	r, err := NewRouter()
	if err != nil {
		b.Fatal(err)
	}
	if _, err := r.Calibrate(8, 20000); err != nil && !errors.Is(err, phiterrors.ErrDomainOverflow) {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		discard(uint64(r.Route(uint64(i) & 2047)))
	}
}

func BenchmarkCalibrate(b *testing.B) {
	r, err := NewRouter()
	if err != nil {
		b.Fatal(err)
	}
	const samples = 20000
	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		if _, err := r.Calibrate(8, samples); err != nil && !errors.Is(err, phiterrors.ErrDomainOverflow) {
			b.Fatal(err)
		}
	}
	b.ReportMetric(float64(samples)*float64(b.N)/b.Elapsed().Seconds(), "deltas/sec")
}

func BenchmarkMix32(b *testing.B) {
	b.ReportAllocs()
	x := uint32(0x12345678)
	for b.Loop() {
		x = Mix32(x)
	}
	discard(uint64(x))
}

func BenchmarkMix64(b *testing.B) {
	b.ReportAllocs()
	x := uint64(0x123456789ABCDEF0)
	for b.Loop() {
		x = Mix64(x)
	}
	discard(x)
}

func BenchmarkXORKeystream(b *testing.B) {
	k := PhaseKey{Freqs: [3]float64{3228e6, 2064e6, 24e6}}
	buf := make([]byte, 4096)
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		k.XORKeystream(1.5, buf, buf)
	}
}
