// Phitlab is the experiment driver for the phit library: it measures raw
// delta distributions, runs the statistical battery against the generator,
// verifies routing uniformity and compares whitening functions, all on the
// live platform.
//
// Usage:
//
//	go run ./cmd/phitlab -exp deltas -samples 200000
//
// Experiments:
//
//	deltas     raw delta histogram and summary for the default workload
//	bits       PRNG bit-stream battery (monobit, runs, bytes, bit entropy)
//	autocorr   delta autocorrelation scan over lags
//	workloads  delta spectrum across workload strategies
//	levels     distinct quantized timing levels
//	prng       sample output and throughput of the generator
//	route      CDF router calibration plus live uniformity check
//	sweep      router uniformity across slot counts
//	dispatch   phase-routed worker pool balance
//	selftest   quick platform confidence bundle
//	whiteners  avalanche and uniformity of Mix64 vs xxHash64, XXH3, Murmur3
//
// Flags override environment defaults (PHITLAB_SAMPLES, PHITLAB_SLOTS,
// PHITLAB_WORKERS, PHITLAB_LAGS, PHITLAB_TASKS).
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/bits"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	"github.com/triphase/phit"
	"github.com/triphase/phit/dispatch"
	phiterrors "github.com/triphase/phit/errors"
	"github.com/triphase/phit/stat"
)

type settings struct {
	Samples int `env:"PHITLAB_SAMPLES" envDefault:"100000"`
	Slots   int `env:"PHITLAB_SLOTS"   envDefault:"8"`
	Workers int `env:"PHITLAB_WORKERS" envDefault:"4"`
	Lags    int `env:"PHITLAB_LAGS"    envDefault:"100"`
	Tasks   int `env:"PHITLAB_TASKS"   envDefault:"50000"`
}

var (
	passText = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	failText = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	log.SetFlags(0)

	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	exp := flag.String("exp", "selftest", "experiment to run (see package doc)")
	samples := flag.Int("samples", cfg.Samples, "sample or draw count")
	slots := flag.Int("slots", cfg.Slots, "router slot count")
	workers := flag.Int("workers", cfg.Workers, "dispatch worker count")
	lags := flag.Int("lags", cfg.Lags, "autocorrelation scan depth")
	tasks := flag.Int("tasks", cfg.Tasks, "dispatch task count")
	flag.Parse()

	switch *exp {
	case "deltas":
		runDeltas(*samples)
	case "bits":
		runBits(*samples)
	case "autocorr":
		runAutocorr(*samples, *lags)
	case "workloads":
		runWorkloads(*samples)
	case "levels":
		runLevels(*samples)
	case "prng":
		runPRNG(*samples)
	case "route":
		runRoute(*slots, *samples)
	case "sweep":
		runSweep(*samples)
	case "dispatch":
		runDispatch(*workers, *tasks)
	case "selftest":
		runSelfTest()
	case "whiteners":
		runWhiteners(*samples)
	default:
		log.Fatalf("unknown experiment %q", *exp)
	}
}

func newTable(headers ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	return t
}

func verdict(ok bool) string {
	if ok {
		return passText("PASS")
	}
	return failText("FAIL")
}

func bar(n, max, width int) string {
	if max <= 0 {
		return ""
	}
	w := n * width / max
	if w > width {
		w = width
	}
	return strings.Repeat("#", w)
}

func runDeltas(samples int) {
	s := phit.NewSampler()
	deltas := make([]uint64, samples)
	counts := make(map[uint64]int)
	for i := range deltas {
		d := s.Delta()
		deltas[i] = d
		counts[d]++
	}
	sum := stat.DeltaSummary(deltas)

	type entry struct {
		delta uint64
		n     int
	}
	top := make([]entry, 0, len(counts))
	for d, n := range counts {
		top = append(top, entry{d, n})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].n > top[j].n })
	if len(top) > 20 {
		top = top[:20]
	}

	t := newTable("Delta ns", "Ticks", "Count", "Share", "")
	for _, e := range top {
		t.Append([]string{
			fmt.Sprint(e.delta),
			fmt.Sprint(phit.Quantize(e.delta)),
			fmt.Sprint(e.n),
			fmt.Sprintf("%5.2f%%", 100*float64(e.n)/float64(samples)),
			bar(e.n, top[0].n, 30),
		})
	}
	t.Render()

	hist := make([]int, 0, len(counts))
	for _, n := range counts {
		hist = append(hist, n)
	}
	fmt.Printf("\nmean %.1f ns  std %.1f ns  range %d ns  distinct %d  entropy %.2f bits/delta\n",
		sum.Mean, sum.Std, sum.Range(), len(counts), stat.ShannonEntropy(hist))
}

func runBits(samples int) {
	rng := phit.NewPRNG()
	fmt.Printf("drawing %d words...\n", samples)
	words := make([]uint64, samples)
	for i := range words {
		words[i] = rng.Uint64()
	}

	mono := stat.Monobit(words)
	runs := stat.Runs(words)
	bcs := stat.ByteChiSquared(words)
	bh := stat.BitEntropy(words)

	t := newTable("Test", "Statistic", "Threshold", "Verdict")
	t.Append([]string{"monobit", fmt.Sprintf("z=%.2f (ones %.4f)", mono.Z, mono.Ratio),
		fmt.Sprintf("z<%.2f", stat.ZCritical), verdict(mono.Pass)})
	t.Append([]string{"runs", fmt.Sprintf("z=%.2f (%d runs)", runs.Z, runs.Runs),
		fmt.Sprintf("z<%.2f", stat.ZCritical), verdict(runs.Pass)})
	t.Append([]string{"bytes", fmt.Sprintf("chi2=%.1f", bcs.Chi2),
		fmt.Sprintf("chi2<%.0f", bcs.Critical), verdict(bcs.Pass)})
	t.Append([]string{"bit entropy", fmt.Sprintf("%.2f/64", bh.Total),
		">63 excellent", entropyVerdict(bh.Verdict())})
	t.Render()

	fmt.Printf("\nper-bit entropy [0..63]: [%s]\n", entropyBars(bh.PerBit))
	fmt.Printf("weakest bit %d (%.4f)  strongest bit %d (%.4f)\n",
		bh.MinBit, bh.MinEntropy, bh.MaxBit, bh.MaxEntropy)
	fmt.Println("legend: # >0.9 bit, + >0.5, . >0.1")
}

func entropyVerdict(v string) string {
	switch v {
	case "excellent", "good":
		return passText(v)
	case "acceptable":
		return warnText(v)
	default:
		return failText(v)
	}
}

func entropyBars(h [64]float64) string {
	var b strings.Builder
	for _, v := range h {
		switch {
		case v > 0.9:
			b.WriteByte('#')
		case v > 0.5:
			b.WriteByte('+')
		case v > 0.1:
			b.WriteByte('.')
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func runAutocorr(samples, lags int) {
	s := phit.NewSampler()
	deltas := make([]uint64, samples)
	for i := range deltas {
		deltas[i] = s.Delta()
	}

	peakLag := 0
	peakR := 0.0
	t := newTable("Lag", "r", "")
	for lag := 1; lag <= lags; lag++ {
		r := stat.Autocorrelation(deltas, lag)
		if math.Abs(r) > math.Abs(peakR) {
			peakR, peakLag = r, lag
		}
		notable := lag > 2 && math.Abs(r) > 0.05
		if lag <= 10 || lag%25 == 0 || notable {
			mark := ""
			if notable {
				mark = "peak"
			}
			t.Append([]string{fmt.Sprint(lag), fmt.Sprintf("%+.6f", r), mark})
		}
	}
	t.Render()

	fmt.Printf("\nstrongest correlation: lag=%d r=%+.6f\n", peakLag, peakR)
	if math.Abs(peakR) > 0.05 {
		fmt.Println("periodic structure detected; scheduler ticks or DVFS are the usual suspects")
	}
}

func runWorkloads(samples int) {
	workloads := []struct {
		name string
		w    phit.Workload
	}{
		{"nop", phit.NopWorkload},
		{"alu-20", phit.ALUWorkload(20)},
		{"alu-50", phit.ALUWorkload(50)},
		{"branch-20", phit.BranchWorkload(20)},
		{"hash-1k", phit.HashWorkload(1024)},
		{"mem-chase", phit.MemoryWorkload(16)},
		{"mem-stride", phit.MemoryStrideWorkload(16, 64)},
	}

	t := newTable("Workload", "Mean ns", "Std", "Range", "Distinct", "H bits")
	for _, wl := range workloads {
		s := phit.NewSampler(phit.WithWorkload(wl.w))
		deltas := make([]uint64, samples)
		counts := make(map[uint64]int)
		for i := range deltas {
			d := s.Delta()
			deltas[i] = d
			counts[d]++
		}
		sum := stat.DeltaSummary(deltas)
		hist := make([]int, 0, len(counts))
		for _, n := range counts {
			hist = append(hist, n)
		}
		t.Append([]string{
			wl.name,
			fmt.Sprintf("%.1f", sum.Mean),
			fmt.Sprintf("%.1f", sum.Std),
			fmt.Sprint(sum.Range()),
			fmt.Sprint(len(counts)),
			fmt.Sprintf("%.2f", stat.ShannonEntropy(hist)),
		})
	}
	t.Render()
}

func runLevels(samples int) {
	s := phit.NewSampler()
	levels := make(map[int]int)
	for i := 0; i < samples; i++ {
		levels[phit.Quantize(s.Delta())]++
	}

	ticks := make([]int, 0, len(levels))
	maxN := 0
	for tk, n := range levels {
		ticks = append(ticks, tk)
		if n > maxN {
			maxN = n
		}
	}
	sort.Ints(ticks)

	omitted := 0
	t := newTable("Ticks", "~ns", "Count", "Share", "")
	for _, tk := range ticks {
		n := levels[tk]
		share := float64(n) / float64(samples)
		if share < 0.001 {
			omitted++
			continue
		}
		t.Append([]string{
			fmt.Sprint(tk),
			fmt.Sprintf("%.0f", float64(tk)*1e9/24e6),
			fmt.Sprint(n),
			fmt.Sprintf("%5.2f%%", 100*share),
			bar(n, maxN, 30),
		})
	}
	t.Render()

	hist := make([]int, 0, len(levels))
	for _, n := range levels {
		hist = append(hist, n)
	}
	fmt.Printf("\n%d distinct levels (%d below 0.1%% omitted), %.2f bits/level\n",
		len(levels), omitted, stat.ShannonEntropy(hist))
}

func runPRNG(samples int) {
	rng := phit.NewPRNG()
	fmt.Println("first outputs:")
	for i := 0; i < 10; i++ {
		fmt.Printf("  %2d: 0x%016X  (%.6f)\n", i, rng.Uint64(), rng.Float64())
	}

	var fold uint64
	start := time.Now()
	for i := 0; i < samples; i++ {
		fold ^= rng.Uint64()
	}
	elapsed := time.Since(start)

	perSec := float64(samples) / elapsed.Seconds()
	fmt.Printf("\nxor fold: %016X\n", fold)
	fmt.Printf("throughput: %.0f words/s (%.2f Mbit/s) over %d draws\n",
		perSec, perSec*64/1e6, samples)
	fmt.Printf("words generated: %d\n", rng.Generated())
}

func runRoute(slots, samples int) {
	r, err := phit.NewRouter()
	if err != nil {
		log.Fatalf("router: %v", err)
	}
	cal, err := r.Calibrate(slots, samples)
	if err != nil {
		if !errors.Is(err, phiterrors.ErrDomainOverflow) {
			log.Fatalf("calibrate: %v", err)
		}
		fmt.Printf("%s %v (%.2f%% overflow)\n", warnText("warning:"), err, 100*cal.OverflowFrac)
	}
	fmt.Printf("calibrated on %d deltas: distinct %d, min/mean/max %d/%.1f/%d ns, %.2f bits/delta\n\n",
		cal.Samples, cal.Distinct, cal.MinDelta, cal.MeanDelta, cal.MaxDelta, cal.Entropy)

	counts := make([]int, slots)
	for i := 0; i < samples; i++ {
		counts[r.RouteSample()]++
	}
	res := stat.SlotChiSquared(counts)

	maxN := 0
	for _, n := range counts {
		if n > maxN {
			maxN = n
		}
	}
	t := newTable("Slot", "Count", "Share", "")
	for i, n := range counts {
		t.Append([]string{
			fmt.Sprint(i),
			fmt.Sprint(n),
			fmt.Sprintf("%5.2f%%", 100*float64(n)/float64(samples)),
			bar(n, maxN, 30),
		})
	}
	t.Render()
	fmt.Printf("\ncdf routing: chi2=%.1f (crit %.1f, max bias %.1f%%) %s\n",
		res.Chi2, res.Critical, 100*res.MaxBias, verdict(res.Pass))

	s := phit.NewSampler()
	quick := make([]int, slots)
	for i := 0; i < samples; i++ {
		quick[s.QuickRoute(slots)]++
	}
	qres := stat.SlotChiSquared(quick)
	fmt.Printf("quick routing: chi2=%.1f (crit %.1f, max bias %.1f%%) %s\n",
		qres.Chi2, qres.Critical, 100*qres.MaxBias, verdict(qres.Pass))
}

func runSweep(samples int) {
	r, err := phit.NewRouter()
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	t := newTable("K slots", "Chi2", "Critical", "Max bias", "Verdict")
	for _, k := range []int{2, 4, 8, 16, 32, 64} {
		if _, err := r.Calibrate(k, samples); err != nil &&
			!errors.Is(err, phiterrors.ErrDomainOverflow) {
			log.Fatalf("calibrate %d: %v", k, err)
		}
		counts := make([]int, k)
		for i := 0; i < samples; i++ {
			counts[r.RouteSample()]++
		}
		res := stat.SlotChiSquared(counts)
		t.Append([]string{
			fmt.Sprint(k),
			fmt.Sprintf("%.1f", res.Chi2),
			fmt.Sprintf("%.1f", res.Critical),
			fmt.Sprintf("%.1f%%", 100*res.MaxBias),
			verdict(res.Pass),
		})
	}
	t.Render()
}

func runDispatch(workers, tasks int) {
	pool, err := dispatch.NewPool(context.Background(), workers)
	if err != nil {
		log.Fatalf("pool: %v", err)
	}

	var executed atomic.Uint64
	start := time.Now()
	for i := 0; i < tasks; i++ {
		err := pool.Submit(func(context.Context) error {
			executed.Add(1)
			return nil
		})
		if err != nil {
			log.Fatalf("submit: %v", err)
		}
	}
	if err := pool.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
	elapsed := time.Since(start)

	routed := pool.Counts()
	counts := make([]int, len(routed))
	maxN := 0
	for i, n := range routed {
		counts[i] = int(n)
		if counts[i] > maxN {
			maxN = counts[i]
		}
	}
	res := stat.SlotChiSquared(counts)

	t := newTable("Worker", "Tasks", "Share", "")
	for i, n := range counts {
		t.Append([]string{
			fmt.Sprint(i),
			fmt.Sprint(n),
			fmt.Sprintf("%5.2f%%", 100*float64(n)/float64(tasks)),
			bar(n, maxN, 30),
		})
	}
	t.Render()

	fmt.Printf("\nexecuted %d/%d tasks in %v (%.0f tasks/s)\n",
		executed.Load(), tasks, elapsed.Round(time.Millisecond),
		float64(tasks)/elapsed.Seconds())
	fmt.Printf("balance: chi2=%.1f (crit %.1f) %s\n", res.Chi2, res.Critical, verdict(res.Pass))
	fmt.Println("no shared counter involved; the clock phase did the spreading")
}

func runSelfTest() {
	start := time.Now()
	ok := phit.SelfTest()
	fmt.Printf("self-test %s in %v\n", verdict(ok), time.Since(start).Round(time.Millisecond))
	if !ok {
		fmt.Println("run -exp bits and -exp route for the detailed instruments")
		os.Exit(1)
	}
}

func runWhiteners(samples int) {
	hashBytes := func(h func([]byte) uint64) func(uint64) uint64 {
		return func(v uint64) uint64 {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], v)
			return h(b[:])
		}
	}
	whiteners := []struct {
		name string
		fn   func(uint64) uint64
	}{
		{"Mix64", phit.Mix64},
		{"xxHash64", hashBytes(xxhash.Sum64)},
		{"XXH3", hashBytes(xxh3.Hash)},
		{"Murmur3", hashBytes(murmur3.Sum64)},
	}

	const avalancheInputs = 2048
	t := newTable("Whitener", "Avalanche", "Byte chi2", "Monobit z", "Verdict")
	for _, w := range whiteners {
		var flips uint64
		for i := 0; i < avalancheInputs; i++ {
			base := w.fn(uint64(i))
			for b := 0; b < 64; b++ {
				flips += uint64(bits.OnesCount64(base ^ w.fn(uint64(i)^(1<<b))))
			}
		}
		avalanche := float64(flips) / float64(avalancheInputs*64)

		words := make([]uint64, samples)
		for i := range words {
			words[i] = w.fn(uint64(i))
		}
		bcs := stat.ByteChiSquared(words)
		mono := stat.Monobit(words)

		ok := bcs.Pass && mono.Pass && avalanche > 28 && avalanche < 36
		t.Append([]string{
			w.name,
			fmt.Sprintf("%.2f/32", avalanche),
			fmt.Sprintf("%.1f", bcs.Chi2),
			fmt.Sprintf("%.2f", mono.Z),
			verdict(ok),
		})
	}
	t.Render()
	fmt.Println("\navalanche: mean output bits flipped per input bit flip, ideal 32")
	fmt.Println("uniformity measured over sequential counter inputs")
}
