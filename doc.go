// Package phit extracts usable randomness from the phase relationship
// between asynchronous clock domains: a CPU-bound workload and the
// free-running platform timer never tick in step, and the low bits of the
// interval between them drift chaotically at nanosecond scale. The library
// turns that drift into whitened samples, a pooled pseudo-random stream,
// and balanced routing decisions, and ships the statistical instruments
// that certify all three.
//
// # Basic Usage
//
// Drawing random words:
//
//	rng := phit.NewPRNG()
//	v := rng.Uint64()
//	f := rng.Float64()
//
// Routing onto 8 slots with calibrated uniformity:
//
//	router, err := phit.NewRouter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := router.Calibrate(8, 50000); err != nil {
//	    log.Println(err) // table still usable on ErrDomainOverflow
//	}
//	slot := router.RouteSample()
//
// Checking that extraction is alive on the current machine:
//
//	if !phit.SelfTest() {
//	    log.Fatal("phase extraction degraded on this platform")
//	}
//
// # Package Structure
//
//   - Sampling: sampler.go (Sample, SampleCompound, Delta, Probe, QuickRoute)
//   - Whitening: mix.go (Mix32, Mix64)
//   - Accumulation: pool.go (Feed, Harvest, Extract), prng.go (PRNG)
//   - Routing: router.go (Calibrate, Route, RouteSample)
//   - Workloads: workload.go, workload_mem.go (ALU, branch, hash, memory)
//   - Configuration: options.go (Option, With* functions)
//   - Platform timers: timer_*.go (OS-specific raw monotonic clocks)
//   - Validation: stat/ (bit-stream tests, uniformity, delta summaries)
//   - Fan-out: dispatch/ (phase-routed worker pools)
//
// # Caveats
//
// Nothing here is cryptographically secure. The generator demonstrates that
// clock-phase noise is a genuine entropy source without dedicated RNG
// hardware; it is not a replacement for crypto/rand. Quality is also
// platform-dependent: timer resolution, DVFS and scheduler tick structure
// all shape the delta distribution, which is why SelfTest and the stat
// package exist.
package phit
