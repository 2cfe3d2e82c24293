package phit

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

const pageSize = 4096

// MemoryWorkload returns a workload that chases a shuffled pointer cycle
// through an anonymous mapping of the given number of 4 KiB pages. Every
// load depends on the previous one, so the walk runs at memory latency and
// the timed interval is dominated by cache and fabric phase rather than the
// core pipeline. Each call advances 256 steps around the cycle, picking up
// where the previous call stopped.
//
// The mapping lives for the process. If the mapping cannot be created the
// ALU workload is returned instead, so sampling degrades rather than fails.
// Non-positive pages fall back to 16.
func MemoryWorkload(pages int) Workload {
	if pages <= 0 {
		pages = 16
	}
	region, err := mmap.MapRegion(nil, pages*pageSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return ALUWorkload(DefaultWorkIters)
	}
	slots := len(region) / 8

	// Sattolo's shuffle leaves next as a single cycle over all slots, which
	// defeats the stride prefetcher and guarantees every slot is visited.
	next := make([]uint64, slots)
	for i := range next {
		next[i] = uint64(i)
	}
	x := uint64(workSeed)
	for i := slots - 1; i >= 1; i-- {
		x = x*lcgMul + lcgInc
		j := int((x >> 32) % uint64(i))
		next[i], next[j] = next[j], next[i]
	}
	for i, n := range next {
		binary.LittleEndian.PutUint64(region[i*8:], n)
	}

	var cursor atomic.Uint64
	return func() uint64 {
		cur := cursor.Load()
		var acc uint64
		for i := 0; i < 256; i++ {
			cur = binary.LittleEndian.Uint64(region[cur*8:])
			acc ^= cur
		}
		cursor.Store(cur)
		return acc
	}
}

// MemoryStrideWorkload returns a workload that sweeps the same kind of
// anonymous mapping with a fixed byte stride. Strided loads are
// prefetch-friendly, so the sweep runs near cache bandwidth; the contrast
// between its delta histogram and MemoryWorkload's separates bandwidth-bound
// from latency-bound phase noise. Strides below 8 bytes are raised to 64.
// Non-positive pages fall back to 16.
func MemoryStrideWorkload(pages, stride int) Workload {
	if pages <= 0 {
		pages = 16
	}
	if stride < 8 {
		stride = 64
	}
	region, err := mmap.MapRegion(nil, pages*pageSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return ALUWorkload(DefaultWorkIters)
	}
	x := uint64(workSeed)
	for off := 0; off+8 <= len(region); off += 8 {
		x = x*lcgMul + lcgInc
		binary.LittleEndian.PutUint64(region[off:], x)
	}
	limit := len(region) - 8
	return func() uint64 {
		var acc uint64
		for off := 0; off <= limit; off += stride {
			acc ^= binary.LittleEndian.Uint64(region[off:])
		}
		return acc
	}
}
