//go:build !linux && !darwin

package phit

import "time"

// nowNS falls back to the runtime's monotonic reading. It may be NTP-slewed
// or coarser than the raw hardware counter, which widens the delta histogram
// but does not change any extraction semantics.
func nowNS() uint64 {
	return uint64(time.Since(timerEpoch))
}

var timerEpoch = time.Now()
