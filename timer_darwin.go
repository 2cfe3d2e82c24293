//go:build darwin

package phit

import (
	"time"

	"golang.org/x/sys/unix"
)

// nowNS reads CLOCK_UPTIME_RAW, the mach_absolute_time-backed clock. On Apple
// silicon this counts the 24 MHz generic timer, the asynchronous clock domain
// the sampler beats the CPU workload against.
func nowNS() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_UPTIME_RAW, &ts); err != nil {
		return uint64(time.Since(timerEpoch))
	}
	return uint64(ts.Nano())
}

var timerEpoch = time.Now()
