package limiter

import (
	"runtime"
	"sync"
	"time"
)

// workSlice is the nominal burst of work between throttle checks.
const workSlice = 10 * time.Millisecond

// CPULimiter paces tight loops (directory scans, per-file operations) so
// the process stays near a target CPU percentage. It is cooperative: the
// loop must call Throttle between units of work. For hard guarantees use
// cgroups or systemd limits instead.
//
// A single limiter may be shared by concurrent scans, so all state is
// guarded by a mutex; the sleep itself happens outside the lock.
type CPULimiter struct {
	mu         sync.Mutex
	maxPercent float64
	lastSleep  time.Time
}

// NewCPULimiter creates a limiter targeting maxPercent CPU. Values outside
// (0, 100) disable throttling.
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastSleep:  time.Now(),
	}
}

// Throttle sleeps when the loop has run for at least one work slice since
// the last sleep. The sleep length is sized so that work time over total
// time approximates maxPercent.
func (l *CPULimiter) Throttle() {
	l.mu.Lock()
	maxPercent := l.maxPercent
	if maxPercent <= 0 || maxPercent >= 100 {
		l.mu.Unlock()
		return
	}

	var sleepTime time.Duration
	if time.Since(l.lastSleep) > workSlice {
		sleepPercent := 100.0 - maxPercent
		sleepTime = time.Duration(float64(workSlice) * (sleepPercent / maxPercent))
		l.lastSleep = time.Now()
	}
	l.mu.Unlock()

	if sleepTime > 0 {
		time.Sleep(sleepTime)
	}

	runtime.Gosched()
}

// SetMaxPercent updates the target CPU percentage.
func (l *CPULimiter) SetMaxPercent(maxPercent float64) {
	l.mu.Lock()
	l.maxPercent = maxPercent
	l.mu.Unlock()
}
