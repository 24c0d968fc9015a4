// Package utils holds small test-support helpers shared across packages.
package utils

import (
	"runtime"
	"time"
)

// TestReporter is the subset of testing.T the leak detector needs. Taking
// the interface keeps the detector testable against itself.
type TestReporter interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// GoroutineLeakDetector flags tests that exit with more goroutines than
// they started with. Sample with Start before the work and Check after it.
type GoroutineLeakDetector struct {
	t             TestReporter
	initialCount  int
	allowedGrowth int
	settleTimeout time.Duration
}

// NewGoroutineLeakDetector creates a detector reporting through t.
func NewGoroutineLeakDetector(t TestReporter) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		t:             t,
		settleTimeout: 2 * time.Second,
	}
}

// AllowGrowth permits n extra goroutines, for tests whose infrastructure
// legitimately outlives them.
func (d *GoroutineLeakDetector) AllowGrowth(n int) *GoroutineLeakDetector {
	d.allowedGrowth = n
	return d
}

// Start records the baseline goroutine count.
func (d *GoroutineLeakDetector) Start() {
	d.initialCount = runtime.NumGoroutine()
}

// Check polls until the goroutine count settles back to the baseline or the
// settle timeout passes, then reports any goroutines that never exited.
// Polling instead of a fixed sleep keeps passing tests fast.
func (d *GoroutineLeakDetector) Check() {
	d.t.Helper()

	deadline := time.Now().Add(d.settleTimeout)
	var current int
	for {
		current = runtime.NumGoroutine()
		if current <= d.initialCount+d.allowedGrowth {
			return
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	d.t.Errorf("goroutine leak: started with %d, still %d after %v (allowed growth %d)\n%s",
		d.initialCount, current, d.settleTimeout, d.allowedGrowth, buf[:n])
}
