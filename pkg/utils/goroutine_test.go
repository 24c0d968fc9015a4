package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	failed  bool
	message string
}

func (r *recordingReporter) Helper() {}

func (r *recordingReporter) Errorf(format string, args ...interface{}) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
}

func TestLeakDetectorCleanRun(t *testing.T) {
	detector := NewGoroutineLeakDetector(t)
	detector.Start()

	done := make(chan struct{})
	go func() { close(done) }()
	<-done

	detector.Check()
}

func TestLeakDetectorFlagsLeak(t *testing.T) {
	// Let goroutines from earlier tests wind down before taking the
	// baseline.
	time.Sleep(100 * time.Millisecond)

	rec := &recordingReporter{}
	detector := NewGoroutineLeakDetector(rec)
	detector.settleTimeout = 200 * time.Millisecond
	detector.Start()

	stop := make(chan struct{})
	go func() { <-stop }()

	detector.Check()
	close(stop)

	require.True(t, rec.failed, "detector missed a blocked goroutine")
	assert.Contains(t, rec.message, "goroutine leak")
}

func TestLeakDetectorAllowGrowth(t *testing.T) {
	time.Sleep(100 * time.Millisecond)

	rec := &recordingReporter{}
	detector := NewGoroutineLeakDetector(rec).AllowGrowth(1)
	detector.settleTimeout = 200 * time.Millisecond
	detector.Start()

	stop := make(chan struct{})
	go func() { <-stop }()

	detector.Check()
	close(stop)

	assert.False(t, rec.failed, "one goroutine was explicitly allowed")
}
