// Package leaktest detects goroutines left running by fan-out code under test.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleTimeout = 500 * time.Millisecond
	pollInterval  = 10 * time.Millisecond
	maxStackDump  = 16 << 10
)

// Snapshot is a goroutine count taken before the code under test starts
type Snapshot struct {
	baseline int
}

// Take records the current goroutine count
func Take() Snapshot {
	runtime.Gosched()
	return Snapshot{baseline: runtime.NumGoroutine()}
}

// Verify waits up to settleTimeout for the count to drop back within tolerance of the
// baseline, then fails t with a dump of every goroutine stack if it did not
func (s Snapshot) Verify(t testing.TB, tolerance int) {
	t.Helper()

	limit := s.baseline + tolerance
	deadline := time.Now().Add(settleTimeout)
	n := runtime.NumGoroutine()
	for n > limit && time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		runtime.Gosched()
		n = runtime.NumGoroutine()
	}
	if n <= limit {
		return
	}

	buf := make([]byte, maxStackDump)
	buf = buf[:runtime.Stack(buf, true)]
	t.Errorf("goroutine leak: %d running, baseline %d, tolerance %d\n%s", n, s.baseline, tolerance, buf)
}

// Check runs fn and requires every goroutine it started to have exited
func Check(t testing.TB, fn func()) {
	t.Helper()

	snap := Take()
	fn()
	snap.Verify(t, 0)
}
