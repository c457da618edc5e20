package simulation

import (
	"sync"
	"time"
)

// Progress is one progress snapshot: a monotonically non-decreasing
// percentage, a human-readable current step and an ETA derived from elapsed
// time and the progress fraction.
type Progress struct {
	Percent    float64
	Step       string
	ETASeconds int
}

// progressTracker serializes progress updates coming from whichever worker
// completes a step, keeping the reported percentage monotonic.
type progressTracker struct {
	mu       sync.Mutex
	percent  float64
	started  time.Time
	callback func(Progress)
}

func newProgressTracker(callback func(Progress)) *progressTracker {
	return &progressTracker{started: time.Now(), callback: callback}
}

// Set reports a new progress point. Updates below the current percentage
// are clamped up so the published sequence never regresses.
func (t *progressTracker) Set(percent float64, step string) {
	t.mu.Lock()
	snapshot, cb := t.advanceLocked(percent, step)
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Add advances the percentage by delta, used by chunk workers completing
// units of equal weight. The read of the current percentage and the write
// of the new one happen under one lock so concurrent deltas never clobber
// each other.
func (t *progressTracker) Add(delta float64, step string) {
	t.mu.Lock()
	snapshot, cb := t.advanceLocked(t.percent+delta, step)
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// advanceLocked clamps and records the new percentage and builds the
// snapshot to publish. Callers hold mu and invoke the callback after
// unlocking.
func (t *progressTracker) advanceLocked(percent float64, step string) (Progress, func(Progress)) {
	if percent < t.percent {
		percent = t.percent
	}
	if percent > 100 {
		percent = 100
	}
	t.percent = percent

	eta := 0
	if percent > 0 && percent < 100 {
		elapsed := time.Since(t.started).Seconds()
		eta = int(elapsed * (100 - percent) / percent)
	}
	return Progress{Percent: percent, Step: step, ETASeconds: eta}, t.callback
}
