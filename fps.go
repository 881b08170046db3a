package voodoo

import "time"

// fpsTimer counts frames and recomputes the rate once per interval.
type fpsTimer struct {
	active   bool
	interval time.Duration
	start    time.Time
	frames   int
	rate     float64
}

func (f *fpsTimer) begin(now time.Time, interval time.Duration) {
	f.active = true
	f.interval = interval
	f.start = now
	f.frames = 0
	f.rate = 0
}

// tick counts one frame and reports whether the rate was recomputed.
func (f *fpsTimer) tick(now time.Time) bool {
	if !f.active {
		return false
	}
	f.frames++
	elapsed := now.Sub(f.start)
	if elapsed < f.interval {
		return false
	}
	f.rate = float64(f.frames) / elapsed.Seconds()
	f.frames = 0
	f.start = now
	return true
}

func (f *fpsTimer) stop() {
	f.active = false
	f.frames = 0
}

func (f *fpsTimer) running() bool { return f.active }
