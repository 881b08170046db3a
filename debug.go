package voodoo

import "time"

// debugStats holds per-frame timing. Only populated when Config.Debug is set.
type debugStats struct {
	trackTime      time.Duration
	inputTime      time.Duration
	decideTime     time.Duration
	renderTime     time.Duration
	layersRendered int
	events         int
}

// debugLog writes the frame's stats at debug level.
func (e *Engine) debugLog(stats debugStats) {
	total := stats.trackTime + stats.inputTime + stats.decideTime + stats.renderTime
	Logger().Debug("frame",
		"n", e.frameCount,
		"track", stats.trackTime,
		"input", stats.inputTime,
		"decide", stats.decideTime,
		"render", stats.renderTime,
		"total", total,
		"layers", stats.layersRendered,
		"events", stats.events,
		"tracked", e.tracker.Len(),
	)
}
