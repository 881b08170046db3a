package voodoo

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a test script. Coordinates are in page
// space.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	Button   string  `json:"button,omitempty"`
	Frames   int     `json:"frames,omitempty"`
	Duration float32 `json:"duration,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"move": true, "press": true, "release": true, "click": true,
	"dblclick": true, "path": true, "wait": true, "scroll": true,
	"screenshot": true,
}

// TestRunner feeds scripted mouse input, scrolling and screenshots into an
// engine across frames. Attach it with Engine.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to an engine.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if _, ok := parseButton(st.Button); !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown button %q", i, st.Button)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func parseButton(s string) (MouseButton, bool) {
	switch s {
	case "", "left":
		return MouseButtonLeft, true
	case "right":
		return MouseButtonRight, true
	case "middle":
		return MouseButtonMiddle, true
	}
	return 0, false
}

// SetTestRunner attaches a runner. Its step runs every Frame before queued
// input is processed. Pass nil to detach.
func (e *Engine) SetTestRunner(runner *TestRunner) error {
	if err := e.checkLive("set test runner"); err != nil {
		return err
	}
	e.runner = runner
	return nil
}

// Done reports whether all steps in the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Each frame executes at most one
// step; input it queues is dispatched in the same frame.
func (r *TestRunner) step(e *Engine) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if e.aboveCam.Scrolling() {
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	button, _ := parseButton(st.Button)

	var err error
	switch st.Action {
	case "move":
		err = e.MouseMove(st.X, st.Y, 0)
	case "press":
		err = e.MouseDown(st.X, st.Y, button, 0)
	case "release":
		err = e.MouseUp(st.X, st.Y, button, 0)
	case "click":
		e.injectClick(st.X, st.Y, button)
	case "dblclick":
		err = e.InjectDoubleClick(st.X, st.Y)
	case "path":
		err = e.InjectPath(st.X, st.Y, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "scroll":
		err = e.ScrollTo(st.X, st.Y, st.Duration, nil)
	case "screenshot":
		err = e.Screenshot(st.Label)
	}
	if err != nil {
		Logger().Warn("test script step", "action", st.Action, "err", err)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && st.Action != "scroll" {
		r.done = true
	}
}
