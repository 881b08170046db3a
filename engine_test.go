package voodoo

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestEngine creates a manually stepped engine over a 1024x768 viewport
// with a controllable clock. It is destroyed when the test ends.
func newTestEngine(t *testing.T, r Renderer, opts ...func(*Config)) (*Engine, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	cfg.FrameLoop = false
	cfg.Viewport = Rect{Width: 1024, Height: 768}
	cfg.Clock = clock.Now
	for _, o := range opts {
		o(&cfg)
	}
	e, err := NewEngine(cfg, r)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() {
		if !e.Destroyed() {
			_ = e.Destroy()
		}
	})
	return e, clock
}

// cubeView loads one cube trigger per view instance, centered on (x, y) in
// the scene's local space with edge length size.
func cubeView(x, y, size float64, id TriggerID, out *[]*Object) View {
	return ViewFuncs{OnLoad: func(h *ViewHandle) error {
		obj := NewMesh("cube", UnitCube)
		obj.SetPosition(x, y, 0)
		obj.SetScale(size, size, size)
		if err := h.Scene().Add(obj); err != nil {
			return err
		}
		if out != nil {
			*out = append(*out, obj)
		}
		return h.Triggers().Add(obj, id)
	}}
}

type eventLog struct {
	events []Event
}

// recordAll logs every event fired on m.
func recordAll(m *Model) *eventLog {
	l := &eventLog{}
	for t := EventType(0); t < numEventTypes; t++ {
		m.On(t, func(ev Event) { l.events = append(l.events, ev) })
	}
	return l
}

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func (l *eventLog) count(t EventType) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (l *eventLog) last(t EventType) (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type == t {
			return l.events[i], true
		}
	}
	return Event{}, false
}

func (l *eventLog) reset() { l.events = nil }

// countingRenderer records which passes were rendered.
type countingRenderer struct {
	renders  map[LayerPass]int
	added    int
	removed  int
	onRender func(l *Layer)
	err      error
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{renders: make(map[LayerPass]int)}
}

func (r *countingRenderer) AddObject(LayerPass, *Object)    { r.added++ }
func (r *countingRenderer) RemoveObject(LayerPass, *Object) { r.removed++ }
func (r *countingRenderer) RenderLayer(l *Layer) error {
	r.renders[l.Pass()]++
	if r.onRender != nil {
		r.onRender(l)
	}
	return r.err
}

// --- End-to-end ---

func TestEndToEndClickOnAttachedElement(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	anchor := NewBox(400, 400, 200, 200)

	// One local unit spans the element, so the slab covers it exactly.
	view := ViewFuncs{OnLoad: func(h *ViewHandle) error {
		obj := NewMesh("slab", NewAABB(mgl64.Vec3{0, 0, -0.1}, mgl64.Vec3{1, 1, 0.1}))
		if err := h.Scene().Add(obj); err != nil {
			return err
		}
		return h.Triggers().Add(obj, DefaultTriggerID)
	}}
	m, err := e.NewModel(ModelOptions{Name: "slab", Above: true}, view)
	require.NoError(t, err)
	require.NoError(t, m.Attach(anchor, AttachOptions{Center: false, PixelScale: false, ZScale: true}))

	clicks := 0
	m.On(EventClick, func(Event) { clicks++ })

	e.InjectClick(500, 500)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 1, clicks, "click inside the element")

	e.InjectClick(700, 700)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 1, clicks, "click outside the element")
}

func TestEndToEndDetachRemovesClick(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	anchor := NewBox(400, 400, 200, 200)

	view := ViewFuncs{OnLoad: func(h *ViewHandle) error {
		obj := NewMesh("slab", NewAABB(mgl64.Vec3{0, 0, -0.1}, mgl64.Vec3{1, 1, 0.1}))
		if err := h.Scene().Add(obj); err != nil {
			return err
		}
		return h.Triggers().Add(obj, DefaultTriggerID)
	}}
	m, err := e.NewModel(ModelOptions{Name: "slab", Above: true}, view)
	require.NoError(t, err)
	require.NoError(t, m.Attach(anchor, AttachOptions{}))

	clicks := 0
	m.On(EventClick, func(Event) { clicks++ })

	e.InjectClick(500, 500)
	require.NoError(t, e.Frame(1.0/60))
	require.Equal(t, 1, clicks)

	require.NoError(t, m.Detach())
	e.InjectClick(500, 500)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 1, clicks, "detached scene must not respond at the old position")
	assert.Equal(t, 0, e.Tracker().Len())
}

func TestEndToEndElementMoves(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	anchor := NewBox(100, 100, 50, 50)

	m, err := e.NewModel(ModelOptions{Name: "cube", Above: true}, cubeView(0, 0, 40, DefaultTriggerID, nil))
	require.NoError(t, err)
	require.NoError(t, m.Attach(anchor, DefaultAttachOptions()))
	log := recordAll(m)

	e.InjectClick(125, 125)
	require.NoError(t, e.Frame(1.0/60))
	require.Equal(t, 1, log.count(EventClick))

	anchor.SetPosition(600, 300)
	require.NoError(t, e.Frame(1.0/60))
	// The mouse did not move, but the content left it.
	assert.Equal(t, 1, log.count(EventMouseOut))

	e.InjectClick(125, 125)
	e.InjectClick(625, 325)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 2, log.count(EventClick))
}

func TestEngineDestroy(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	m, err := e.NewModel(ModelOptions{Name: "cube", Above: true, Below: true}, cubeView(100, 100, 50, TriggerInt(1), nil))
	require.NoError(t, err)
	require.NoError(t, m.Attach(NewBox(0, 0, 10, 10), DefaultAttachOptions()))
	unloads := 0
	m.On(EventUnload, func(Event) { unloads++ })
	require.NoError(t, e.Frame(1.0/60))

	require.True(t, e.fps.running())
	require.Positive(t, e.TriggerCount())

	require.NoError(t, e.Destroy())
	assert.True(t, e.Destroyed())
	assert.False(t, e.fps.running(), "FPS timer still running")
	assert.Equal(t, 0, e.TriggerCount())
	assert.Equal(t, 0, e.Tracker().Len())
	assert.Empty(t, e.Models())
	assert.True(t, m.Destroyed())
	assert.Equal(t, 1, unloads)
	for _, l := range e.Layers() {
		assert.Empty(t, l.Views(), "layer %v", l.Pass())
		assert.Equal(t, 0, l.ObjectCount(), "layer %v", l.Pass())
	}

	err = e.Destroy()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, e.Frame(1.0/60), ErrDestroyed)
	_, err = e.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, e.SetViewport(Rect{Width: 10, Height: 10}), ErrDestroyed)
	assert.ErrorIs(t, e.ScrollTo(0, 10, 1, nil), ErrDestroyed)

	// Nothing is queued or registered on a dead engine.
	assert.ErrorIs(t, e.MouseMove(1, 1, 0), ErrDestroyed)
	assert.ErrorIs(t, e.MouseDown(1, 1, MouseButtonLeft, 0), ErrDestroyed)
	assert.ErrorIs(t, e.MouseUp(1, 1, MouseButtonLeft, 0), ErrDestroyed)
	assert.ErrorIs(t, e.InjectClick(1, 1), ErrDestroyed)
	assert.ErrorIs(t, e.InjectDoubleClick(1, 1), ErrDestroyed)
	assert.ErrorIs(t, e.InjectPath(0, 0, 1, 1, 3), ErrDestroyed)
	assert.ErrorIs(t, e.Screenshot("late"), ErrDestroyed)
	assert.ErrorIs(t, e.SetTestRunner(&TestRunner{}), ErrDestroyed)
	assert.ErrorIs(t, e.SetEventSink(nil), ErrDestroyed)
	assert.Zero(t, e.PendingInput())
	assert.Zero(t, e.PendingScreenshots())

	h := e.On(EventClick, func(Event) {})
	assert.Zero(t, h)
	assert.ErrorIs(t, h.Remove(), ErrHandlerNotFound)
}

func TestEngineDestroyedDebugPanics(t *testing.T) {
	tests := []struct {
		name string
		op   func(e *Engine)
	}{
		{"destroy", func(e *Engine) { _ = e.Destroy() }},
		{"frame", func(e *Engine) { _ = e.Frame(1.0 / 60) }},
		{"mouse move", func(e *Engine) { _ = e.MouseMove(1, 1, 0) }},
		{"mouse down", func(e *Engine) { _ = e.MouseDown(1, 1, MouseButtonLeft, 0) }},
		{"mouse up", func(e *Engine) { _ = e.MouseUp(1, 1, MouseButtonLeft, 0) }},
		{"inject click", func(e *Engine) { _ = e.InjectClick(1, 1) }},
		{"inject double click", func(e *Engine) { _ = e.InjectDoubleClick(1, 1) }},
		{"inject path", func(e *Engine) { _ = e.InjectPath(0, 0, 1, 1, 2) }},
		{"screenshot", func(e *Engine) { _ = e.Screenshot("late") }},
		{"set test runner", func(e *Engine) { _ = e.SetTestRunner(nil) }},
		{"set event sink", func(e *Engine) { _ = e.SetEventSink(nil) }},
		{"on", func(e *Engine) { e.On(EventLoad, func(Event) {}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil, func(c *Config) { c.Debug = true })
			require.NoError(t, e.Destroy())
			defer func() {
				r := recover()
				require.NotNil(t, r, "no panic")
				err, ok := r.(error)
				require.True(t, ok, "panic value %v", r)
				assert.ErrorIs(t, err, ErrDestroyed)
			}()
			tt.op(e)
		})
	}
}

func TestOnInvalidRegistration(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	m, err := e.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	require.NoError(t, err)

	assert.Zero(t, e.On(EventClick, nil))
	assert.Zero(t, e.On(numEventTypes, func(Event) {}))
	assert.Zero(t, m.On(EventClick, nil))
	assert.Zero(t, m.On(numEventTypes, func(Event) {}))

	d, _ := newTestEngine(t, nil, func(c *Config) { c.Debug = true })
	dm, err := d.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	require.NoError(t, err)
	assert.Panics(t, func() { d.On(EventClick, nil) })
	assert.Panics(t, func() { dm.On(numEventTypes, func(Event) {}) })
}

func TestNewEngineInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ZFar = 0.5
	_, err := NewEngine(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewModelMembership(t *testing.T) {
	tests := []struct {
		name         string
		above, below bool
		stencils     bool
		seams        bool
		want         []LayerPass
	}{
		{"above", true, false, true, true, []LayerPass{PassAbove}},
		{"below", false, true, true, true, []LayerPass{PassBelow, PassBelowStencil}},
		{"both", true, true, true, true, []LayerPass{PassAbove, PassBelow, PassBelowStencil, PassSeam, PassSeamStencil}},
		{"both without stencils", true, true, false, true, []LayerPass{PassAbove, PassBelow, PassSeam}},
		{"both without seams", true, true, true, false, []LayerPass{PassAbove, PassBelow, PassBelowStencil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, nil, func(c *Config) {
				c.Stencils = tt.stencils
				c.Seams = tt.seams
			})
			loads := 0
			m, err := e.NewModel(ModelOptions{Above: tt.above, Below: tt.below}, ViewFuncs{
				OnLoad: func(h *ViewHandle) error { loads++; return nil },
			})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), loads)

			var got []LayerPass
			for _, v := range m.Views() {
				got = append(got, v.Pass())
				assert.True(t, v.Loaded())
			}
			assert.ElementsMatch(t, tt.want, got)

			for _, l := range e.Layers() {
				for _, v := range l.Views() {
					assert.Equal(t, l, v.Layer(), "layer only holds its own views")
				}
			}
		})
	}
}

func TestNewModelLoadFailureRollsBack(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	boom := errors.New("boom")
	unloaded := 0
	view := ViewFuncs{
		OnLoad: func(h *ViewHandle) error {
			obj := NewMesh("cube", UnitCube)
			if err := h.Scene().Add(obj); err != nil {
				return err
			}
			if err := h.Triggers().Add(obj, DefaultTriggerID); err != nil {
				return err
			}
			if h.Pass() == PassBelow {
				return boom
			}
			return nil
		},
		OnUnload: func(h *ViewHandle) { unloaded++ },
	}
	_, err := e.NewModel(ModelOptions{Above: true, Below: true}, view)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, unloaded, "the above view loaded and must be unloaded")
	assert.Empty(t, e.Models())
	assert.Equal(t, 0, e.TriggerCount())
	for _, l := range e.Layers() {
		assert.Empty(t, l.Views(), "layer %v", l.Pass())
		assert.Equal(t, 0, l.ObjectCount(), "layer %v", l.Pass())
	}
}

func TestNewModelInvalid(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, err := e.NewModel(ModelOptions{Name: "nowhere"}, ViewFuncs{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = e.NewModel(ModelOptions{Above: true}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModelLifecycleEvents(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	var seen []EventType
	e.On(EventLoad, func(ev Event) { seen = append(seen, ev.Type) })
	e.On(EventUnload, func(ev Event) { seen = append(seen, ev.Type) })

	m, err := e.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	require.NoError(t, err)
	require.NoError(t, m.Destroy())
	assert.Equal(t, []EventType{EventLoad, EventUnload}, seen)
	assert.ErrorIs(t, m.Destroy(), ErrDestroyed)
	assert.ErrorIs(t, m.Attach(NewBox(0, 0, 1, 1), DefaultAttachOptions()), ErrDestroyed)
}

func TestFrameTracksBeforeRender(t *testing.T) {
	r := newCountingRenderer()
	e, _ := newTestEngine(t, r)
	anchor := NewBox(100, 100, 10, 10)

	var objs []*Object
	m, err := e.NewModel(ModelOptions{Above: true}, cubeView(0, 0, 10, DefaultTriggerID, &objs))
	require.NoError(t, err)
	require.NoError(t, m.Attach(anchor, DefaultAttachOptions()))
	require.NoError(t, e.Frame(1.0/60))

	var seen AABB
	r.onRender = func(l *Layer) {
		l.EachObject(func(o *Object) { seen = o.WorldBounds() })
	}
	anchor.SetPosition(300, 200)
	require.NoError(t, e.Frame(1.0/60))

	want := NewAABB(mgl64.Vec3{300, 200, -5}, mgl64.Vec3{310, 210, 5})
	assert.True(t, vecApprox(seen.Min, want.Min, 1e-9) && vecApprox(seen.Max, want.Max, 1e-9),
		"renderer saw %v, want %v", seen, want)
}

func TestFrameRendersOnlyWhatChanged(t *testing.T) {
	r := newCountingRenderer()
	e, _ := newTestEngine(t, r)

	var objs []*Object
	_, err := e.NewModel(ModelOptions{Above: true}, cubeView(200, 200, 50, DefaultTriggerID, &objs))
	require.NoError(t, err)
	assert.Equal(t, 1, r.added)

	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 1, r.renders[PassAbove])
	assert.Equal(t, 0, r.renders[PassBelow])

	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 1, r.renders[PassAbove], "nothing changed")

	objs[0].SetPosition(250, 200, 0)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 2, r.renders[PassAbove])
	assert.Equal(t, uint64(2), e.Layer(PassAbove).RenderCount())
}

func TestFrameReturnsRenderError(t *testing.T) {
	r := newCountingRenderer()
	r.err = errors.New("gpu lost")
	e, _ := newTestEngine(t, r)
	_, err := e.NewModel(ModelOptions{Above: true, Below: true}, cubeView(200, 200, 50, DefaultTriggerID, nil))
	require.NoError(t, err)

	err = e.Frame(1.0 / 60)
	require.ErrorIs(t, err, r.err)
	// Every needed layer was still attempted and flags were cleared.
	assert.Equal(t, 1, r.renders[PassAbove])
	assert.Equal(t, 1, r.renders[PassBelow])
	assert.False(t, e.Layer(PassAbove).IsRenderNeeded())
}

func TestViewportMoveFiresCameraMove(t *testing.T) {
	r := newCountingRenderer()
	e, _ := newTestEngine(t, r)
	m, err := e.NewModel(ModelOptions{Above: true}, cubeView(200, 200, 50, DefaultTriggerID, nil))
	require.NoError(t, err)
	log := recordAll(m)
	require.NoError(t, e.Frame(1.0/60))

	require.NoError(t, e.SetViewport(Rect{Width: 1024, Height: 768}))
	assert.Equal(t, 0, log.count(EventCameraMove), "unchanged viewport")

	require.NoError(t, e.SetViewport(Rect{Y: 100, Width: 1024, Height: 768}))
	assert.Equal(t, 1, log.count(EventCameraMove))
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 2, r.renders[PassAbove], "camera move re-renders loaded layers")
	assert.Equal(t, 0, r.renders[PassBelow], "empty layers stay idle")

	assert.ErrorIs(t, e.SetViewport(Rect{Width: 0, Height: 10}), ErrInvalidArgument)
}

func TestScrollToAnimatesCamera(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	m, err := e.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	require.NoError(t, err)
	moves := 0
	m.On(EventCameraMove, func(Event) { moves++ })

	require.NoError(t, e.ScrollTo(0, 200, 1, nil))
	require.NoError(t, e.Frame(0.5))
	assert.InDelta(t, 100, e.Viewport().Y, 1)
	assert.InDelta(t, 100, e.Layer(PassBelow).Camera().Viewport.Y, 1, "below camera follows")
	require.NoError(t, e.Frame(0.5))
	assert.InDelta(t, 200, e.Viewport().Y, 1)
	assert.False(t, e.Camera().Scrolling())
	assert.Equal(t, 2, moves)

	require.NoError(t, e.ScrollTo(0, 0, 0, nil))
	assert.Equal(t, 0.0, e.Viewport().Y, "zero duration jumps")
	assert.Equal(t, 3, moves)
}

type orderComponent struct {
	name     string
	trace    *[]string
	detached bool
}

func (c *orderComponent) Attach(m *Model) { *c.trace = append(*c.trace, "attach "+c.name) }
func (c *orderComponent) Detach(m *Model) {
	c.detached = true
	*c.trace = append(*c.trace, "detach "+c.name)
}
func (c *orderComponent) Update(m *Model, dt float64) {
	*c.trace = append(*c.trace, "update "+c.name)
}

func TestComponentsRunInOrder(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	m, err := e.NewModel(ModelOptions{Above: true}, ViewFuncs{})
	require.NoError(t, err)

	var trace []string
	a := &orderComponent{name: "a", trace: &trace}
	b := &orderComponent{name: "b", trace: &trace}
	m.AddComponent(a)
	m.AddComponent(b)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, []string{"attach a", "attach b", "update a", "update b"}, trace)

	require.NoError(t, m.RemoveComponent(a))
	assert.True(t, a.detached)
	assert.ErrorIs(t, m.RemoveComponent(a), ErrInvalidArgument)
	assert.Len(t, m.Components(), 1)

	trace = trace[:0]
	require.NoError(t, m.Destroy())
	assert.Equal(t, []string{"detach b"}, trace)
}

func TestFPSTimer(t *testing.T) {
	e, clock := newTestEngine(t, nil, func(c *Config) { c.FPSIntervalMillis = 500 })
	for i := 0; i < 24; i++ {
		clock.Advance(20 * time.Millisecond)
		require.NoError(t, e.Frame(0.02))
	}
	assert.Equal(t, 0.0, e.FPS(), "no full interval elapsed")
	clock.Advance(20 * time.Millisecond)
	require.NoError(t, e.Frame(0.02))
	assert.InDelta(t, 50, e.FPS(), 1e-9)
	assert.Equal(t, uint64(25), e.FrameCount())
}
