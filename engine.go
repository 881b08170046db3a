package voodoo

import (
	"fmt"
	"time"

	"github.com/tanema/gween/ease"
)

// Engine owns the layers, cameras, element tracker and pointer state, and
// drives them one frame at a time. All methods must be called from one
// goroutine.
type Engine struct {
	cfg      Config
	renderer Renderer
	tracker  *ElementTracker

	aboveCam *Camera
	belowCam *Camera

	layers [numPasses]*Layer
	// order lists the existing layers in render order.
	order     []*Layer
	raycaster *Raycaster
	needed    []*Layer

	models      []*Model
	nextModelID uint32

	handlers handlerRegistry
	sink     EventSink

	pointer    pointerState
	inputQueue []inputEvent

	fps        fpsTimer
	runner     *TestRunner
	stats      debugStats
	frameCount uint64

	screenshotQueue []string

	destroyed bool
}

// NewEngine validates cfg and creates the layers it asks for. A nil renderer
// is replaced by NopRenderer.
func NewEngine(cfg Config, r Renderer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = NopRenderer{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	e := &Engine{
		cfg:      cfg,
		renderer: r,
		tracker:  NewElementTracker(),
	}
	e.tracker.debug = cfg.Debug
	e.aboveCam = newCamera(cfg.FOV, cfg.ZNear, cfg.ZFar, cfg.Viewport)
	e.belowCam = newCamera(cfg.FOV, cfg.ZNear, cfg.ZFar, cfg.Viewport)

	e.addLayer(PassBelow, e.belowCam)
	if cfg.Stencils {
		e.addLayer(PassBelowStencil, e.belowCam)
	}
	e.addLayer(PassAbove, e.aboveCam)
	if cfg.Seams {
		e.addLayer(PassSeam, e.aboveCam)
		if cfg.Stencils {
			e.addLayer(PassSeamStencil, e.aboveCam)
		}
	}
	e.raycaster = newRaycaster([]*Layer{
		e.layers[PassAbove], e.layers[PassSeam], e.layers[PassBelow],
	})
	e.fps.begin(cfg.Clock(), cfg.fpsInterval())

	Logger().Info("engine created",
		"layers", len(e.order),
		"viewport", fmt.Sprintf("%vx%v", cfg.Viewport.Width, cfg.Viewport.Height))
	return e, nil
}

func (e *Engine) addLayer(pass LayerPass, cam *Camera) {
	l := newLayer(e, pass, cam)
	e.layers[pass] = l
	e.order = append(e.order, l)
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Tracker returns the element tracker.
func (e *Engine) Tracker() *ElementTracker { return e.tracker }

// Layers returns the existing layers in render order. The returned slice
// MUST NOT be mutated.
func (e *Engine) Layers() []*Layer { return e.order }

// Layer returns the layer for pass, or nil when the configuration did not
// create it.
func (e *Engine) Layer(pass LayerPass) *Layer {
	if pass >= numPasses {
		return nil
	}
	return e.layers[pass]
}

// Models returns the live models in creation order. The returned slice MUST
// NOT be mutated.
func (e *Engine) Models() []*Model { return e.models }

// Raycaster returns the raycaster used for pointer events.
func (e *Engine) Raycaster() *Raycaster { return e.raycaster }

// Camera returns the camera shared by the above and seam layers.
func (e *Engine) Camera() *Camera { return e.aboveCam }

// Viewport returns the visible page area.
func (e *Engine) Viewport() Rect { return e.aboveCam.Viewport }

// FPS returns the frame rate measured over the last FPS interval.
func (e *Engine) FPS() float64 { return e.fps.rate }

// FrameCount returns the number of frames stepped so far.
func (e *Engine) FrameCount() uint64 { return e.frameCount }

// Destroyed reports whether Destroy has run.
func (e *Engine) Destroyed() bool { return e.destroyed }

// TriggerCount returns the number of registered triggers across all layers.
func (e *Engine) TriggerCount() int {
	n := 0
	for _, l := range e.order {
		for _, v := range l.views {
			if v.triggers != nil {
				n += v.triggers.Len()
			}
		}
	}
	return n
}

// SetEventSink forwards every synthesized event to sink. Pass nil to stop.
func (e *Engine) SetEventSink(sink EventSink) error {
	if err := e.checkLive("set event sink"); err != nil {
		return err
	}
	e.sink = sink
	return nil
}

func (e *Engine) now() time.Time { return e.cfg.Clock() }

func (e *Engine) checkLive(op string) error {
	if e.destroyed {
		return contractError(e.cfg.Debug, op, ErrDestroyed)
	}
	return nil
}

// --- Models ---

// NewModel creates a model and loads one instance of view per layer its
// pass membership maps to. Above renders into Above; Below into Below and
// BelowStencil; a model that is both also renders into Seam and
// SeamStencil. Layers the configuration did not create are skipped. If any
// Load fails every view already loaded is unloaded and the error returned.
func (e *Engine) NewModel(opts ModelOptions, view View) (*Model, error) {
	if err := e.checkLive("new model"); err != nil {
		return nil, err
	}
	if view == nil || (!opts.Above && !opts.Below) {
		return nil, contractError(e.cfg.Debug, fmt.Sprintf("new model %q", opts.Name), ErrInvalidArgument)
	}

	e.nextModelID++
	m := &Model{
		Name:   opts.Name,
		engine: e,
		id:     e.nextModelID,
		above:  opts.Above,
		below:  opts.Below,
	}
	for _, pass := range membership(opts.Above, opts.Below) {
		l := e.layers[pass]
		if l == nil {
			continue
		}
		m.views = append(m.views, &ViewHandle{model: m, layer: l, view: view})
	}

	for i, v := range m.views {
		v.layer.addView(v)
		if err := v.load(); err != nil {
			for _, done := range m.views[:i] {
				done.unload()
			}
			for _, added := range m.views[:i+1] {
				added.layer.removeView(added)
			}
			m.destroyed = true
			return nil, fmt.Errorf("load model %q in %v: %w", opts.Name, v.layer.pass, err)
		}
	}

	e.models = append(e.models, m)
	m.emit(Event{Type: EventLoad})
	return m, nil
}

// membership maps declared pass flags to layer passes.
func membership(above, below bool) []LayerPass {
	var passes []LayerPass
	if above {
		passes = append(passes, PassAbove)
	}
	if below {
		passes = append(passes, PassBelow, PassBelowStencil)
	}
	if above && below {
		passes = append(passes, PassSeam, PassSeamStencil)
	}
	return passes
}

func (e *Engine) removeModel(m *Model) {
	for i, x := range e.models {
		if x == m {
			copy(e.models[i:], e.models[i+1:])
			e.models[len(e.models)-1] = nil
			e.models = e.models[:len(e.models)-1]
			break
		}
	}
	e.pointer.forget(m)
}

// --- Engine-level handlers ---

// On registers fn for every event of type t, whichever model it fires on.
// Pointer events that hit no model are delivered here with a nil Model.
// An invalid registration, or one on a destroyed engine, is a contract
// violation and returns the zero Handle.
func (e *Engine) On(t EventType, fn HandlerFunc) Handle {
	if err := e.checkLive("on"); err != nil {
		return Handle{}
	}
	if t >= numEventTypes || fn == nil {
		_ = contractError(e.cfg.Debug, fmt.Sprintf("on %v", t), ErrInvalidArgument)
		return Handle{}
	}
	id := e.handlers.add(t, fn)
	return Handle{id: id, event: t, eng: e}
}

// Off unregisters a handler returned by On.
func (e *Engine) Off(h Handle) error {
	if h.eng != e || !e.handlers.remove(h.event, h.id) {
		return contractError(e.cfg.Debug, fmt.Sprintf("off %v", h.event), ErrHandlerNotFound)
	}
	return nil
}

// forward delivers ev to engine-level handlers and the event sink.
func (e *Engine) forward(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}
	e.stats.events++
	e.handlers.dispatch(ev)
	if e.sink != nil {
		e.sink.EmitEvent(ev)
	}
}

// --- Camera ---

// SetViewport reports a page scroll or window resize. When the camera moves
// every layer re-renders on the next frame and every model receives
// EventCameraMove.
func (e *Engine) SetViewport(r Rect) error {
	if err := e.checkLive("set viewport"); err != nil {
		return err
	}
	if r.Width <= 0 || r.Height <= 0 {
		return contractError(e.cfg.Debug, "set viewport", ErrInvalidArgument)
	}
	moved := e.aboveCam.SetViewport(r)
	e.belowCam.SetViewport(r)
	if moved {
		e.cameraMoved()
	}
	return nil
}

// ScrollTo animates the viewport's top-left corner to (x, y) over duration
// seconds. A nil easeFn scrolls linearly.
func (e *Engine) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) error {
	if err := e.checkLive("scroll to"); err != nil {
		return err
	}
	if duration <= 0 {
		vp := e.aboveCam.Viewport
		vp.X, vp.Y = x, y
		return e.SetViewport(vp)
	}
	e.aboveCam.ScrollTo(x, y, duration, easeFn)
	return nil
}

func (e *Engine) cameraMoved() {
	for _, l := range e.order {
		l.cameraMoved = true
	}
	for _, m := range append([]*Model(nil), e.models...) {
		if !m.destroyed {
			m.emit(Event{Type: EventCameraMove})
		}
	}
}

// --- Frame ---

// Frame advances the engine by dt seconds. The order within a frame is
// fixed: components update, the camera scroll advances, tracked elements
// are sampled (moving attached scenes), queued mouse input is raycast and
// dispatched, every layer decides whether it needs rendering, the layers
// that do are rendered, and finally every dirty flag is cleared.
//
// The first render error is returned after all layers were attempted.
func (e *Engine) Frame(dt float64) error {
	if err := e.checkLive("frame"); err != nil {
		return err
	}
	e.frameCount++
	debug := e.cfg.Debug
	var t0 time.Time
	if debug {
		e.stats = debugStats{}
		t0 = time.Now()
	}

	for _, m := range append([]*Model(nil), e.models...) {
		if !m.destroyed {
			m.update(dt)
		}
	}
	if e.aboveCam.update(float32(dt)) {
		e.belowCam.SetViewport(e.aboveCam.Viewport)
		e.cameraMoved()
	}
	e.tracker.Update()
	e.fps.tick(e.now())
	if debug {
		e.stats.trackTime = time.Since(t0)
		t0 = time.Now()
	}

	if e.runner != nil {
		e.runner.step(e)
	}
	e.processInput()
	if e.destroyed {
		// A handler tore the engine down.
		return nil
	}
	if debug {
		e.stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	needed := e.needed[:0]
	for _, l := range e.order {
		if l.IsRenderNeeded() {
			needed = append(needed, l)
		}
	}
	e.needed = needed
	if debug {
		e.stats.decideTime = time.Since(t0)
		t0 = time.Now()
	}

	var firstErr error
	for _, l := range needed {
		if err := l.render(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("render %v: %w", l.pass, err)
		}
	}
	for _, l := range e.order {
		l.ClearDirtyFlags()
	}
	if debug {
		e.stats.renderTime = time.Since(t0)
		e.stats.layersRendered = len(needed)
		e.debugLog(e.stats)
	}
	return firstErr
}

// --- Teardown ---

// Destroy unloads every model, releases the layers, the tracker and the
// FPS timer. Calling it again is a contract error.
func (e *Engine) Destroy() error {
	if err := e.checkLive("destroy"); err != nil {
		return err
	}
	for len(e.models) > 0 {
		e.models[len(e.models)-1].destroy()
	}
	for _, l := range e.order {
		l.release()
	}
	e.tracker.Reset()
	e.fps.stop()
	e.inputQueue = nil
	e.screenshotQueue = nil
	e.pointer = pointerState{}
	e.runner = nil
	e.handlers.clear()
	e.sink = nil
	e.destroyed = true
	Logger().Info("engine destroyed", "frames", e.frameCount)
	return nil
}
