package voodoo

import "fmt"

// ModelOptions configure NewModel.
type ModelOptions struct {
	Name string
	// Above and Below declare pass membership. At least one must be set.
	Above bool
	Below bool
}

// Component is a behavior attached to a model, such as a colour or fade
// modifier. Components are invoked in registration order.
type Component interface {
	Attach(m *Model)
	Detach(m *Model)
}

// Updater is implemented by components that advance every frame.
type Updater interface {
	Update(m *Model, dt float64)
}

// Model is the behavioral half of a piece of 3D content: it owns the views
// (one per layer it renders into), the event handlers, and the components.
type Model struct {
	// Name is for diagnostics only.
	Name string

	engine     *Engine
	id         uint32
	above      bool
	below      bool
	views      []*ViewHandle
	handlers   handlerRegistry
	components []Component
	destroyed  bool
}

// ID returns the engine-unique model id.
func (m *Model) ID() uint32 { return m.id }

// Engine returns the engine the model belongs to.
func (m *Model) Engine() *Engine { return m.engine }

// Above reports whether the model renders above the page.
func (m *Model) Above() bool { return m.above }

// Below reports whether the model renders below the page.
func (m *Model) Below() bool { return m.below }

// Views returns the model's view instances in layer order. The returned
// slice MUST NOT be mutated.
func (m *Model) Views() []*ViewHandle { return m.views }

// View returns the model's view in the given pass, or nil.
func (m *Model) View(pass LayerPass) *ViewHandle {
	for _, v := range m.views {
		if v.layer.pass == pass {
			return v
		}
	}
	return nil
}

// Destroyed reports whether Destroy has run.
func (m *Model) Destroyed() bool { return m.destroyed }

// --- Events ---

// On registers fn for events of type t fired on this model. An invalid
// registration returns the zero Handle.
func (m *Model) On(t EventType, fn HandlerFunc) Handle {
	if t >= numEventTypes || fn == nil {
		_ = contractError(m.debug(), fmt.Sprintf("on %v", t), ErrInvalidArgument)
		return Handle{}
	}
	id := m.handlers.add(t, fn)
	return Handle{id: id, event: t, model: m}
}

// Off unregisters a handler returned by On.
func (m *Model) Off(h Handle) error {
	if h.model != m || !m.handlers.remove(h.event, h.id) {
		return contractError(m.debug(), fmt.Sprintf("off %v", h.event), ErrHandlerNotFound)
	}
	return nil
}

// Emit fires a custom-built event on the model. Type and payload are taken
// from ev; Model is overwritten.
func (m *Model) Emit(ev Event) {
	m.emit(ev)
}

func (m *Model) emit(ev Event) {
	ev.Model = m
	if ev.Time.IsZero() && m.engine != nil {
		ev.Time = m.engine.now()
	}
	m.handlers.dispatch(ev)
	if m.engine != nil {
		m.engine.forward(ev)
	}
}

func (m *Model) debug() bool {
	return m.engine != nil && m.engine.cfg.Debug
}

// --- Attach / detach across views ---

// Attach attaches every loaded view's scene to el and fires a single
// EventAttach.
func (m *Model) Attach(el Element, opts AttachOptions) error {
	if err := m.checkUsable("attach"); err != nil {
		return err
	}
	for _, v := range m.views {
		if err := v.scene.attach(el, opts); err != nil {
			return err
		}
	}
	m.emit(Event{Type: EventAttach})
	return nil
}

// Detach detaches every view's scene and fires a single EventDetach when
// anything was attached.
func (m *Model) Detach() error {
	if err := m.checkUsable("detach"); err != nil {
		return err
	}
	detached := false
	for _, v := range m.views {
		if v.scene.detach() {
			detached = true
		}
	}
	if detached {
		m.emit(Event{Type: EventDetach})
	}
	return nil
}

func (m *Model) checkUsable(op string) error {
	if m.destroyed {
		return contractError(m.debug(), "model "+op, ErrDestroyed)
	}
	for _, v := range m.views {
		if !v.loaded {
			return contractError(m.debug(), "model "+op, ErrViewNotLoaded)
		}
	}
	return nil
}

// --- Components ---

// AddComponent attaches c. Components run in the order they were added.
func (m *Model) AddComponent(c Component) {
	m.components = append(m.components, c)
	c.Attach(m)
}

// RemoveComponent detaches c.
func (m *Model) RemoveComponent(c Component) error {
	for i, x := range m.components {
		if x == c {
			copy(m.components[i:], m.components[i+1:])
			m.components[len(m.components)-1] = nil
			m.components = m.components[:len(m.components)-1]
			c.Detach(m)
			return nil
		}
	}
	return contractError(m.debug(), "remove component", ErrInvalidArgument)
}

// Components returns the attached components in order. The returned slice
// MUST NOT be mutated.
func (m *Model) Components() []Component { return m.components }

func (m *Model) update(dt float64) {
	for _, c := range m.components {
		if u, ok := c.(Updater); ok {
			u.Update(m, dt)
		}
	}
}

// --- Lifecycle ---

// Destroy unloads every view, detaches components and removes the model
// from its engine. Fires EventUnload before handlers are dropped.
func (m *Model) Destroy() error {
	if m.destroyed {
		return contractError(m.debug(), "model destroy", ErrDestroyed)
	}
	m.destroy()
	return nil
}

func (m *Model) destroy() {
	for _, v := range m.views {
		v.unload()
		v.layer.removeView(v)
	}
	m.emit(Event{Type: EventUnload})
	for i := len(m.components) - 1; i >= 0; i-- {
		m.components[i].Detach(m)
	}
	m.components = nil
	m.handlers.clear()
	m.destroyed = true
	if m.engine != nil {
		m.engine.removeModel(m)
	}
}
