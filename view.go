package voodoo

// View builds and tears down one model's content in one layer. A model with
// several pass memberships gets one ViewHandle, and one Load call, per layer.
type View interface {
	// Load populates h.Scene() and h.Triggers(). An error aborts model
	// creation and unloads every view already loaded.
	Load(h *ViewHandle) error
	// Unload is called before the scene is emptied and its triggers dropped.
	Unload(h *ViewHandle)
}

// ViewFuncs adapts plain functions to View. Either may be nil.
type ViewFuncs struct {
	OnLoad   func(h *ViewHandle) error
	OnUnload func(h *ViewHandle)
}

// Load calls OnLoad.
func (v ViewFuncs) Load(h *ViewHandle) error {
	if v.OnLoad == nil {
		return nil
	}
	return v.OnLoad(h)
}

// Unload calls OnUnload.
func (v ViewFuncs) Unload(h *ViewHandle) {
	if v.OnUnload != nil {
		v.OnUnload(h)
	}
}

// ViewHandle is one view instance: a model's presence in one layer.
type ViewHandle struct {
	model    *Model
	layer    *Layer
	view     View
	scene    *Scene
	triggers *Triggers
	loaded   bool
}

// Model returns the owning model.
func (h *ViewHandle) Model() *Model { return h.model }

// Layer returns the layer the view renders into.
func (h *ViewHandle) Layer() *Layer { return h.layer }

// Pass returns the layer's pass.
func (h *ViewHandle) Pass() LayerPass { return h.layer.pass }

// Camera returns the layer's camera. Treat it as read-only.
func (h *ViewHandle) Camera() *Camera { return h.layer.camera }

// Scene returns the view's scene. It exists from the start of Load until
// the view is unloaded.
func (h *ViewHandle) Scene() *Scene { return h.scene }

// Triggers returns the view's trigger registry.
func (h *ViewHandle) Triggers() *Triggers { return h.triggers }

// Loaded reports whether Load completed and Unload has not run.
func (h *ViewHandle) Loaded() bool { return h.loaded }

func (h *ViewHandle) debug() bool {
	return h.layer != nil && h.layer.engine != nil && h.layer.engine.cfg.Debug
}

func (h *ViewHandle) load() error {
	h.scene = newScene(h)
	h.triggers = newTriggers(h)
	// Triggers may only be added once the view counts as loaded; Load is
	// where views add them, so flip the flag first and roll back on error.
	h.loaded = true
	if err := h.view.Load(h); err != nil {
		h.loaded = false
		h.triggers.clear()
		h.scene.teardown()
		return err
	}
	return nil
}

func (h *ViewHandle) unload() {
	if !h.loaded {
		return
	}
	h.view.Unload(h)
	h.triggers.clear()
	h.scene.teardown()
	h.loaded = false
}
