package voodoo

// Layer is one render pass over the views that declared membership in it.
// Layers are created with the engine and live until it is destroyed.
type Layer struct {
	engine *Engine
	pass   LayerPass
	camera *Camera
	views  []*ViewHandle
	arena  objectArena

	// cameraMoved is set when the camera moved since the last render; every
	// pixel on screen is then out of date.
	cameraMoved bool
	// vacated is set when a view left the layer.
	vacated bool
	renders uint64
}

func newLayer(e *Engine, pass LayerPass, cam *Camera) *Layer {
	return &Layer{engine: e, pass: pass, camera: cam}
}

// Pass returns the layer's pass.
func (l *Layer) Pass() LayerPass { return l.pass }

// Camera returns the layer's camera. Seam layers share the above camera.
func (l *Layer) Camera() *Camera { return l.camera }

// Views returns the views rendering into this layer. The returned slice MUST
// NOT be mutated.
func (l *Layer) Views() []*ViewHandle { return l.views }

// RenderCount returns how many times the layer has been rendered.
func (l *Layer) RenderCount() uint64 { return l.renders }

// ObjectCount returns the number of objects across all views.
func (l *Layer) ObjectCount() int { return l.arena.len() }

// EachObject calls fn for every object of every loaded view, in view then
// insertion order. Renderers use this to walk the layer.
func (l *Layer) EachObject(fn func(obj *Object)) {
	for _, v := range l.views {
		if !v.loaded {
			continue
		}
		for _, o := range v.scene.objects {
			fn(o)
		}
	}
}

func (l *Layer) renderer() Renderer { return l.engine.renderer }

func (l *Layer) addView(v *ViewHandle) {
	l.views = append(l.views, v)
}

func (l *Layer) removeView(v *ViewHandle) {
	for i, x := range l.views {
		if x == v {
			copy(l.views[i:], l.views[i+1:])
			l.views[len(l.views)-1] = nil
			l.views = l.views[:len(l.views)-1]
			// The view's content disappears from the screen.
			l.vacated = true
			return
		}
	}
}

// IsRenderNeeded decides whether the layer must be re-rendered this frame.
//
// A scene with a pending forced render wins immediately. Otherwise every
// dirty scene is tested: non-mesh content (lights, helpers) cannot be
// culled and always requires a render; meshes, and the areas vacated by
// removed or moved meshes, are tested against the camera frustum.
func (l *Layer) IsRenderNeeded() bool {
	if l.vacated {
		return true
	}
	var (
		frustum     Frustum
		haveFrustum bool
		anyLoaded   bool
	)
	for _, v := range l.views {
		if !v.loaded {
			continue
		}
		anyLoaded = true
		s := v.scene
		if s.forceRender {
			return true
		}
		if !s.dirty {
			continue
		}
		for _, o := range s.objects {
			if o.Kind != KindMesh {
				return true
			}
		}
		if !haveFrustum {
			frustum = l.camera.Frustum()
			haveFrustum = true
		}
		for _, box := range s.stale {
			if frustum.IntersectsAABB(box) {
				return true
			}
		}
		for _, o := range s.objects {
			if !o.visible {
				continue
			}
			o.updateWorld()
			if frustum.IntersectsAABB(o.worldBox) {
				return true
			}
		}
	}
	return l.cameraMoved && anyLoaded
}

// ClearDirtyFlags resets the dirty and force-render flags of every scene.
// Called once per frame after every layer's render decision was made.
func (l *Layer) ClearDirtyFlags() {
	for _, v := range l.views {
		if v.scene != nil {
			v.scene.clearDirty()
		}
	}
	l.cameraMoved = false
	l.vacated = false
}

func (l *Layer) render() error {
	l.renders++
	return l.renderer().RenderLayer(l)
}

// release drops every view reference at engine teardown.
func (l *Layer) release() {
	l.views = nil
	l.arena.reset()
}
