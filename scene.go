package voodoo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// AttachOptions select how a scene's local coordinates map onto its element.
type AttachOptions struct {
	// Center puts the local origin at the element's center instead of its
	// top-left corner.
	Center bool
	// PixelScale keeps one local unit per page pixel. When false one local
	// unit spans the element's width (x) and height (y).
	PixelScale bool
	// ZScale scales z by the average of the x and y scales so depth stays
	// proportionate to the element's on-screen size.
	ZScale bool
}

// DefaultAttachOptions returns Center, PixelScale and ZScale all set.
func DefaultAttachOptions() AttachOptions {
	return AttachOptions{Center: true, PixelScale: true, ZScale: true}
}

// Scene is one view's handle into the layer's shared scene graph: the
// ordered objects the view renders, its dirty state, and the transform from
// its local coordinates to page space.
//
// Unattached, local space is page space: origin at the page's top-left, one
// unit per pixel.
type Scene struct {
	view  *ViewHandle
	layer *Layer

	objects     []*Object
	dirty       bool
	forceRender bool
	// stale holds page-space boxes of content removed or moved since the
	// last render; the layer must redraw them if they are on screen.
	stale []AABB

	transform mgl64.Mat4
	inverse   mgl64.Mat4

	attached   Element
	attachOpts AttachOptions
	track      TrackHandle
}

func newScene(view *ViewHandle) *Scene {
	return &Scene{
		view:      view,
		layer:     view.layer,
		dirty:     true,
		transform: mgl64.Ident4(),
		inverse:   mgl64.Ident4(),
	}
}

func (s *Scene) debug() bool { return s.view.debug() }

// Add appends obj to the scene and hands it to the renderer.
func (s *Scene) Add(obj *Object) error {
	if obj == nil {
		return contractError(s.debug(), "scene add", ErrInvalidArgument)
	}
	if obj.scene != nil {
		return contractError(s.debug(), fmt.Sprintf("scene add %q", obj.Name), ErrObjectInScene)
	}
	obj.scene = s
	obj.handle = s.layer.arena.insert(obj)
	obj.updateWorld()
	s.objects = append(s.objects, obj)
	s.layer.renderer().AddObject(s.layer.pass, obj)
	s.MarkDirty()
	return nil
}

// Remove takes obj out of the scene. Its trigger, if any, is removed too.
func (s *Scene) Remove(obj *Object) error {
	if obj == nil || obj.scene != s {
		name := "<nil>"
		if obj != nil {
			name = obj.Name
		}
		return contractError(s.debug(), fmt.Sprintf("scene remove %q", name), ErrObjectNotFound)
	}
	s.remove(obj)
	return nil
}

func (s *Scene) remove(obj *Object) {
	if obj.trigger != nil {
		obj.trigger.registry.remove(obj.trigger)
	}
	s.vacate(obj)
	for i, o := range s.objects {
		if o == obj {
			copy(s.objects[i:], s.objects[i+1:])
			s.objects[len(s.objects)-1] = nil
			s.objects = s.objects[:len(s.objects)-1]
			break
		}
	}
	s.layer.arena.release(obj.handle)
	s.layer.renderer().RemoveObject(s.layer.pass, obj)
	obj.handle = objectHandle{}
	obj.scene = nil
	s.MarkDirty()
}

// Objects returns the scene's objects in insertion order. The returned slice
// MUST NOT be mutated.
func (s *Scene) Objects() []*Object { return s.objects }

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Dirty reports whether the scene changed since the last render.
func (s *Scene) Dirty() bool { return s.dirty }

// MarkDirty flags the scene for the next render decision.
func (s *Scene) MarkDirty() { s.dirty = true }

// ForceRender makes the layer render on the next frame regardless of
// visibility tests.
func (s *Scene) ForceRender() {
	s.forceRender = true
	s.dirty = true
}

// ForceRenderSet reports whether a forced render is pending.
func (s *Scene) ForceRenderSet() bool { return s.forceRender }

func (s *Scene) clearDirty() {
	s.dirty = false
	s.forceRender = false
	s.stale = s.stale[:0]
}

// vacate records the area covered by a visible mesh.
func (s *Scene) vacate(o *Object) {
	if o.Kind == KindMesh && o.visible {
		s.stale = append(s.stale, o.worldBox)
	}
}

// --- Attach / detach ---

// Attach binds the scene's local coordinates to el. The transform follows
// el's position and size from then on. Attaching again replaces the
// previous binding. Fires EventAttach on the owning model.
func (s *Scene) Attach(el Element, opts AttachOptions) error {
	if err := s.attach(el, opts); err != nil {
		return err
	}
	s.view.model.emit(Event{Type: EventAttach})
	return nil
}

func (s *Scene) attach(el Element, opts AttachOptions) error {
	if el == nil {
		return contractError(s.debug(), "scene attach", ErrInvalidArgument)
	}
	if s.attached != nil {
		s.release()
	}
	s.attached = el
	s.attachOpts = opts
	h, err := s.layer.engine.tracker.Track(el, s.onElementChange)
	if err != nil {
		s.attached = nil
		return err
	}
	s.track = h
	return nil
}

// Detach reverts to page space and stops following the element. Fires
// EventDetach on the owning model. Detaching an unattached scene does
// nothing.
func (s *Scene) Detach() error {
	if !s.detach() {
		return nil
	}
	s.view.model.emit(Event{Type: EventDetach})
	return nil
}

func (s *Scene) detach() bool {
	if s.attached == nil {
		return false
	}
	s.release()
	s.setTransform(mgl64.Ident4(), mgl64.Ident4())
	return true
}

// release drops the tracking subscription without touching the transform.
func (s *Scene) release() {
	if err := s.layer.engine.tracker.Release(s.track); err != nil {
		Logger().Warn("scene release", "err", err)
	}
	s.attached = nil
	s.track = TrackHandle{}
}

// Attached returns the element the scene follows, or nil.
func (s *Scene) Attached() Element { return s.attached }

// onElementChange is the tracker callback for the attached element.
func (s *Scene) onElementChange(x, y, width, height float64, moved, resized bool) {
	opts := s.attachOpts
	ox, oy := x, y
	if opts.Center {
		c := Rect{X: x, Y: y, Width: width, Height: height}.Center()
		ox, oy = c.X, c.Y
	}
	sx, sy := 1.0, 1.0
	if !opts.PixelScale {
		sx, sy = width, height
	}
	sz := 1.0
	if opts.ZScale {
		sz = (sx + sy) / 2
	}
	m := mgl64.Translate3D(ox, oy, 0).Mul4(mgl64.Scale3D(sx, sy, sz))
	inv := mgl64.Scale3D(invScale(sx), invScale(sy), invScale(sz)).Mul4(mgl64.Translate3D(-ox, -oy, 0))
	s.setTransform(m, inv)
}

// invScale inverts a scale factor; a collapsed element maps everything to
// its origin rather than producing infinities.
func invScale(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

// setTransform installs a new local-to-page transform, refreshing every
// object's world bounds and remembering the area they covered before.
func (s *Scene) setTransform(m, inv mgl64.Mat4) {
	for _, o := range s.objects {
		s.vacate(o)
	}
	s.transform = m
	s.inverse = inv
	for _, o := range s.objects {
		o.updateWorld()
	}
	s.MarkDirty()
}

// Transform returns the local-to-page matrix.
func (s *Scene) Transform() mgl64.Mat4 { return s.transform }

// LocalToPage converts a local coordinate to page space.
func (s *Scene) LocalToPage(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, s.transform)
}

// PageToLocal converts a page-space coordinate to local space.
func (s *Scene) PageToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, s.inverse)
}

// teardown empties the scene and drops any attachment. Used on unload.
func (s *Scene) teardown() {
	if s.attached != nil {
		s.release()
	}
	for len(s.objects) > 0 {
		s.remove(s.objects[len(s.objects)-1])
	}
}
