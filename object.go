package voodoo

import "github.com/go-gl/mathgl/mgl64"

// ObjectKind distinguishes renderables the layer can cull cheaply (meshes)
// from those it cannot (lights, helpers).
type ObjectKind uint8

const (
	KindMesh   ObjectKind = iota // geometry with known local bounds
	KindLight                    // affects everything; never culled
	KindHelper                   // debug geometry without reliable bounds
)

// Object is a renderable handed to the renderer through a Scene. Its
// transform is a translation and per-axis scale in the owning scene's local
// coordinate space.
type Object struct {
	Name string
	Kind ObjectKind
	// Geometry is the mesh's local-space bounding box. Ignored for other kinds.
	Geometry AABB
	// UserData is carried through to the renderer untouched.
	UserData any

	position mgl64.Vec3
	scale    mgl64.Vec3
	visible  bool

	scene   *Scene
	handle  objectHandle
	trigger *Trigger

	world    mgl64.Mat4
	worldBox AABB
}

// NewMesh creates a mesh object with the given local bounds.
func NewMesh(name string, geometry AABB) *Object {
	return newObject(name, KindMesh, geometry)
}

// NewLight creates a light object.
func NewLight(name string) *Object {
	return newObject(name, KindLight, AABB{})
}

// NewHelper creates a helper object (axes, grids and the like).
func NewHelper(name string) *Object {
	return newObject(name, KindHelper, AABB{})
}

func newObject(name string, kind ObjectKind, geometry AABB) *Object {
	return &Object{
		Name:     name,
		Kind:     kind,
		Geometry: geometry,
		scale:    mgl64.Vec3{1, 1, 1},
		visible:  true,
		world:    mgl64.Ident4(),
	}
}

// Scene returns the scene the object was added to, or nil.
func (o *Object) Scene() *Scene { return o.scene }

// Trigger returns the object's live trigger registration, or nil.
func (o *Object) Trigger() *Trigger { return o.trigger }

// Position returns the local-space position.
func (o *Object) Position() mgl64.Vec3 { return o.position }

// Scale returns the local-space scale.
func (o *Object) Scale() mgl64.Vec3 { return o.scale }

// Visible reports whether the object is drawn and hit-testable.
func (o *Object) Visible() bool { return o.visible }

// SetPosition moves the object and marks its scene dirty.
func (o *Object) SetPosition(x, y, z float64) {
	o.vacate()
	o.position = mgl64.Vec3{x, y, z}
	o.changed()
}

// SetScale rescales the object and marks its scene dirty.
func (o *Object) SetScale(x, y, z float64) {
	o.vacate()
	o.scale = mgl64.Vec3{x, y, z}
	o.changed()
}

// SetVisible shows or hides the object and marks its scene dirty.
func (o *Object) SetVisible(v bool) {
	if o.visible == v {
		return
	}
	o.vacate()
	o.visible = v
	o.changed()
}

// vacate remembers the area the object covers before a change so the layer
// redraws what it leaves behind.
func (o *Object) vacate() {
	if o.scene != nil {
		o.scene.vacate(o)
	}
}

// changed refreshes the world transform and marks the scene dirty.
func (o *Object) changed() {
	if o.scene == nil {
		return
	}
	o.updateWorld()
	o.scene.MarkDirty()
}

// localMatrix returns Translate(position) * Scale(scale).
func (o *Object) localMatrix() mgl64.Mat4 {
	p, s := o.position, o.scale
	return mgl64.Translate3D(p[0], p[1], p[2]).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// updateWorld recomputes the page-space matrix and bounding box from the
// scene transform.
func (o *Object) updateWorld() {
	m := o.localMatrix()
	if o.scene != nil {
		m = o.scene.transform.Mul4(m)
	}
	o.world = m
	if o.Kind == KindMesh {
		o.worldBox = o.Geometry.Transform(m)
	}
}

// WorldMatrix returns the local-to-page matrix as of the last update.
func (o *Object) WorldMatrix() mgl64.Mat4 { return o.world }

// WorldBounds returns the page-space bounding box as of the last update.
func (o *Object) WorldBounds() AABB { return o.worldBox }

// --- Arena ---

// objectHandle is a stable reference into a layer's object arena. The
// generation guards against reuse of a slot after release.
type objectHandle struct {
	index uint32
	gen   uint32
}

func (h objectHandle) valid() bool { return h.gen != 0 }

type arenaSlot struct {
	obj *Object
	gen uint32
}

// objectArena stores the objects of one layer at stable indices so that a
// raycast in progress holds handles, not pointers into a mutable graph.
type objectArena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

func (a *objectArena) insert(o *Object) objectHandle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.obj = o
	a.live++
	return objectHandle{index: idx, gen: s.gen}
}

func (a *objectArena) release(h objectHandle) bool {
	if a.get(h) == nil {
		return false
	}
	s := &a.slots[h.index]
	s.obj = nil
	s.gen++
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// get resolves h, returning nil for released or stale handles.
func (a *objectArena) get(h objectHandle) *Object {
	if !h.valid() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.obj
}

func (a *objectArena) len() int { return a.live }

func (a *objectArena) reset() {
	a.slots = nil
	a.free = nil
	a.live = 0
}
