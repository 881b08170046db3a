package voodoo

import "github.com/go-gl/mathgl/mgl64"

// Hit is the result of a successful raycast.
type Hit struct {
	Trigger *Trigger
	// Point is the page-space point where the ray entered the trigger's
	// bounds.
	Point mgl64.Vec3
	// T is the ray parameter; the page plane is at 1.
	T     float64
	Layer *Layer
}

type rayCandidate struct {
	layer  *Layer
	handle objectHandle
}

// Raycaster resolves the trigger under a page position across every
// mouse-capable layer.
type Raycaster struct {
	layers []*Layer
	buf    []rayCandidate
}

// newRaycaster builds a raycaster over the given layers, which must be in
// hit priority order.
func newRaycaster(layers []*Layer) *Raycaster {
	rc := &Raycaster{}
	for _, l := range layers {
		if l != nil && l.pass.mouseCapable() {
			rc.layers = append(rc.layers, l)
		}
	}
	return rc
}

// collect snapshots the trigger objects of every loaded view as arena
// handles. Handlers run during dispatch may remove objects; a released
// handle resolves to nil and is skipped.
func (rc *Raycaster) collect() []rayCandidate {
	buf := rc.buf[:0]
	for _, l := range rc.layers {
		for _, v := range l.views {
			if !v.loaded {
				continue
			}
			for _, t := range v.triggers.list {
				buf = append(buf, rayCandidate{layer: l, handle: t.object.handle})
			}
		}
	}
	rc.buf = buf
	return buf
}

// Cast returns the nearest trigger hit by the ray from each layer's camera
// through (pageX, pageY). Ties go to the layer cast first.
func (rc *Raycaster) Cast(pageX, pageY float64) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, c := range rc.collect() {
		obj := c.layer.arena.get(c.handle)
		if obj == nil || obj.trigger == nil || !obj.visible || obj.Kind != KindMesh {
			continue
		}
		ray := c.layer.camera.Ray(pageX, pageY)
		t, ok := ray.IntersectAABB(obj.worldBox)
		if !ok {
			continue
		}
		if !found || t < best.T {
			best = Hit{Trigger: obj.trigger, Point: ray.At(t), T: t, Layer: c.layer}
			found = true
		}
	}
	return best, found
}
