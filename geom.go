package voodoo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// NewAABB returns the box spanning two corners given in any order.
func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// UnitCube is the box from (-0.5,-0.5,-0.5) to (0.5,0.5,0.5).
var UnitCube = AABB{Min: mgl64.Vec3{-0.5, -0.5, -0.5}, Max: mgl64.Vec3{0.5, 0.5, 0.5}}

// IsEmpty reports whether the box has no volume on any axis inversion.
func (b AABB) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the center of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Transform returns the axis-aligned box enclosing the eight corners of b
// transformed by m.
func (b AABB) Transform(m mgl64.Mat4) AABB {
	out := AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < 8; i++ {
		c := mgl64.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		p := mgl64.TransformCoordinate(c, m)
		for k := 0; k < 3; k++ {
			out.Min[k] = math.Min(out.Min[k], p[k])
			out.Max[k] = math.Max(out.Max[k], p[k])
		}
	}
	return out
}

// Ray is a half-line from Origin along Dir. Dir need not be normalized; the
// ray parameter t is measured in multiples of Dir.
type Ray struct {
	Origin, Dir mgl64.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectAABB returns the smallest non-negative t at which the ray is
// inside b, using the slab method. A ray starting inside the box hits at 0.
func (r Ray) IntersectAABB(b AABB) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	for k := 0; k < 3; k++ {
		if r.Dir[k] == 0 {
			if r.Origin[k] < b.Min[k] || r.Origin[k] > b.Max[k] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[k]
		t0 := (b.Min[k] - r.Origin[k]) * inv
		t1 := (b.Max[k] - r.Origin[k]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// Plane is the set of points p with Normal·p + D = 0. Points with a positive
// distance are on the inside.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// planeFromPoints builds the plane through a, b, c with the inside to the
// left of a→b→c when seen from the normal's tip.
func planeFromPoints(a, b, c mgl64.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Distance returns the signed distance of p from the plane.
func (p Plane) Distance(v mgl64.Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// Frustum is a convex volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [6]Plane
}

// IntersectsAABB reports whether any part of b may lie inside the frustum.
// For each plane the box corner furthest along the plane normal is tested;
// if it is outside, the whole box is.
func (f Frustum) IntersectsAABB(b AABB) bool {
	if b.IsEmpty() {
		return false
	}
	for _, p := range f.Planes {
		var v mgl64.Vec3
		for k := 0; k < 3; k++ {
			if p.Normal[k] >= 0 {
				v[k] = b.Max[k]
			} else {
				v[k] = b.Min[k]
			}
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether v lies inside or on the frustum.
func (f Frustum) ContainsPoint(v mgl64.Vec3) bool {
	for _, p := range f.Planes {
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}
