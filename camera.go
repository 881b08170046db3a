package voodoo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the viewport X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the virtual camera of one or more layers. World space is page
// space: x to the right, y down, one unit per CSS pixel on the z=0 plane,
// positive z toward the viewer. The camera sits over the center of the
// visible page area at the distance where the z=0 plane maps exactly one
// unit to one pixel.
type Camera struct {
	// Position is the eye position in world space. Derived from Viewport
	// and FOV; read-only for callers.
	Position mgl64.Vec3
	// ZNear and ZFar bound the view volume, measured from the eye.
	ZNear, ZFar float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Viewport is the visible page area: scroll offset and window size.
	Viewport Rect

	scrollTween *scrollAnim
}

// newCamera creates a camera placed over the given viewport.
func newCamera(fov, zNear, zFar float64, viewport Rect) *Camera {
	c := &Camera{ZNear: zNear, ZFar: zFar, FOV: fov, Viewport: viewport}
	c.place()
	return c
}

// place recomputes Position from Viewport and FOV.
func (c *Camera) place() {
	vp := c.Viewport
	dist := (vp.Height / 2) / math.Tan(mgl64.DegToRad(c.FOV)/2)
	c.Position = mgl64.Vec3{vp.X + vp.Width/2, vp.Y + vp.Height/2, dist}
}

// SetViewport moves the camera to a new visible page area and reports
// whether the camera position changed.
func (c *Camera) SetViewport(r Rect) bool {
	if r == c.Viewport {
		return false
	}
	prev := c.Position
	c.Viewport = r
	c.place()
	return c.Position != prev
}

// ScrollTo animates the viewport's top-left corner to the page position
// (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Viewport.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Viewport.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// update advances the scroll animation and reports whether the camera moved.
func (c *Camera) update(dt float32) bool {
	if c.scrollTween == nil {
		return false
	}
	vp := c.Viewport
	if !c.scrollTween.doneX {
		val, done := c.scrollTween.tweenX.Update(dt)
		vp.X = float64(val)
		c.scrollTween.doneX = done
	}
	if !c.scrollTween.doneY {
		val, done := c.scrollTween.tweenY.Update(dt)
		vp.Y = float64(val)
		c.scrollTween.doneY = done
	}
	if c.scrollTween.doneX && c.scrollTween.doneY {
		c.scrollTween = nil
	}
	return c.SetViewport(vp)
}

// Ray returns the ray from the eye through the page point (pageX, pageY) on
// the z=0 plane. The page point is at t = 1.
func (c *Camera) Ray(pageX, pageY float64) Ray {
	target := mgl64.Vec3{pageX, pageY, 0}
	return Ray{Origin: c.Position, Dir: target.Sub(c.Position)}
}

// ProjectToPage returns the page point the world point p appears over.
// ok is false for points at or behind the eye.
func (c *Camera) ProjectToPage(p mgl64.Vec3) (x, y float64, ok bool) {
	e := c.Position
	dz := e[2] - p[2]
	if dz <= 0 {
		return 0, 0, false
	}
	s := e[2] / dz
	return e[0] + (p[0]-e[0])*s, e[1] + (p[1]-e[1])*s, true
}

// PageToClient converts page coordinates to coordinates relative to the
// viewport's top-left corner.
func (c *Camera) PageToClient(x, y float64) (float64, float64) {
	return x - c.Viewport.X, y - c.Viewport.Y
}

// Frustum returns the view volume: the four planes through the eye and the
// viewport edges on the z=0 plane, plus the near and far planes.
func (c *Camera) Frustum() Frustum {
	e := c.Position
	vp := c.Viewport
	tl := mgl64.Vec3{vp.X, vp.Y, 0}
	tr := mgl64.Vec3{vp.X + vp.Width, vp.Y, 0}
	br := mgl64.Vec3{vp.X + vp.Width, vp.Y + vp.Height, 0}
	bl := mgl64.Vec3{vp.X, vp.Y + vp.Height, 0}
	center := mgl64.Vec3{vp.X + vp.Width/2, vp.Y + vp.Height/2, 0}

	var f Frustum
	f.Planes[0] = inward(planeFromPoints(e, tl, tr), center)
	f.Planes[1] = inward(planeFromPoints(e, tr, br), center)
	f.Planes[2] = inward(planeFromPoints(e, br, bl), center)
	f.Planes[3] = inward(planeFromPoints(e, bl, tl), center)
	f.Planes[4] = Plane{Normal: mgl64.Vec3{0, 0, -1}, D: e[2] - c.ZNear}
	f.Planes[5] = Plane{Normal: mgl64.Vec3{0, 0, 1}, D: -(e[2] - c.ZFar)}
	return f
}

// inward flips p so that the interior point lies on its positive side.
func inward(p Plane, interior mgl64.Vec3) Plane {
	if p.Distance(interior) < 0 {
		return Plane{Normal: p.Normal.Mul(-1), D: -p.D}
	}
	return p
}
