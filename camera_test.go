package voodoo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func TestCameraPlacement(t *testing.T) {
	// fov 90: the eye is half the viewport height away from the page.
	cam := newCamera(90, 1, 1000, Rect{Width: 800, Height: 600})
	want := mgl64.Vec3{400, 300, 300}
	if !vecApprox(cam.Position, want, 1e-6) {
		t.Errorf("Position = %v, want %v", cam.Position, want)
	}
}

func TestCameraRayThroughPagePoint(t *testing.T) {
	cam := newCamera(45, 1, 10000, Rect{X: 100, Y: 50, Width: 1024, Height: 768})
	for _, p := range []Vec2{{100, 50}, {612, 434}, {1000, 700}} {
		r := cam.Ray(p.X, p.Y)
		if r.Origin != cam.Position {
			t.Errorf("ray origin = %v, want eye %v", r.Origin, cam.Position)
		}
		if got := r.At(1); !vecApprox(got, mgl64.Vec3{p.X, p.Y, 0}, 1e-6) {
			t.Errorf("Ray(%v,%v).At(1) = %v", p.X, p.Y, got)
		}
	}
}

func TestCameraProjectToPage(t *testing.T) {
	cam := newCamera(90, 1, 1000, Rect{Width: 800, Height: 600})

	tests := []struct {
		name   string
		p      mgl64.Vec3
		wantX  float64
		wantY  float64
		wantOK bool
	}{
		{"on page", mgl64.Vec3{100, 120, 0}, 100, 120, true},
		{"raised point spreads out", mgl64.Vec3{500, 300, 150}, 600, 300, true},
		{"sunk point pulls in", mgl64.Vec3{700, 300, -300}, 550, 300, true},
		{"at eye depth", mgl64.Vec3{400, 300, 300}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cam.ProjectToPage(tt.p)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (!approxEqual(x, tt.wantX, 1e-6) || !approxEqual(y, tt.wantY, 1e-6)) {
				t.Errorf("ProjectToPage = (%v,%v), want (%v,%v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestCameraPageToClient(t *testing.T) {
	cam := newCamera(45, 1, 10000, Rect{X: 30, Y: 200, Width: 800, Height: 600})
	x, y := cam.PageToClient(130, 250)
	if x != 100 || y != 50 {
		t.Errorf("PageToClient = (%v,%v), want (100,50)", x, y)
	}
}

func TestCameraSetViewport(t *testing.T) {
	cam := newCamera(45, 1, 10000, Rect{Width: 800, Height: 600})
	before := cam.Position

	if cam.SetViewport(Rect{Width: 800, Height: 600}) {
		t.Error("same viewport should not move the camera")
	}
	if !cam.SetViewport(Rect{X: 10, Y: 250, Width: 800, Height: 600}) {
		t.Fatal("scrolling should move the camera")
	}
	want := before.Add(mgl64.Vec3{10, 250, 0})
	if !vecApprox(cam.Position, want, 1e-9) {
		t.Errorf("Position = %v, want %v", cam.Position, want)
	}
}

func TestCameraScrollTo(t *testing.T) {
	cam := newCamera(45, 1, 10000, Rect{Width: 800, Height: 600})
	cam.ScrollTo(100, 200, 1.0, ease.Linear)
	if !cam.Scrolling() {
		t.Fatal("Scrolling = false after ScrollTo")
	}

	// Advance halfway
	if !cam.update(0.5) {
		t.Error("update should report movement")
	}
	if !approxEqual(cam.Viewport.X, 50, 1.0) || !approxEqual(cam.Viewport.Y, 100, 1.0) {
		t.Errorf("scroll halfway: viewport = (%f,%f), want ~(50,100)", cam.Viewport.X, cam.Viewport.Y)
	}

	// Advance to end
	cam.update(0.5)
	if !approxEqual(cam.Viewport.X, 100, 1.0) || !approxEqual(cam.Viewport.Y, 200, 1.0) {
		t.Errorf("scroll end: viewport = (%f,%f), want ~(100,200)", cam.Viewport.X, cam.Viewport.Y)
	}

	// Tween should be cleared
	if cam.scrollTween != nil {
		t.Error("scrollTween not nil after completion")
	}
	if cam.update(0.5) {
		t.Error("update without a tween should not move the camera")
	}
}
