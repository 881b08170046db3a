package voodoo

// Vec2 is a 2D vector used for page and client coordinates.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in page space. The origin is the page's
// top-left corner, with Y increasing downward. One unit is one CSS pixel.
type Rect struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the geometric center of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// LayerPass identifies the render pass a Layer performs. It is fixed when the
// layer is created.
type LayerPass uint8

const (
	PassAbove        LayerPass = iota // content drawn over the page
	PassBelow                         // content drawn under the page
	PassBelowStencil                  // mask of below content for seam correction
	PassSeam                          // above-camera pass over the seam between above and below
	PassSeamStencil                   // mask for the seam pass
	numPasses
)

var passNames = [numPasses]string{"above", "below", "belowstencil", "seam", "seamstencil"}

func (p LayerPass) String() string {
	if p < numPasses {
		return passNames[p]
	}
	return "unknown"
}

// mouseCapable reports whether triggers in this pass take part in hit testing.
// Stencil passes only mask other content.
func (p LayerPass) mouseCapable() bool {
	return p == PassAbove || p == PassBelow || p == PassSeam
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
