package voodoo

// Element is a page element 3D content can be anchored to. Bounds reports the
// element's absolute page position and size in CSS pixels as currently laid
// out. Every ElementTracker stamps its own id onto the element under its
// tracker key, so that every registration on the same element shares one
// TrackedElement and several engines can follow the same element.
type Element interface {
	Bounds() Rect
	TrackingID(tracker uint32) uint32
	SetTrackingID(tracker, id uint32)
}

// ElementID implements the tracking-id half of Element. Embed it in host
// element types. The zero value is ready to use.
type ElementID struct {
	ids map[uint32]uint32
}

// TrackingID returns the id stamped by tracker, or 0 when that tracker does
// not follow the element.
func (e *ElementID) TrackingID(tracker uint32) uint32 { return e.ids[tracker] }

// SetTrackingID stamps the id for tracker; 0 removes the stamp. Only
// ElementTracker should call this.
func (e *ElementID) SetTrackingID(tracker, id uint32) {
	if id == 0 {
		delete(e.ids, tracker)
		return
	}
	if e.ids == nil {
		e.ids = make(map[uint32]uint32, 1)
	}
	e.ids[tracker] = id
}

// Box is a free-standing rectangular element. Hosts without a layout engine
// (and tests) move and resize it directly; the tracker picks the change up
// on the next frame.
type Box struct {
	ElementID
	rect Rect
}

// NewBox returns a Box at the given page position and size.
func NewBox(x, y, width, height float64) *Box {
	return &Box{rect: Rect{X: x, Y: y, Width: width, Height: height}}
}

// Bounds returns the box rectangle.
func (b *Box) Bounds() Rect { return b.rect }

// SetPosition moves the box.
func (b *Box) SetPosition(x, y float64) {
	b.rect.X = x
	b.rect.Y = y
}

// SetSize resizes the box.
func (b *Box) SetSize(width, height float64) {
	b.rect.Width = width
	b.rect.Height = height
}
