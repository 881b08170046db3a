package voodoo

import (
	"fmt"
	"sync/atomic"
)

// TrackFunc receives an element's absolute page position and size. moved and
// resized report which of the two changed since the previous sample.
type TrackFunc func(x, y, width, height float64, moved, resized bool)

// TrackHandle identifies one callback registration. The zero value is never
// returned by Track.
type TrackHandle struct {
	element  uint32
	callback uint32
}

type trackCallback struct {
	id       uint32
	fn       TrackFunc
	released bool
}

// TrackedElement holds the last sampled bounds of one element and every
// callback registered against it.
type TrackedElement struct {
	id        uint32
	el        Element
	bounds    Rect
	callbacks []*trackCallback
}

// Element returns the tracked element.
func (t *TrackedElement) Element() Element { return t.el }

// Bounds returns the most recent sample.
func (t *TrackedElement) Bounds() Rect { return t.bounds }

func (t *TrackedElement) fire(cb *trackCallback, moved, resized bool) {
	b := t.bounds
	cb.fn(b.X, b.Y, b.Width, b.Height, moved, resized)
}

// ElementTracker samples element bounds once per frame and notifies
// callbacks of changes. Elements are de-duplicated through the id stamped on
// them under the tracker's key, so any number of registrations on one
// element share a single sample.
type ElementTracker struct {
	key      uint32
	elements map[uint32]*TrackedElement
	order    []*TrackedElement
	nextID   uint32
	nextCB   uint32
	debug    bool
}

var trackerKeys atomic.Uint32

// NewElementTracker returns an empty tracker.
func NewElementTracker() *ElementTracker {
	return &ElementTracker{
		key:      trackerKeys.Add(1),
		elements: make(map[uint32]*TrackedElement),
	}
}

// Key returns the key this tracker stamps its element ids under.
func (tr *ElementTracker) Key() uint32 { return tr.key }

// Track registers fn against el. fn is called once before Track returns with
// the element's current bounds and moved = resized = true, then again on
// every Update in which the bounds changed.
func (tr *ElementTracker) Track(el Element, fn TrackFunc) (TrackHandle, error) {
	if el == nil || fn == nil {
		return TrackHandle{}, contractError(tr.debug, "track", ErrInvalidArgument)
	}

	te := tr.lookup(el)
	if te == nil {
		tr.nextID++
		te = &TrackedElement{id: tr.nextID, el: el, bounds: el.Bounds()}
		el.SetTrackingID(tr.key, te.id)
		tr.elements[te.id] = te
		tr.order = append(tr.order, te)
	}

	tr.nextCB++
	cb := &trackCallback{id: tr.nextCB, fn: fn}
	te.callbacks = append(te.callbacks, cb)
	te.fire(cb, true, true)
	return TrackHandle{element: te.id, callback: cb.id}, nil
}

// lookup resolves an element through the id this tracker stamped on it.
func (tr *ElementTracker) lookup(el Element) *TrackedElement {
	id := el.TrackingID(tr.key)
	if id == 0 {
		return nil
	}
	te, ok := tr.elements[id]
	if !ok || te.el != el {
		return nil
	}
	return te
}

// Release removes a registration. The callback will not fire again, even
// later within an Update that is in progress. When the last callback of an
// element is released the element is forgotten and its id unstamped.
func (tr *ElementTracker) Release(h TrackHandle) error {
	te, ok := tr.elements[h.element]
	if !ok {
		return contractError(tr.debug, fmt.Sprintf("release track %d/%d", h.element, h.callback), ErrTrackNotFound)
	}
	idx := -1
	for i, cb := range te.callbacks {
		if cb.id == h.callback {
			idx = i
			break
		}
	}
	if idx < 0 {
		return contractError(tr.debug, fmt.Sprintf("release track %d/%d", h.element, h.callback), ErrTrackNotFound)
	}

	te.callbacks[idx].released = true
	copy(te.callbacks[idx:], te.callbacks[idx+1:])
	te.callbacks[len(te.callbacks)-1] = nil
	te.callbacks = te.callbacks[:len(te.callbacks)-1]

	if len(te.callbacks) == 0 {
		tr.forget(te)
	}
	return nil
}

func (tr *ElementTracker) forget(te *TrackedElement) {
	delete(tr.elements, te.id)
	for i, o := range tr.order {
		if o == te {
			copy(tr.order[i:], tr.order[i+1:])
			tr.order[len(tr.order)-1] = nil
			tr.order = tr.order[:len(tr.order)-1]
			break
		}
	}
	if te.el.TrackingID(tr.key) == te.id {
		te.el.SetTrackingID(tr.key, 0)
	}
	for _, cb := range te.callbacks {
		cb.released = true
	}
	te.callbacks = nil
}

// Update re-samples every tracked element. Comparison is exact: any change
// in position or size, however small, notifies every callback of that
// element exactly once.
func (tr *ElementTracker) Update() {
	if len(tr.order) == 0 {
		return
	}
	// Callbacks may release registrations (a scene detaching itself), so
	// iterate over snapshots and skip anything released along the way.
	elems := append([]*TrackedElement(nil), tr.order...)
	for _, te := range elems {
		if _, live := tr.elements[te.id]; !live {
			continue
		}
		b := te.el.Bounds()
		moved := b.X != te.bounds.X || b.Y != te.bounds.Y
		resized := b.Width != te.bounds.Width || b.Height != te.bounds.Height
		if !moved && !resized {
			continue
		}
		te.bounds = b
		cbs := append([]*trackCallback(nil), te.callbacks...)
		for _, cb := range cbs {
			if cb.released {
				continue
			}
			te.fire(cb, moved, resized)
		}
	}
}

// Len returns the number of distinct elements being tracked.
func (tr *ElementTracker) Len() int {
	return len(tr.order)
}

// Tracked returns the tracked element for el, or nil.
func (tr *ElementTracker) Tracked(el Element) *TrackedElement {
	if el == nil {
		return nil
	}
	return tr.lookup(el)
}

// Reset drops every registration and unstamps every element.
func (tr *ElementTracker) Reset() {
	for len(tr.order) > 0 {
		tr.forget(tr.order[len(tr.order)-1])
	}
}
