package voodoo

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// EventType identifies a synthesized event.
type EventType uint8

const (
	EventMouseDown  EventType = iota // button pressed (over a trigger, for model handlers)
	EventMouseUp                     // button released
	EventMouseMove                   // pointer moved
	EventMouseOver                   // pointer entered a trigger
	EventMouseOut                    // pointer left a trigger
	EventClick                       // press and release on equivalent triggers
	EventDblClick                    // second click on an equivalent trigger in time
	EventCameraMove                  // page scrolled or viewport resized
	EventAttach                      // scene attached to an element
	EventDetach                      // scene detached from its element
	EventLoad                        // all views of a model loaded
	EventUnload                      // views of a model unloaded
	numEventTypes
)

var eventNames = [numEventTypes]string{
	"mousedown", "mouseup", "mousemove", "mouseover", "mouseout",
	"click", "dblclick", "cameramove", "attach", "detach", "load", "unload",
}

func (t EventType) String() string {
	if t < numEventTypes {
		return eventNames[t]
	}
	return "unknown"
}

// Event is a synthesized framework event. It is passed by value and never
// modified after construction.
type Event struct {
	Type  EventType
	Model *Model
	// TriggerID is the id of the trigger involved, DefaultTriggerID otherwise.
	TriggerID TriggerID

	// Page and Client are the mouse position in page and viewport
	// coordinates. Valid when HasMouse is set.
	Page, Client Vec2
	HasMouse     bool

	// Hit is the page-space point where the mouse ray met the trigger.
	// Valid when HasHit is set.
	Hit    mgl64.Vec3
	HasHit bool

	Button    MouseButton
	Modifiers KeyModifiers
	Time      time.Time
}

// HandlerFunc receives events.
type HandlerFunc func(Event)

// EventSink receives a copy of every event the engine synthesizes. It is the
// bridge to external systems such as an ECS.
type EventSink interface {
	EmitEvent(event Event)
}

type eventHandler struct {
	id uint32
	fn HandlerFunc
}

// handlerRegistry holds handlers per event type in registration order.
type handlerRegistry struct {
	byType [numEventTypes][]eventHandler
	nextID uint32
}

func (r *handlerRegistry) add(t EventType, fn HandlerFunc) uint32 {
	r.nextID++
	r.byType[t] = append(r.byType[t], eventHandler{id: r.nextID, fn: fn})
	return r.nextID
}

func (r *handlerRegistry) remove(t EventType, id uint32) bool {
	s := r.byType[t]
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = eventHandler{}
			r.byType[t] = s[:len(s)-1]
			return true
		}
	}
	return false
}

// dispatch calls every handler registered for ev.Type. Handlers added or
// removed during dispatch take effect from the next event.
func (r *handlerRegistry) dispatch(ev Event) {
	hs := r.byType[ev.Type]
	if len(hs) == 0 {
		return
	}
	for _, h := range append([]eventHandler(nil), hs...) {
		h.fn(ev)
	}
}

func (r *handlerRegistry) clear() {
	for i := range r.byType {
		r.byType[i] = nil
	}
}

// Handle allows removing a registered handler.
type Handle struct {
	id    uint32
	event EventType
	model *Model
	eng   *Engine
}

// Remove unregisters the handler. Removing twice is an error.
func (h Handle) Remove() error {
	switch {
	case h.model != nil:
		return h.model.Off(h)
	case h.eng != nil:
		return h.eng.Off(h)
	}
	return contractError(false, "remove handler", ErrHandlerNotFound)
}
