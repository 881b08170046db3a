package voodoo

import "time"

// --- Raw input ---

type inputKind uint8

const (
	inputMove inputKind = iota
	inputDown
	inputUp
)

// inputEvent is one raw mouse event waiting for the next frame. Coordinates
// are in page space.
type inputEvent struct {
	kind   inputKind
	x, y   float64
	button MouseButton
	mods   KeyModifiers
}

// MouseMove queues a pointer move to the page position (x, y). Queued input
// is raycast and dispatched in order on the next Frame.
func (e *Engine) MouseMove(x, y float64, mods KeyModifiers) error {
	return e.queueInput("mouse move", inputEvent{kind: inputMove, x: x, y: y, mods: mods})
}

// MouseDown queues a button press at the page position (x, y).
func (e *Engine) MouseDown(x, y float64, button MouseButton, mods KeyModifiers) error {
	return e.queueInput("mouse down", inputEvent{kind: inputDown, x: x, y: y, button: button, mods: mods})
}

// MouseUp queues a button release at the page position (x, y).
func (e *Engine) MouseUp(x, y float64, button MouseButton, mods KeyModifiers) error {
	return e.queueInput("mouse up", inputEvent{kind: inputUp, x: x, y: y, button: button, mods: mods})
}

func (e *Engine) queueInput(op string, in inputEvent) error {
	if err := e.checkLive(op); err != nil {
		return err
	}
	e.inputQueue = append(e.inputQueue, in)
	return nil
}

// PendingInput returns the number of queued raw events.
func (e *Engine) PendingInput() int { return len(e.inputQueue) }

// --- Pointer state machine ---

// pointerState follows the mouse across frames: the trigger under it, the
// candidate for a click and the last click for double-click detection.
type pointerState struct {
	hasPos bool
	x, y   float64

	hover *Trigger

	pending       *Trigger
	pendingButton MouseButton

	lastClick       *Trigger
	lastClickButton MouseButton
	lastClickTime   time.Time
}

// forget drops every reference to triggers of m.
func (p *pointerState) forget(m *Model) {
	if p.hover != nil && p.hover.model == m {
		p.hover = nil
	}
	if p.pending != nil && p.pending.model == m {
		p.pending = nil
	}
	if p.lastClick != nil && p.lastClick.model == m {
		p.lastClick = nil
	}
}

// processInput drains the raw input queue. When no input arrived but content
// or the camera changed, the hovered trigger is re-resolved at the last
// mouse position so mouseover and mouseout stay correct under a still
// mouse.
func (e *Engine) processInput() {
	if len(e.inputQueue) == 0 {
		if e.pointer.hasPos && e.contentChanged() {
			e.refreshHover()
		}
		return
	}
	queue := e.inputQueue
	e.inputQueue = nil
	for _, in := range queue {
		if e.destroyed {
			return
		}
		switch in.kind {
		case inputMove:
			e.handleMove(in)
		case inputDown:
			e.handleDown(in)
		case inputUp:
			e.handleUp(in)
		}
	}
}

// contentChanged reports whether anything a raycast depends on may have
// changed since the last frame.
func (e *Engine) contentChanged() bool {
	for _, l := range e.order {
		if !l.pass.mouseCapable() {
			continue
		}
		if l.cameraMoved || l.vacated {
			return true
		}
		for _, v := range l.views {
			if v.scene != nil && v.scene.dirty {
				return true
			}
		}
	}
	return false
}

// pointerEvent builds the common part of a mouse event.
func (e *Engine) pointerEvent(t EventType, in inputEvent, hit Hit, ok bool) Event {
	cx, cy := e.aboveCam.PageToClient(in.x, in.y)
	ev := Event{
		Type:      t,
		Page:      Vec2{X: in.x, Y: in.y},
		Client:    Vec2{X: cx, Y: cy},
		HasMouse:  true,
		Button:    in.button,
		Modifiers: in.mods,
		Time:      e.now(),
	}
	if ok {
		ev.TriggerID = hit.Trigger.id
		ev.Hit = hit.Point
		ev.HasHit = true
	}
	return ev
}

// cast raycasts at the event position and records it as the last known
// mouse position. Positions outside the viewport show no content and hit
// nothing.
func (e *Engine) cast(in inputEvent) (Hit, bool, *Trigger) {
	e.pointer.hasPos = true
	e.pointer.x, e.pointer.y = in.x, in.y
	if !e.aboveCam.Viewport.Contains(in.x, in.y) {
		return Hit{}, false, nil
	}
	hit, ok := e.raycaster.Cast(in.x, in.y)
	if !ok {
		return hit, false, nil
	}
	return hit, true, hit.Trigger
}

// deliver fires ev on the model of t, or on the engine handlers alone when
// the pointer is over nothing.
func (e *Engine) deliver(t *Trigger, ev Event) {
	if t != nil && !t.model.destroyed {
		t.model.emit(ev)
		return
	}
	ev.Model = nil
	e.forward(ev)
}

func (e *Engine) handleMove(in inputEvent) {
	hit, ok, t := e.cast(in)
	e.updateHover(t, in, hit, ok)
	e.deliver(t, e.pointerEvent(EventMouseMove, in, hit, ok))
}

func (e *Engine) handleDown(in inputEvent) {
	hit, ok, t := e.cast(in)
	e.updateHover(t, in, hit, ok)
	e.pointer.pending = t
	e.pointer.pendingButton = in.button
	e.deliver(t, e.pointerEvent(EventMouseDown, in, hit, ok))
}

func (e *Engine) handleUp(in inputEvent) {
	hit, ok, t := e.cast(in)
	e.updateHover(t, in, hit, ok)
	e.deliver(t, e.pointerEvent(EventMouseUp, in, hit, ok))

	p := &e.pointer
	pending := p.pending
	p.pending = nil
	if pending == nil || !pending.IsEquivalentTo(t) || p.pendingButton != in.button {
		// Released elsewhere: the click is cancelled without an event.
		return
	}
	if t.model.destroyed {
		return
	}
	click := e.pointerEvent(EventClick, in, hit, ok)
	t.model.emit(click)

	if p.lastClick.IsEquivalentTo(t) && p.lastClickButton == in.button &&
		click.Time.Sub(p.lastClickTime) <= e.cfg.doubleClickInterval() {
		p.lastClick = nil
		if !t.model.destroyed {
			t.model.emit(e.pointerEvent(EventDblClick, in, hit, ok))
		}
		return
	}
	p.lastClick = t
	p.lastClickButton = in.button
	p.lastClickTime = click.Time
}

// updateHover fires mouseout on the previously hovered trigger and mouseover
// on t when they are not equivalent.
func (e *Engine) updateHover(t *Trigger, in inputEvent, hit Hit, ok bool) {
	prev := e.pointer.hover
	if prev == nil && t == nil {
		return
	}
	if prev.IsEquivalentTo(t) {
		e.pointer.hover = t
		return
	}
	e.pointer.hover = t
	if prev != nil && !prev.model.destroyed {
		out := e.pointerEvent(EventMouseOut, in, Hit{}, false)
		out.TriggerID = prev.id
		prev.model.emit(out)
	}
	if t != nil && !t.model.destroyed {
		t.model.emit(e.pointerEvent(EventMouseOver, in, hit, ok))
	}
}

// refreshHover re-resolves the hovered trigger without a mouse event.
func (e *Engine) refreshHover() {
	in := inputEvent{kind: inputMove, x: e.pointer.x, y: e.pointer.y}
	hit, ok, t := e.cast(in)
	e.updateHover(t, in, hit, ok)
}
