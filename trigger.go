package voodoo

import (
	"fmt"
	"strconv"
)

// TriggerID discriminates sub-regions of one model for event purposes. The
// zero value is DefaultTriggerID, which differs from every explicit id,
// TriggerInt(0) and TriggerString("") included. TriggerIDs are comparable.
type TriggerID struct {
	v any // nil, int or string
}

// DefaultTriggerID is used when a trigger is added without an explicit id.
var DefaultTriggerID TriggerID

// TriggerInt returns a numeric trigger id.
func TriggerInt(n int) TriggerID { return TriggerID{v: n} }

// TriggerString returns a string trigger id.
func TriggerString(s string) TriggerID { return TriggerID{v: s} }

// IsDefault reports whether id is DefaultTriggerID.
func (id TriggerID) IsDefault() bool { return id.v == nil }

// Int returns the numeric value of an id made by TriggerInt.
func (id TriggerID) Int() (int, bool) {
	n, ok := id.v.(int)
	return n, ok
}

// Str returns the string value of an id made by TriggerString.
func (id TriggerID) Str() (string, bool) {
	s, ok := id.v.(string)
	return s, ok
}

func (id TriggerID) String() string {
	switch v := id.v.(type) {
	case nil:
		return "<default>"
	case int:
		return strconv.Itoa(v)
	case string:
		return strconv.Quote(v)
	}
	return fmt.Sprint(id.v)
}

// Trigger is one object registered for mouse hit testing.
type Trigger struct {
	model    *Model
	view     *ViewHandle
	object   *Object
	id       TriggerID
	registry *Triggers
}

// Model returns the model owning the trigger.
func (t *Trigger) Model() *Model { return t.model }

// Object returns the hit-tested object.
func (t *Trigger) Object() *Object { return t.object }

// ID returns the trigger id.
func (t *Trigger) ID() TriggerID { return t.id }

// IsEquivalentTo reports whether t and other belong to the same model and
// carry the same id. A nil trigger is equivalent to nothing.
func (t *Trigger) IsEquivalentTo(other *Trigger) bool {
	if t == nil || other == nil {
		return false
	}
	return t.model == other.model && t.id == other.id
}

// Triggers is a view's registry of hit-testable objects.
type Triggers struct {
	view *ViewHandle
	list []*Trigger
}

func newTriggers(view *ViewHandle) *Triggers {
	return &Triggers{view: view}
}

func (tr *Triggers) debug() bool {
	return tr.view != nil && tr.view.debug()
}

// Add registers obj, which must already be in this view's scene, under id.
// An object carries at most one trigger: adding it again without removing it
// first fails with ErrDuplicateTrigger and leaves the registry unchanged.
func (tr *Triggers) Add(obj *Object, id TriggerID) error {
	if obj == nil {
		return contractError(tr.debug(), "add trigger", ErrInvalidArgument)
	}
	if obj.trigger != nil {
		return contractError(tr.debug(), fmt.Sprintf("add trigger %q", obj.Name), ErrDuplicateTrigger)
	}
	if tr.view == nil || !tr.view.loaded || obj.scene != tr.view.scene {
		return contractError(tr.debug(), fmt.Sprintf("add trigger %q", obj.Name), ErrObjectNotFound)
	}
	t := &Trigger{
		model:    tr.view.model,
		view:     tr.view,
		object:   obj,
		id:       id,
		registry: tr,
	}
	obj.trigger = t
	tr.list = append(tr.list, t)
	return nil
}

// Remove unregisters obj's trigger. Removal is immediate: the object is not
// hit by any later raycast, including one later in the same frame.
func (tr *Triggers) Remove(obj *Object) error {
	if obj == nil || obj.trigger == nil || obj.trigger.registry != tr {
		name := "<nil>"
		if obj != nil {
			name = obj.Name
		}
		return contractError(tr.debug(), fmt.Sprintf("remove trigger %q", name), ErrTriggerNotFound)
	}
	tr.remove(obj.trigger)
	return nil
}

func (tr *Triggers) remove(t *Trigger) {
	for i, x := range tr.list {
		if x == t {
			copy(tr.list[i:], tr.list[i+1:])
			tr.list[len(tr.list)-1] = nil
			tr.list = tr.list[:len(tr.list)-1]
			break
		}
	}
	t.object.trigger = nil
	t.registry = nil
}

// Len returns the number of registered triggers.
func (tr *Triggers) Len() int { return len(tr.list) }

// List returns the registered triggers in registration order. The returned
// slice MUST NOT be mutated.
func (tr *Triggers) List() []*Trigger { return tr.list }

func (tr *Triggers) clear() {
	for len(tr.list) > 0 {
		tr.remove(tr.list[len(tr.list)-1])
	}
}
