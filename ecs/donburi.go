package ecs

import (
	"github.com/phanxgames/voodoo"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Event is a voodoo event as published into a Donburi world. Entity is the
// entity spawned for the event's model with SpawnModel, or donburi.Null.
type Event struct {
	voodoo.Event
	Entity donburi.Entity
}

// EventType is the Donburi event type for voodoo events.
var EventType = events.NewEventType[Event]()

// ModelData links an entity to its model.
type ModelData struct {
	Model *voodoo.Model
}

// ModelComponent holds the model an entity mirrors.
var ModelComponent = donburi.NewComponentType[ModelData]()

// Sink is an EventSink backed by a Donburi world.
type Sink struct {
	world    donburi.World
	entities map[*voodoo.Model]donburi.Entity
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to EventType and can be consumed with events.Subscribe and
// ProcessEvents.
func NewDonburiSink(world donburi.World) *Sink {
	return &Sink{world: world, entities: make(map[*voodoo.Model]donburi.Entity)}
}

// SpawnModel creates an entity carrying ModelComponent for m. Events fired
// on m are published with that entity until m unloads.
func (s *Sink) SpawnModel(m *voodoo.Model) donburi.Entity {
	if e, ok := s.entities[m]; ok && s.world.Valid(e) {
		return e
	}
	entity := s.world.Create(ModelComponent)
	ModelComponent.SetValue(s.world.Entry(entity), ModelData{Model: m})
	s.entities[m] = entity
	return entity
}

// Entity returns the entity spawned for m, or donburi.Null.
func (s *Sink) Entity(m *voodoo.Model) donburi.Entity {
	if e, ok := s.entities[m]; ok {
		return e
	}
	return donburi.Null
}

// EmitEvent implements voodoo.EventSink. An unload event removes the model's
// entity after it was published.
func (s *Sink) EmitEvent(event voodoo.Event) {
	entity := donburi.Null
	if event.Model != nil {
		if e, ok := s.entities[event.Model]; ok {
			entity = e
		}
	}
	EventType.Publish(s.world, Event{Event: event, Entity: entity})
	if event.Type == voodoo.EventUnload && entity != donburi.Null {
		delete(s.entities, event.Model)
		if s.world.Valid(entity) {
			s.world.Remove(entity)
		}
	}
}
