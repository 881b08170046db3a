// Package ecs provides ECS adapters for voodoo's event system.
//
// The primary adapter is [NewDonburiSink], which bridges synthesized voodoo
// events (pointer, click, camera and lifecycle events) into a [Donburi]
// world as typed events. Subscribe to [EventType] in your ECS systems to
// receive them. Models can be mirrored as entities with [Sink.SpawnModel]; events
// fired on such a model carry its entity.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
