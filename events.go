package flock

import (
	"github.com/akmonengine/flock/actor"
)

const (
	VEHICLE_ADDED EventType = iota
	VEHICLE_REMOVED
	VEHICLE_EXPIRED
	OCTREE_REBUILT
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// AddedEvent is emitted when a vehicle joins the flock
type AddedEvent struct {
	Vehicle *actor.Vehicle
}

func (e AddedEvent) Type() EventType { return VEHICLE_ADDED }

// RemovedEvent is emitted when a vehicle is removed by the owner
type RemovedEvent struct {
	Vehicle *actor.Vehicle
}

func (e RemovedEvent) Type() EventType { return VEHICLE_REMOVED }

// ExpiredEvent is emitted when Update drops a vehicle that outlived its life expectancy
type ExpiredEvent struct {
	Vehicle *actor.Vehicle
}

func (e ExpiredEvent) Type() EventType { return VEHICLE_EXPIRED }

// OctreeRebuiltEvent is emitted when the spatial index is rebuilt
type OctreeRebuiltEvent struct {
	Vehicles int
	Bounds   actor.Cube
}

func (e OctreeRebuiltEvent) Type() EventType { return OCTREE_REBUILT }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers events and delivers them to listeners on flush, at the end of Flock.Update
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	if len(e.listeners[event.Type()]) == 0 {
		return
	}
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer.
// Events emitted by listeners during the flush are delivered before it returns.
func (e *Events) flush() {
	for len(e.buffer) > 0 {
		pending := e.buffer
		e.buffer = nil

		for _, event := range pending {
			for _, listener := range e.listeners[event.Type()] {
				listener(event)
			}
		}

		clear(pending)
		if e.buffer == nil {
			e.buffer = pending[:0]
		}
	}
}
