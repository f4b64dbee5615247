package impulse

import "github.com/gekko3d/impulse/shapes"

const (
	EventAddBody           = "addBody"
	EventRemoveBody        = "removeBody"
	EventPreStep           = "preStep"
	EventPostStep          = "postStep"
	EventCollide           = "collide"
	EventBeginContact      = "beginContact"
	EventEndContact        = "endContact"
	EventBeginShapeContact = "beginShapeContact"
	EventEndShapeContact   = "endShapeContact"
	EventWakeUp            = "wakeup"
	EventSleepy            = "sleepy"
	EventSleep             = "sleep"
)

// Event is passed to listeners. Records are reused by their dispatcher, so listeners
// must copy what they want to keep.
type Event struct {
	Type   string
	Target any

	// Body is the other body of a collide event, or the affected body of addBody,
	// removeBody and sleep events.
	Body    *Body
	Contact *ContactEquation

	BodyA, BodyB   *Body
	ShapeA, ShapeB shapes.Shape
}

type ListenerID int

type listener struct {
	id ListenerID
	fn func(*Event)
}

// EventTarget keeps listeners per event name. Listeners run synchronously in
// registration order.
type EventTarget struct {
	listeners map[string][]listener
	nextID    ListenerID
}

func (et *EventTarget) AddEventListener(name string, fn func(*Event)) ListenerID {
	if et.listeners == nil {
		et.listeners = make(map[string][]listener)
	}
	et.nextID++
	et.listeners[name] = append(et.listeners[name], listener{id: et.nextID, fn: fn})
	return et.nextID
}

func (et *EventTarget) RemoveEventListener(name string, id ListenerID) {
	ls := et.listeners[name]
	for i, l := range ls {
		if l.id == id {
			et.listeners[name] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// HasEventListener reports whether any listener is registered for name.
func (et *EventTarget) HasEventListener(name string) bool {
	return len(et.listeners[name]) > 0
}

// HasAnyEventListener reports whether any of the names has a listener.
func (et *EventTarget) HasAnyEventListener(names ...string) bool {
	for _, name := range names {
		if et.HasEventListener(name) {
			return true
		}
	}
	return false
}

func (et *EventTarget) DispatchEvent(e *Event) {
	ls := et.listeners[e.Type]
	if len(ls) == 0 {
		return
	}
	// Removal never writes into ls, so listeners may remove themselves here.
	for _, l := range ls {
		l.fn(e)
	}
}
