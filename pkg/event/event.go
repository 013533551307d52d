// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	ScanCompleted     Type = "scan_completed"
	AnomalyCollected  Type = "anomaly_collected"
	AllScansCompleted Type = "all_scans_completed"
	ModeChanged       Type = "mode_changed"
	ViewToggled       Type = "view_toggled"
	FocusChanged      Type = "focus_changed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler
type Subscription struct {
	ID        uint64
	EventType Type
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{ID: id, EventType: eventType}
}

// Unsubscribe removes a handler. It reports whether the subscription was
// still registered.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[sub.EventType]
	for i, r := range regs {
		if r.id == sub.ID {
			// Copy so a concurrent Publish keeps its own slice.
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			next = append(next, regs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, sub.EventType)
			} else {
				b.handlers[sub.EventType] = next
			}
			return true
		}
	}
	return false
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	if event == nil {
		return
	}

	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// Specific event implementations

// ScanEvent reports a planet whose scan finished.
type ScanEvent struct {
	BaseEvent
	BodyIndex int
	BodyName  string
	Score     int
}

// NewScanEvent creates a new scan event
func NewScanEvent(eventType Type, source interface{}, bodyIndex int, bodyName string, score int) *ScanEvent {
	return &ScanEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyIndex: bodyIndex,
		BodyName:  bodyName,
		Score:     score,
	}
}

// CollectEvent reports a collected anomaly.
type CollectEvent struct {
	BaseEvent
	AnomalyID  uint64
	PlanetName string
	Collected  int
	Score      int
}

// NewCollectEvent creates a new collect event
func NewCollectEvent(source interface{}, anomalyID uint64, planetName string, collected, score int) *CollectEvent {
	return &CollectEvent{
		BaseEvent: BaseEvent{
			EventType: AnomalyCollected,
			Source:    source,
		},
		AnomalyID:  anomalyID,
		PlanetName: planetName,
		Collected:  collected,
		Score:      score,
	}
}

// StateEvent reports a camera or mode change.
type StateEvent struct {
	BaseEvent
	Value string
}

// NewStateEvent creates a new state event
func NewStateEvent(eventType Type, source interface{}, value string) *StateEvent {
	return &StateEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Value: value,
	}
}
