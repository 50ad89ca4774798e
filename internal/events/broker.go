package events

import (
	"sync"
)

// Broker manages event distribution
type Broker struct {
	subscribers map[EventType][]chan Event
	subs        map[<-chan Event]chan Event
	mu          sync.RWMutex
	bufferSize  int
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return NewBrokerWithBuffer(32)
}

// NewBrokerWithBuffer creates a broker whose subscription channels hold size events.
func NewBrokerWithBuffer(size int) *Broker {
	return &Broker{
		subscribers: make(map[EventType][]chan Event),
		subs:        make(map[<-chan Event]chan Event),
		bufferSize:  size,
	}
}

// Subscribe creates a subscription to specific event types.
// With no types the subscription receives every event.
func (b *Broker) Subscribe(eventTypes ...EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if len(eventTypes) == 0 {
		eventTypes = []EventType{wildcard}
	}
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes a subscription from every event type and closes it.
// Unknown or already removed channels are ignored.
func (b *Broker) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	target, ok := b.subs[ch]
	if !ok {
		return
	}
	delete(b.subs, ch)

	for eventType, subscribers := range b.subscribers {
		kept := subscribers[:0]
		for _, sub := range subscribers {
			if sub != target {
				kept = append(kept, sub)
			}
		}
		if len(kept) == 0 {
			delete(b.subscribers, eventType)
		} else {
			b.subscribers[eventType] = kept
		}
	}
	close(target)
}

// Publish sends an event to all subscribers without blocking.
// Subscribers whose buffer is full miss the event.
func (b *Broker) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range b.subscribers[wildcard] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Clear removes all subscriptions
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[<-chan Event]chan Event)
	b.subscribers = make(map[EventType][]chan Event)
}
