package events

import "sync"

// DefaultQueueSize bounds each subscriber's undelivered event queue.
const DefaultQueueSize = 64

// Bus fans events out to live per-project subscribers. Publish never blocks:
// a subscriber whose queue is full loses its oldest undelivered event. The
// bus keeps no history; a subscriber only sees events published after it
// subscribed, in publication order, exactly once.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[*Subscription]struct{}
	queueSize int
}

// NewBus creates a bus with the default per-subscriber queue size.
func NewBus() *Bus {
	return NewBusWithQueueSize(DefaultQueueSize)
}

// NewBusWithQueueSize creates a bus with a custom per-subscriber queue size.
func NewBusWithQueueSize(size int) *Bus {
	if size < 1 {
		size = 1
	}
	return &Bus{
		subs:      make(map[string]map[*Subscription]struct{}),
		queueSize: size,
	}
}

// Subscription is a live handle on one project's event stream.
type Subscription struct {
	bus       *Bus
	projectID string
	ch        chan Event
	closed    bool
}

// Subscribe registers a new subscriber for the project's events.
func (b *Bus) Subscribe(projectID string) *Subscription {
	s := &Subscription{
		bus:       b,
		projectID: projectID,
		ch:        make(chan Event, b.queueSize),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[projectID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[projectID] = set
	}
	set[s] = struct{}{}
	return s
}

// Publish delivers the event to every current subscriber of its project.
// Slow subscribers never stall the publisher.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[e.ProjectID] {
		select {
		case s.ch <- e:
		default:
			// Queue full: drop the oldest undelivered event and retry once.
			// A concurrent receive can empty the slot either way, so the
			// second send may still lose the race; the event is then dropped,
			// which the overflow policy permits.
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- e:
			default:
			}
		}
	}
}

// CloseAll closes every live subscription. Used on shutdown.
func (b *Bus) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for projectID, set := range b.subs {
		for s := range set {
			if !s.closed {
				s.closed = true
				close(s.ch)
			}
		}
		delete(b.subs, projectID)
	}
}

// Subscribers returns the live subscriber count for a project.
func (b *Bus) Subscribers(projectID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[projectID])
}

// Events yields the subscriber's stream. The channel is closed by Close;
// buffered events remain readable after closing.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
// The channel close happens under the bus write lock so it cannot overlap a
// Publish, which sends only while holding the read lock.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	set := s.bus.subs[s.projectID]
	delete(set, s)
	if len(set) == 0 {
		delete(s.bus.subs, s.projectID)
	}
	close(s.ch)
}
