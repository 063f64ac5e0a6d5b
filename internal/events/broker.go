package events

import "sync"

// Event describes a terminal job transition pushed to connected clients.
type Event struct {
	VideoID   string `json:"videoId"`
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	ResultURL string `json:"resultUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

const subscriberBuffer = 8

// Broker fans terminal job events out to per-owner subscribers. Delivery is
// best effort: a subscriber that stops draining its channel loses events
// rather than blocking the publisher, and clients recover state from the
// history endpoint.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for the owner's events. The returned cancel
// function must be called when the listener goes away.
func (b *Broker) Subscribe(owner string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	set, ok := b.subs[owner]
	if !ok {
		set = make(map[chan Event]struct{})
		b.subs[owner] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[owner]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, owner)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of the owner.
func (b *Broker) Publish(owner string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[owner] {
		select {
		case ch <- ev:
		default:
		}
	}
}
