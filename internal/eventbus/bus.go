// Package eventbus fans core service events out to the consoles of a user.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	EventDocument EventType = "document"
	EventNotice   EventType = "notice"
)

// Event is one document change or notice for a subscriber.
type Event struct {
	Type     EventType
	Document schema.DocumentEvent
	Notice   schema.NoticeEvent
	// Missed counts events dropped for this subscriber since its previous delivery.
	Missed int
}

// DefaultDepth is the per-subscriber buffer.
const DefaultDepth = 64

type subscriber struct {
	ch     chan Event
	missed int
}

// Bus delivers events to every subscriber of the event's user. Publishing
// never blocks: a full subscriber loses the event and learns about it
// through Missed on its next delivery.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.UserID]map[*subscriber]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.UserID]map[*subscriber]struct{}),
		log:   logger,
		depth: DefaultDepth,
	}
}

// Subscribe registers a subscriber for userID. The returned cancel closes
// the channel and may be called more than once.
func (b *Bus) Subscribe(userID schema.UserID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	sub := &subscriber{ch: make(chan Event, b.depth)}
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][sub] = struct{}{}
	count := len(b.subs[userID])
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "user", userID, "subs", count)

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], sub)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			close(sub.ch)
			b.mu.Unlock()
			b.log.Debug("eventbus unsubscribe", "user", userID, "missed", sub.missed)
		})
	}
}

// Subscribers reports how many consoles userID has open.
func (b *Bus) Subscribers(userID schema.UserID) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}

// OnDocumentEvent publishes a document event.
func (b *Bus) OnDocumentEvent(event schema.DocumentEvent) {
	b.publish(event.UserID, Event{Type: EventDocument, Document: event})
}

// OnNotice publishes a notice.
func (b *Bus) OnNotice(event schema.NoticeEvent) {
	b.publish(event.UserID, Event{Type: EventNotice, Notice: event})
}

func (b *Bus) publish(userID schema.UserID, event Event) {
	if b == nil {
		return
	}
	dropped := 0
	b.mu.Lock()
	for sub := range b.subs[userID] {
		out := event
		out.Missed = sub.missed
		select {
		case sub.ch <- out:
			sub.missed = 0
		default:
			sub.missed++
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "user", userID, "type", event.Type, "count", dropped)
	}
}
