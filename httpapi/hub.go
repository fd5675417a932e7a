package httpapi

import (
	"context"
	"sync"
	"time"

	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/schema"
)

// StreamEvent is sent to SSE clients.
type StreamEvent struct {
	Seq       uint64                  `json:"seq"`
	Type      string                  `json:"type"`
	Event     string                  `json:"event,omitempty"`
	Tab       *schema.TabSnapshot     `json:"tab,omitempty"`
	ActiveTab schema.TabID            `json:"active_tab,omitempty"`
	Level     schema.NoticeLevel      `json:"level,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Snapshot  *schema.SessionSnapshot `json:"snapshot,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

const (
	streamDocument = "document"
	streamNotice   = "notice"
	streamSnapshot = "snapshot"
)

// Hub broadcasts events per user.
type Hub struct {
	mu          sync.Mutex
	users       map[schema.UserID]*userHub
	historySize int
}

// NewHub constructs a hub with the given history size.
func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = 256
	}
	return &Hub{
		users:       make(map[schema.UserID]*userHub),
		historySize: historySize,
	}
}

// OnDocumentEvent implements core.EventSink.
func (h *Hub) OnDocumentEvent(event schema.DocumentEvent) {
	log := logx.WithUser(context.Background(), event.UserID)
	log.Trace("hub document event", "type", event.Type, "tab", event.Tab.ID, "active", event.ActiveTab)
	tab := event.Tab
	h.publish(event.UserID, StreamEvent{
		Type:      streamDocument,
		Event:     string(event.Type),
		Tab:       &tab,
		ActiveTab: event.ActiveTab,
		Timestamp: time.Now(),
	})
}

// OnNotice implements core.EventSink.
func (h *Hub) OnNotice(event schema.NoticeEvent) {
	logx.WithUser(context.Background(), event.UserID).Trace("hub notice", "level", event.Level)
	h.publish(event.UserID, StreamEvent{
		Type:      streamNotice,
		Level:     event.Level,
		Message:   event.Message,
		Timestamp: time.Now(),
	})
}

// Subscribe registers a subscriber for a user. It returns the channel, the
// cancel func, the last sequence number and a copy of the history.
func (h *Hub) Subscribe(userID schema.UserID) (<-chan StreamEvent, func(), uint64, []StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	uh := h.getOrCreateUserHubLocked(userID)
	ch := make(chan StreamEvent, 256)
	uh.subs[ch] = struct{}{}
	history := append([]StreamEvent(nil), uh.history...)
	seq := uh.seq
	log := logx.WithUser(context.Background(), userID)
	log.Info("hub subscribe", "subs", len(uh.subs), "history", len(history))
	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(uh.subs, ch)
			close(ch)
			remaining := len(uh.subs)
			h.mu.Unlock()
			log.Info("hub unsubscribe", "subs", remaining)
		})
	}
	return ch, unsub, seq, history
}

// Forget drops the user's history. Open subscriptions keep working until
// they unsubscribe; a later publish starts a new history.
func (h *Hub) Forget(userID schema.UserID) {
	h.mu.Lock()
	_, ok := h.users[userID]
	delete(h.users, userID)
	h.mu.Unlock()
	if ok {
		logx.WithUser(context.Background(), userID).Debug("hub user forgotten")
	}
}

// Replay returns events after the provided seq.
func (h *Hub) Replay(userID schema.UserID, after uint64) []StreamEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	uh := h.users[userID]
	if uh == nil {
		return nil
	}
	events := make([]StreamEvent, 0, len(uh.history))
	for _, event := range uh.history {
		if event.Seq > after {
			events = append(events, event)
		}
	}
	logx.WithUser(context.Background(), userID).Debug("hub replay", "after", after, "count", len(events))
	return events
}

// publish sends under the lock so an unsubscribe cannot close a channel mid-send.
func (h *Hub) publish(userID schema.UserID, event StreamEvent) {
	h.mu.Lock()
	uh := h.getOrCreateUserHubLocked(userID)
	uh.seq++
	event.Seq = uh.seq
	if n := len(uh.history); n > 0 && supersedes(event, uh.history[n-1]) {
		uh.history[n-1] = event
	} else {
		uh.history = append(uh.history, event)
	}
	if len(uh.history) > h.historySize {
		uh.history = uh.history[len(uh.history)-h.historySize:]
	}
	dropped := 0
	for sub := range uh.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		logx.WithUser(context.Background(), userID).Warn("hub event dropped", "type", event.Type, "dropped", dropped)
	}
}

// supersedes reports whether next makes prev redundant in the replay
// history. Typing produces a run of "changed" events for one tab and only
// the latest matters to a reconnecting browser.
func supersedes(next, prev StreamEvent) bool {
	if next.Type != streamDocument || prev.Type != streamDocument {
		return false
	}
	if next.Event != string(schema.DocumentEventChanged) || prev.Event != next.Event {
		return false
	}
	return next.Tab != nil && prev.Tab != nil && next.Tab.ID == prev.Tab.ID
}

func (h *Hub) getOrCreateUserHubLocked(userID schema.UserID) *userHub {
	uh := h.users[userID]
	if uh == nil {
		uh = &userHub{
			subs: make(map[chan StreamEvent]struct{}),
		}
		h.users[userID] = uh
	}
	return uh
}

type userHub struct {
	seq     uint64
	history []StreamEvent
	subs    map[chan StreamEvent]struct{}
}
