package core

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/notepad/schema"
)

type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func (m *memStore) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

type memProvider struct {
	mu      sync.Mutex
	buckets map[schema.UserID]*memStore
	dropped []schema.UserID
}

func (p *memProvider) DropBucket(userID schema.UserID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buckets, userID)
	p.dropped = append(p.dropped, userID)
	return nil
}

func (p *memProvider) Bucket(userID schema.UserID) (KeyValueStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buckets == nil {
		p.buckets = make(map[schema.UserID]*memStore)
	}
	b, ok := p.buckets[userID]
	if !ok {
		b = newMemStore()
		p.buckets[userID] = b
	}
	return b, nil
}

type recordingSink struct {
	mu      sync.Mutex
	events  []schema.DocumentEvent
	notices []schema.NoticeEvent
}

func (r *recordingSink) OnDocumentEvent(event schema.DocumentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) OnNotice(event schema.NoticeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, event)
}

func (r *recordingSink) count(eventType schema.DocumentEventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type recordingFiles struct {
	picks   []schema.OpenFileRequest
	emitted []schema.FilePayload
}

func (r *recordingFiles) PickFile(_ context.Context, req schema.OpenFileRequest) error {
	r.picks = append(r.picks, req)
	return nil
}

func (r *recordingFiles) Emit(_ context.Context, file schema.FilePayload) error {
	r.emitted = append(r.emitted, file)
	return nil
}

type memClipboard struct {
	text string
}

func (m *memClipboard) ReadText() (string, error) { return m.text, nil }

func (m *memClipboard) WriteText(text string) error {
	m.text = text
	return nil
}

// scriptedPrompter answers prompts in order and records the messages.
type scriptedPrompter struct {
	confirms []bool
	texts    []*string
	asked    []string
	defaults []string
}

func (p *scriptedPrompter) Confirm(_ context.Context, message string) bool {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return false
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer
}

func (p *scriptedPrompter) PromptText(_ context.Context, message, def string) (string, bool) {
	p.asked = append(p.asked, message)
	p.defaults = append(p.defaults, def)
	if len(p.texts) == 0 || p.texts[0] == nil {
		if len(p.texts) > 0 {
			p.texts = p.texts[1:]
		}
		return "", false
	}
	answer := *p.texts[0]
	p.texts = p.texts[1:]
	return answer, true
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
