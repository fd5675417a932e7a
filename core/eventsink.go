package core

import "pkt.systems/notepad/schema"

// EventSink receives document and notice events from the core service.
type EventSink interface {
	OnDocumentEvent(event schema.DocumentEvent)
	OnNotice(event schema.NoticeEvent)
}
