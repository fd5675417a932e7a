package notepad

import (
	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
)

// eventFanout forwards service events to every surface that renders them.
type eventFanout struct {
	sinks []core.EventSink
}

// joinSinks drops nil sinks and only wraps when more than one remains.
func joinSinks(sinks ...core.EventSink) core.EventSink {
	kept := make([]core.EventSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return eventFanout{sinks: kept}
}

func (f eventFanout) OnDocumentEvent(event schema.DocumentEvent) {
	for _, sink := range f.sinks {
		if sink != nil {
			sink.OnDocumentEvent(event)
		}
	}
}

func (f eventFanout) OnNotice(event schema.NoticeEvent) {
	for _, sink := range f.sinks {
		if sink != nil {
			sink.OnNotice(event)
		}
	}
}
