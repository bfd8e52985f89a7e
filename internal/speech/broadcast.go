package speech

import "sync"

// BroadcastSink decorates another sink, fanning every emitted line out to a
// set of subscribers. It is the server-mode sink: chat connections subscribe
// to mirror output into their transcripts, and a history subscriber persists
// it, so alarm notifications and wake-word replies reach the chat even though
// they are emitted outside any connection's routing path.
type BroadcastSink struct {
	next Sink

	mu   sync.RWMutex
	subs map[string]func(text string)
}

// NewBroadcastSink wraps next so that subscribers observe every emission
func NewBroadcastSink(next Sink) *BroadcastSink {
	return &BroadcastSink{
		next: next,
		subs: make(map[string]func(text string)),
	}
}

// Subscribe registers fn under id, replacing any previous subscriber with
// the same id. fn must not block.
func (b *BroadcastSink) Subscribe(id string, fn func(text string)) {
	b.mu.Lock()
	b.subs[id] = fn
	b.mu.Unlock()
}

// Unsubscribe removes the subscriber registered under id
func (b *BroadcastSink) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Emit notifies every subscriber, then delegates to the wrapped sink
func (b *BroadcastSink) Emit(text string) string {
	if text == "" {
		return ""
	}

	b.mu.RLock()
	for _, fn := range b.subs {
		fn(text)
	}
	b.mu.RUnlock()

	return b.next.Emit(text)
}
