// Package projection builds local read models from observed events.
// Handles ordering and bounded retention. Does not emit events or
// interact with the transport directly.
package projection

import (
	"sync"

	"groupchat/domain"
	"groupchat/domain/event"
)

// TimelineEntry is one projected message with its log key.
type TimelineEntry struct {
	Key    int
	Author string
	Body   string
}

// Timeline holds the most recent messages, capped at a fixed size. It is
// consumed by the event fan-out and read concurrently by the debug
// server, hence the mutex.
type Timeline struct {
	mu      sync.Mutex
	limit   int
	entries []TimelineEntry
}

func NewTimeline(limit int) *Timeline {
	return &Timeline{limit: limit}
}

func (t *Timeline) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.MessagePosted:
		t.append(TimelineEntry{Key: evt.Key, Author: evt.Author, Body: evt.Body})
	case event.EntryReplaced:
		t.markDeleted(evt.Key)
	}
}

// Recent returns a copy of the retained entries, oldest first.
func (t *Timeline) Recent() []TimelineEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TimelineEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) append(entry TimelineEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
	if t.limit > 0 && len(t.entries) > t.limit {
		t.entries = t.entries[len(t.entries)-t.limit:]
	}
}

func (t *Timeline) markDeleted(key int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].Key == key {
			t.entries[i].Body = domain.DeletedBody
		}
	}
}
