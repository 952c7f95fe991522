package workers

import (
	"context"
	"log/slog"

	"groupchat/contract"
	"groupchat/domain/event"
)

// EventFanout distributes domain events to in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// It is intended for observability and side effects (metrics, moderation,
// projections), not for core chat logic.
type EventFanout struct {
	Events <-chan event.DomainEvent
	log    *slog.Logger
	sinks  []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent) *EventFanout {
	return &EventFanout{Events: events, log: log}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.Events:
			w.Fanout(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fan-out")
			return nil
		}
	}
}

// Fanout hands one event to every sink in registration order.
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sink.Consume(evt)
	}
}
