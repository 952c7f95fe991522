package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"groupchat/domain/event"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

type recordingSink struct {
	seen chan event.DomainEvent
}

func (s recordingSink) Consume(e event.DomainEvent) {
	s.seen <- e
}

func TestEventFanout_Delivers_To_Every_Sink_In_Order(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 4)
	first := recordingSink{seen: make(chan event.DomainEvent, 4)}
	second := recordingSink{seen: make(chan event.DomainEvent, 4)}

	fanout := NewEventFanout(testLogger(), events).Add(first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = fanout.Run(ctx)
	}()

	posted := event.MessagePosted{Key: 0, Author: "alice", Body: "hello", At: time.Now().UTC()}
	events <- posted

	for _, sink := range []recordingSink{first, second} {
		select {
		case got := <-sink.seen:
			req.Equal(posted, got)
		case <-time.After(time.Second):
			t.Fatal("sink never consumed the event")
		}
	}
}

func TestEventFanout_Stops_On_Cancellation(t *testing.T) {
	events := make(chan event.DomainEvent)
	fanout := NewEventFanout(testLogger(), events)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = fanout.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fan-out did not stop")
	}
}
