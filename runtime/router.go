package runtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/observability"
	"groupchat/repositories"
)

// Router owns the broadcast fan-out: it delivers each outgoing line to
// every registered session but its origin, appends the logical message to
// the durable log, and hands "/"-prefixed bodies to the dispatcher.
// Delivery runs outside the log lock; the append is its own short
// critical section inside the repository.
type Router struct {
	registry   *Registry
	repo       repositories.LogRepository
	dispatcher *Dispatcher
	events     chan<- event.DomainEvent
	log        *slog.Logger
}

func NewRouter(registry *Registry, repo repositories.LogRepository, events chan<- event.DomainEvent, log *slog.Logger) *Router {
	r := &Router{
		registry: registry,
		repo:     repo,
		events:   events,
		log:      log,
	}
	r.dispatcher = NewDispatcher(r, repo, log)
	return r
}

// Broadcast fans rawLine out verbatim, then either dispatches the body
// as a command or appends it to the log. Command lines and join/leave
// announcements are delivered but never logged: the log records chat
// history and command results, so the first chat message always lands on
// key 0 regardless of how many commands preceded it. Delivery-first
// ordering means log and delivery can diverge only in a crash window
// between fan-out and append; the log is an audit trail, not the
// delivery mechanism, so that window is accepted.
func (r *Router) Broadcast(origin *Session, rawLine string, serverOrigin bool) {
	started := time.Now()

	r.deliver(origin, rawLine)

	// Derived once per broadcast, independent of delivery outcome.
	body := domain.ParseLine(rawLine).Body
	author := origin.Username
	if serverOrigin {
		author = domain.ServerAuthor
	}

	if domain.IsCommand(body) {
		r.dispatcher.Dispatch(origin, domain.ParseCommand(body))
	} else {
		r.append(author, body)
	}

	observability.BroadcastDuration.Observe(time.Since(started).Seconds())
}

// deliver writes rawLine to every registered session except origin. Dead
// recipients are collected and torn down after the iteration so one
// failure never stops delivery to the rest.
func (r *Router) deliver(origin *Session, rawLine string) {
	var failed []*Session
	r.registry.ForEach(func(s *Session) {
		if s == origin {
			return
		}
		if err := s.SendLine(rawLine); err != nil {
			r.log.Warn("Delivery failed, scheduling teardown", "recipient", s.Username, "error", err)
			failed = append(failed, s)
		}
	})
	for _, s := range failed {
		r.Disconnect(s)
	}
}

func (r *Router) append(author, body string) {
	key, err := r.repo.Append(domain.ChatEntry{Author: author, Body: body})
	if err != nil {
		// The fan-out already succeeded; a persistence failure must not
		// retroactively fail the user-visible operation.
		r.log.Error("Appending to the message log failed", "author", author, "error", err)
		return
	}
	r.emit(event.MessagePosted{
		ID:     uuid.New(),
		Key:    key,
		Author: author,
		Body:   body,
		At:     time.Now().UTC(),
	})
}

// Join registers a fresh session and announces its arrival to everyone
// else.
func (r *Router) Join(s *Session) {
	r.registry.Add(s)
	observability.ConnectedClients.Set(float64(r.registry.Len()))

	r.deliver(s, fmt.Sprintf("SERVER: %s has entered the chat!", s.Username))
	r.emit(event.ParticipantJoined{Username: s.Username, At: time.Now().UTC()})
	r.log.Info("Session joined", "username", s.Username, "sessions", r.registry.Len())
}

// Disconnect drives the session teardown state machine: announce the
// departure, deregister, release the transport. Concurrent triggers (a
// read failure racing a write failure) collapse into one run, so the
// departure is announced and the session removed exactly once.
func (r *Router) Disconnect(s *Session) {
	s.teardown.Do(func() {
		r.deliver(s, fmt.Sprintf("SERVER: %s has left the chat!", s.Username))
		r.registry.Remove(s)
		s.release()

		observability.ConnectedClients.Set(float64(r.registry.Len()))
		r.emit(event.ParticipantLeft{Username: s.Username, At: time.Now().UTC()})
		r.log.Info("Session left", "username", s.Username, "sessions", r.registry.Len())
	})
}

// emit hands an event to the fan-out without ever blocking the broadcast
// path. Observability is best-effort; a full buffer drops the event.
func (r *Router) emit(e event.DomainEvent) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- e:
	default:
		r.log.Debug("Event buffer full, dropping event")
	}
}
