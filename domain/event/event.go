// Package event defines the domain events observed by the fan-out.
// Events feed observability and side effects (metrics, moderation,
// projections), never the broadcast or persistence path itself.
package event

import (
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	OccurredAt() time.Time
}

// MessagePosted is emitted after a line has been fanned out and appended
// to the log. Key is the log key assigned to the entry.
type MessagePosted struct {
	ID     uuid.UUID
	Key    int
	Author string
	Body   string
	At     time.Time
}

func (e MessagePosted) OccurredAt() time.Time { return e.At }

// EntryReplaced is emitted when a log entry body has been replaced in
// place, e.g. by /messageDelete.
type EntryReplaced struct {
	Key int
	By  string
	At  time.Time
}

func (e EntryReplaced) OccurredAt() time.Time { return e.At }

type ParticipantJoined struct {
	Username string
	At       time.Time
}

func (e ParticipantJoined) OccurredAt() time.Time { return e.At }

type ParticipantLeft struct {
	Username string
	At       time.Time
}

func (e ParticipantLeft) OccurredAt() time.Time { return e.At }
