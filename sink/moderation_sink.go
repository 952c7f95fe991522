package sink

import (
	"log/slog"

	"groupchat/domain/event"
	"groupchat/moderation"
	"groupchat/observability"
)

// ModerationSink inspects posted messages for banned vocabulary. It only
// observes: delivered lines are never altered, because the broadcast path
// guarantees verbatim delivery. Hits are logged and counted.
type ModerationSink struct {
	moderator moderation.Moderator
	log       *slog.Logger
}

func NewModerationSink(moderator moderation.Moderator, log *slog.Logger) ModerationSink {
	return ModerationSink{moderator: moderator, log: log}
}

func (s ModerationSink) Consume(e event.DomainEvent) {
	posted, ok := e.(event.MessagePosted)
	if !ok {
		return
	}
	if !s.moderator.Flag(posted.Body) {
		return
	}
	observability.FlaggedMessages.Inc()
	s.log.Warn("Banned vocabulary detected", "author", posted.Author, "key", posted.Key)
}
