package sink

import (
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/observability"
)

// MetricsSink turns domain events into Prometheus counter increments.
type MetricsSink struct{}

func NewMetricsSink() MetricsSink {
	return MetricsSink{}
}

func (s MetricsSink) Consume(e event.DomainEvent) {
	switch evt := e.(type) {
	case event.MessagePosted:
		origin := "client"
		if evt.Author == domain.ServerAuthor {
			origin = "server"
		}
		observability.MessagesTotal.WithLabelValues(origin).Inc()
	}
}
