// Package observability declares the Prometheus collectors exported on
// the debug server's /metrics endpoint.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total messages appended to the log by author type",
	}, []string{"origin"})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_commands_total",
		Help: "Total dispatched commands by name",
	}, []string{"command"})

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_broadcast_seconds",
		Help:    "Time to fan out, log, and dispatch one line",
		Buckets: prometheus.DefBuckets,
	})

	FlaggedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_flagged_messages_total",
		Help: "Messages containing banned vocabulary",
	})

	ProcessResidentMemory = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_process_resident_memory_bytes",
		Help: "Resident memory of the server process",
	})

	ProcessCPUPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_process_cpu_percent",
		Help: "CPU usage of the server process",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(BroadcastDuration)
	prometheus.MustRegister(FlaggedMessages)
	prometheus.MustRegister(ProcessResidentMemory)
	prometheus.MustRegister(ProcessCPUPercent)
}
