package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgraph-io/badger/v4"

	"groupchat/domain/event"
	"groupchat/internal"
	"groupchat/moderation"
	"groupchat/projection"
	"groupchat/repositories"
	"groupchat/runtime"
	"groupchat/runtime/workers"
	"groupchat/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every deferred cleanup executes before
// the process exits and the entry point stays testable.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Durable log store
	var repo repositories.LogRepository
	switch config.LogBackend {
	case "badger":
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.INFO))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		repo = repositories.NewBadgerLogRepository(db, log)
	default:
		repo = repositories.NewFileLogRepository(config.LogFilepath, log)
	}

	// 3. Core wiring: registry, router, listener
	events := make(chan event.DomainEvent, config.EventBufferSize)
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(registry, repo, events, log)
	listener := runtime.NewListener(config.ListenAddr(), router, log)

	// 4. Observability sinks behind the fan-out
	timeline := projection.NewTimeline(config.TimelineSize)
	fanout := workers.NewEventFanout(log, events).
		Add(sink.NewMetricsSink(), timeline)

	if config.BannedWords != "" {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		moderator, err := moderation.NewModerator(strings.Split(config.BannedWords, ","), replacement)
		if err != nil {
			return fmt.Errorf("building moderator: %w", err)
		}
		fanout.Add(sink.NewModerationSink(moderator, log))
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	internal.StartDebugServer(config.DebugAddr, timeline, log)

	// 6. Supervised workers; Run blocks until shutdown
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(
		listener,
		fanout,
		workers.NewHeartbeatWorker(log, config.MetricInterval),
	)

	log.Info("Starting chat server", "addr", config.ListenAddr(), "backend", config.LogBackend)
	supervisor.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
