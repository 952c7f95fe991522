package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/samber/lo"

	"groupchat/domain"
	"groupchat/domain/event"
	apperrors "groupchat/errors"
	"groupchat/observability"
	"groupchat/repositories"
)

// Dispatcher executes "/"-prefixed commands against the log store.
// Handlers reply through a self-message to the invoking session and/or a
// server-origin broadcast; protocol errors are mapped to a
// "SERVER: Error: ..." reply to the originator only and are never
// broadcast.
type Dispatcher struct {
	router *Router
	repo   repositories.LogRepository
	log    *slog.Logger
}

type commandSpec struct {
	usage     string
	available bool
	run       func(d *Dispatcher, origin *Session, cmd domain.Command) error
}

type commandEntry struct {
	name string
	spec commandSpec
}

// Declared in display order for /help. Reserved commands stay listed so
// the command surface is self-describing instead of silently absent.
// Populated in init to avoid an initialization cycle between the table
// and the /help handler that ranges over it.
var commandTable []commandEntry

func init() {
	commandTable = []commandEntry{
		{"/help", commandSpec{
			usage:     "/help - Displays all commands that are currently available.",
			available: true,
			run:       (*Dispatcher).help,
		}},
		{"/getMessage", commandSpec{
			usage:     "/getMessage <Number> - Displays the requested message by message number.",
			available: true,
			run:       (*Dispatcher).getMessage,
		}},
		{"/messageCount", commandSpec{
			usage:     "/messageCount <Username> - Displays how many messages have been sent by the requested username.",
			available: true,
			run:       (*Dispatcher).messageCount,
		}},
		{"/messageDelete", commandSpec{
			usage:     "/messageDelete <Number> - Deletes the requested message. [ANY USER MAY DELETE ANY MESSAGE]",
			available: true,
			run:       (*Dispatcher).messageDelete,
		}},
		{"/messageEdit", commandSpec{
			usage: "/messageEdit <Number> <Message> - Edits the requested message. [IN DEVELOPMENT]",
		}},
		{"/translate", commandSpec{
			usage: "/translate <Number> <Language> - Translates a message to the requested language. [IN DEVELOPMENT]",
		}},
		{"/messageRandom", commandSpec{
			usage: "/messageRandom - Displays a random message from the log. [IN DEVELOPMENT]",
		}},
	}
}

func NewDispatcher(router *Router, repo repositories.LogRepository, log *slog.Logger) *Dispatcher {
	return &Dispatcher{router: router, repo: repo, log: log}
}

// Dispatch resolves and runs the handler for a parsed command, mapping
// sentinel errors to their protocol replies.
func (d *Dispatcher) Dispatch(origin *Session, cmd domain.Command) {
	observability.CommandsTotal.WithLabelValues(cmd.Name).Inc()

	err := d.run(origin, cmd)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidFormat):
		d.sendError(origin, "Invalid command format.")
	case errors.Is(err, apperrors.ErrInvalidNumber):
		d.sendError(origin, "Invalid message number.")
	case errors.Is(err, apperrors.ErrEntryNotFound):
		d.sendError(origin, "Message not found.")
	case errors.Is(err, apperrors.ErrInvalidUsername):
		d.sendError(origin, "Invalid username")
	case errors.Is(err, apperrors.ErrUnknownCommand):
		d.sendError(origin, "Invalid Command.")
	case errors.Is(err, apperrors.ErrNotAvailable):
		d.selfMessage(origin, fmt.Sprintf("SERVER: The %s command is not yet available.", cmd.Name))
	default:
		d.log.Error("Command failed", "command", cmd.Name, "error", err)
		d.sendError(origin, "An unexpected error occurred.")
	}
}

func (d *Dispatcher) run(origin *Session, cmd domain.Command) error {
	for _, entry := range commandTable {
		if entry.name != cmd.Name {
			continue
		}
		if !entry.spec.available {
			return apperrors.ErrNotAvailable
		}
		return entry.spec.run(d, origin, cmd)
	}
	return apperrors.ErrUnknownCommand
}

func (d *Dispatcher) help(origin *Session, _ domain.Command) error {
	d.selfMessage(origin, "SERVER: Here is a following list of available commands.")
	for _, entry := range commandTable {
		d.selfMessage(origin, entry.spec.usage)
	}
	return nil
}

func (d *Dispatcher) getMessage(origin *Session, cmd domain.Command) error {
	key, err := parseMessageNumber(cmd)
	if err != nil {
		return err
	}

	entry, err := d.repo.Get(key)
	if err != nil {
		return err
	}

	formatted := fmt.Sprintf("SERVER: %s said: %s", entry.Author, entry.Body)
	d.router.Broadcast(origin, formatted, true)
	d.selfMessage(origin, formatted)
	return nil
}

func (d *Dispatcher) messageCount(origin *Session, cmd domain.Command) error {
	username := cmd.Arg(0)
	if username == "" {
		return apperrors.ErrInvalidUsername
	}

	entries, err := d.repo.All()
	if err != nil {
		return err
	}
	count := lo.CountBy(lo.Values(entries), func(e domain.ChatEntry) bool {
		return e.Author == username
	})

	formatted := fmt.Sprintf("SERVER: No messages found from %s", username)
	if count > 0 {
		formatted = fmt.Sprintf("SERVER: %d messages found from %s", count, username)
	}
	d.router.Broadcast(origin, formatted, true)
	d.selfMessage(origin, formatted)
	return nil
}

// messageDelete keeps the key and the original author and swaps only the
// body for the deletion sentinel, so the key space never develops holes.
// Any user may delete any message; the permissive behavior of the wire
// protocol is preserved on purpose.
func (d *Dispatcher) messageDelete(origin *Session, cmd domain.Command) error {
	key, err := parseMessageNumber(cmd)
	if err != nil {
		return err
	}

	entry, err := d.repo.Get(key)
	if err != nil {
		return err
	}
	if err := d.repo.Replace(key, entry.Deleted()); err != nil {
		return err
	}

	d.router.emit(event.EntryReplaced{Key: key, By: origin.Username, At: time.Now().UTC()})
	d.selfMessage(origin, "SERVER: Message has been deleted.")
	return nil
}

func parseMessageNumber(cmd domain.Command) (int, error) {
	raw := cmd.Arg(0)
	if raw == "" {
		return 0, apperrors.ErrInvalidFormat
	}
	key, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ErrInvalidNumber
	}
	return key, nil
}

// selfMessage replies to the invoking session only. A dead originator is
// torn down like any other failed recipient.
func (d *Dispatcher) selfMessage(origin *Session, line string) {
	if err := origin.SendLine(line); err != nil {
		d.router.Disconnect(origin)
	}
}

func (d *Dispatcher) sendError(origin *Session, message string) {
	d.selfMessage(origin, "SERVER: Error: "+message)
}
