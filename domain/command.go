package domain

import "strings"

// CommandPrefix marks a chat body as a server-side command.
const CommandPrefix = "/"

// Command is a parsed "/"-prefixed instruction embedded in a chat line.
type Command struct {
	Name string
	Args []string
}

// IsCommand reports whether a logical message body should be interpreted
// server-side instead of being treated as plain chat.
func IsCommand(body string) bool {
	return strings.HasPrefix(body, CommandPrefix)
}

// ParseCommand splits a command body into its name and arguments.
// The name keeps its leading slash so handlers match the wire spelling.
func ParseCommand(body string) Command {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Name: fields[0], Args: fields[1:]}
}

// Arg returns the i-th argument or an empty string when absent.
func (c Command) Arg(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}
