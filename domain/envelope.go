package domain

import "strings"

// Envelope is the logical view of one wire line. Ordinary chat lines are
// written by clients as "sender: body"; commands and server lines carry no
// sender prefix. The split on the first colon is the documented wire
// minimum and is kept for drop-in compatibility, which also means a body
// containing ": " survives the round trip only after the first colon.
type Envelope struct {
	Sender string
	Body   string
}

// ParseLine recovers the envelope from a raw wire line. When no colon is
// present the whole line is the body and the sender is empty.
func ParseLine(raw string) Envelope {
	before, after, found := strings.Cut(raw, ":")
	if !found {
		return Envelope{Body: raw}
	}
	return Envelope{
		Sender: before,
		Body:   strings.TrimSpace(after),
	}
}

// Line renders the envelope back to its wire form.
func (e Envelope) Line() string {
	if e.Sender == "" {
		return e.Body
	}
	return e.Sender + ": " + e.Body
}
