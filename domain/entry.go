// Package domain contains core concepts of the chat system.
// This file defines log entries and related rules.
// Entries are immutable; edits produce replacement entries.
package domain

// DeletedBody replaces the body of a deleted entry. The key and the
// original author survive the deletion.
const DeletedBody = "<Message Deleted>"

// ServerAuthor is the author recorded for server-originated lines.
const ServerAuthor = "SERVER"

// ChatEntry is one durable record of the message log.
type ChatEntry struct {
	Author string
	Body   string
}

// Deleted returns the replacement entry for a logical delete.
func (e ChatEntry) Deleted() ChatEntry {
	return ChatEntry{Author: e.Author, Body: DeletedBody}
}

// IsDeleted reports whether the entry carries the deletion sentinel.
func (e ChatEntry) IsDeleted() bool {
	return e.Body == DeletedBody
}
