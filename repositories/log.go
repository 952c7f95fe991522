//go:generate go run go.uber.org/mock/mockgen -source=log.go -destination=../mocks/mock_log_repository.go -package=mocks
package repositories

import "groupchat/domain"

// LogRepository is the durable, append-only keyed message log. Keys are
// non-negative integers assigned monotonically: the next key is always
// max(existing)+1, or 0 on an empty log. Implementations must make every
// read-modify-write sequence one atomic critical section so that two
// concurrent appends can never compute the same next key.
type LogRepository interface {
	// All returns a snapshot of the whole log.
	All() (map[int]domain.ChatEntry, error)
	// Get returns the entry under key or errors.ErrEntryNotFound.
	Get(key int) (domain.ChatEntry, error)
	// Append stores the entry under the next free key and returns it.
	Append(entry domain.ChatEntry) (int, error)
	// Replace swaps the entry under an existing key; the key set is
	// unchanged. Returns errors.ErrEntryNotFound for an absent key.
	Replace(key int, entry domain.ChatEntry) error
}

// logRecord is the persisted shape of one entry, shared by both backends
// so the viewer can read either.
type logRecord struct {
	Username string `json:"username"`
	Contents string `json:"contents"`
}

func toRecord(e domain.ChatEntry) logRecord {
	return logRecord{Username: e.Author, Contents: e.Body}
}

func (r logRecord) toEntry() domain.ChatEntry {
	return domain.ChatEntry{Author: r.Username, Body: r.Contents}
}
