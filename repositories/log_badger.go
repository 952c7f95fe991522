package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"groupchat/domain"
	apperrors "groupchat/errors"
)

// Keys are zero padded to 19 digits so a reverse prefix scan lands on the
// highest assigned key in lexicographical order.
const (
	entryPrefix    = "entry:"
	entryKeyFormat = entryPrefix + "%019d"
)

// BadgerLogRepository is the BadgerDB-backed log. Records keep the same
// {username, contents} JSON schema as the file backend. A mutex serializes
// the whole append sequence so the seek-max/assign/set steps of two
// concurrent appends can never interleave.
type BadgerLogRepository struct {
	db  *badger.DB
	mu  sync.Mutex
	log *slog.Logger
}

func NewBadgerLogRepository(db *badger.DB, log *slog.Logger) *BadgerLogRepository {
	return &BadgerLogRepository{db: db, log: log}
}

func (r *BadgerLogRepository) All() (map[int]domain.ChatEntry, error) {
	entries := make(map[int]domain.ChatEntry)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(entryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key, err := parseEntryKey(string(item.Key()))
			if err != nil {
				r.log.Warn("Skipping malformed log key", "key", string(item.Key()))
				continue
			}
			err = item.Value(func(val []byte) error {
				var record logRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				entries[key] = record.toEntry()
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.Warn("Log unreadable, serving an empty log", "error", err)
		return make(map[int]domain.ChatEntry), nil
	}
	return entries, nil
}

func (r *BadgerLogRepository) Get(key int) (domain.ChatEntry, error) {
	var entry domain.ChatEntry
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fmt.Sprintf(entryKeyFormat, key)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var record logRecord
			if err := json.Unmarshal(val, &record); err != nil {
				return err
			}
			entry = record.toEntry()
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.ChatEntry{}, apperrors.ErrEntryNotFound
	}
	if err != nil {
		return domain.ChatEntry{}, err
	}
	return entry, nil
}

func (r *BadgerLogRepository) Append(entry domain.ChatEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var assigned int
	err := r.db.Update(func(txn *badger.Txn) error {
		assigned = nextBadgerKey(txn)

		raw, err := json.Marshal(toRecord(entry))
		if err != nil {
			return err
		}
		return txn.Set([]byte(fmt.Sprintf(entryKeyFormat, assigned)), raw)
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

func (r *BadgerLogRepository) Replace(key int, entry domain.ChatEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		storageKey := []byte(fmt.Sprintf(entryKeyFormat, key))
		if _, err := txn.Get(storageKey); err != nil {
			return err
		}
		raw, err := json.Marshal(toRecord(entry))
		if err != nil {
			return err
		}
		return txn.Set(storageKey, raw)
	})
	if err == badger.ErrKeyNotFound {
		return apperrors.ErrEntryNotFound
	}
	return err
}

// nextBadgerKey finds max(existing)+1 with a reverse scan: seeking just
// past the zero-padded key space puts the iterator on the highest key.
func nextBadgerKey(txn *badger.Txn) int {
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := txn.NewIterator(options)
	defer it.Close()

	prefix := []byte(entryPrefix)
	it.Seek(append([]byte(entryPrefix), []byte("9999999999999999999")...))
	if !it.ValidForPrefix(prefix) {
		return 0
	}
	key, err := parseEntryKey(string(it.Item().Key()))
	if err != nil {
		return 0
	}
	return key + 1
}

func parseEntryKey(storageKey string) (int, error) {
	return strconv.Atoi(storageKey[len(entryPrefix):])
}
