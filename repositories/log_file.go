package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/samber/lo"

	"groupchat/domain"
	apperrors "groupchat/errors"
)

// FileLogRepository persists the log as a single JSON document mapping
// string-encoded integer keys to {username, contents} records. The whole
// document is rewritten on every mutation; a temp file plus rename keeps
// the rewrite atomic for readers of the file itself. One mutex guards the
// entire read-log/mutate/persist sequence. This is the wire-compatible
// storage format.
type FileLogRepository struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

func NewFileLogRepository(path string, log *slog.Logger) *FileLogRepository {
	return &FileLogRepository{path: path, log: log}
}

func (r *FileLogRepository) All() (map[int]domain.ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(), nil
}

func (r *FileLogRepository) Get(key int) (domain.ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.read()[key]
	if !ok {
		return domain.ChatEntry{}, apperrors.ErrEntryNotFound
	}
	return entry, nil
}

func (r *FileLogRepository) Append(entry domain.ChatEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	key := nextKey(entries)
	entries[key] = entry
	if err := r.write(entries); err != nil {
		return 0, err
	}
	return key, nil
}

func (r *FileLogRepository) Replace(key int, entry domain.ChatEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	if _, ok := entries[key]; !ok {
		return apperrors.ErrEntryNotFound
	}
	entries[key] = entry
	return r.write(entries)
}

// read loads the durable document. A missing or unreadable document is a
// degraded-but-available empty log, never an error for callers.
func (r *FileLogRepository) read() map[int]domain.ChatEntry {
	entries := make(map[int]domain.ChatEntry)

	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return entries
	}
	if err != nil {
		r.log.Warn("Log unreadable, starting from an empty log", "path", r.path, "error", err)
		return entries
	}

	var records map[string]logRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		r.log.Warn("Log corrupted, starting from an empty log", "path", r.path, "error", err)
		return entries
	}
	for rawKey, record := range records {
		key, err := strconv.Atoi(rawKey)
		if err != nil {
			r.log.Warn("Skipping non-integer log key", "key", rawKey)
			continue
		}
		entries[key] = record.toEntry()
	}
	return entries
}

func (r *FileLogRepository) write(entries map[int]domain.ChatEntry) error {
	records := make(map[string]logRecord, len(entries))
	for key, entry := range entries {
		records[strconv.Itoa(key)] = toRecord(entry)
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".chatlog-*")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing log: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp log: %w", err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing log: %w", err)
	}
	return nil
}

func nextKey(entries map[int]domain.ChatEntry) int {
	if len(entries) == 0 {
		return 0
	}
	return lo.Max(lo.Keys(entries)) + 1
}
