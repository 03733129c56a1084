package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var _ Repo = (*FileRepo)(nil)

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileRepo is a Repo backed by a JSON file, for clients that need the session
// to survive process restarts. All entries live in a single file; every write
// rewrites it atomically via a rename.
type FileRepo struct {
	mu      sync.Mutex
	path    string
	entries map[string]fileEntry
	nowTime func() time.Time
}

// FileRepoOption defines a function type to modify the FileRepo instance.
type FileRepoOption func(*FileRepo)

// WithFileNowTime sets the now time function (primarily for testing)
func WithFileNowTime(nowFunc func() time.Time) FileRepoOption {
	return func(r *FileRepo) {
		r.nowTime = nowFunc
	}
}

// NewFileRepo opens (or creates) a file-backed session entry repository.
// Expired entries found in the file are dropped on load.
func NewFileRepo(path string, options ...FileRepoOption) (*FileRepo, error) {
	r := &FileRepo{
		path:    path,
		entries: make(map[string]fileEntry),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "[NewFileRepo] read session file")
		}
		return r, nil
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.entries); err != nil {
			return nil, errors.Wrap(err, "[NewFileRepo] parse session file")
		}
	}

	now := r.nowTime()
	for name, e := range r.entries {
		if !now.Before(e.ExpiresAt) {
			delete(r.entries, name)
		}
	}
	return r, nil
}

// Get retrieves an entry value, returning "" when absent or expired.
func (r *FileRepo) Get(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[EntryPrefix+name]
	if !ok {
		return ""
	}
	if !r.nowTime().Before(e.ExpiresAt) {
		return ""
	}
	return e.Value
}

// Set stores an entry value with the given max-age and persists the store.
// Persistence failures are swallowed: the in-memory view stays authoritative
// for the lifetime of the process.
func (r *FileRepo) Set(name, value string, maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[EntryPrefix+name] = fileEntry{
		Value:     value,
		ExpiresAt: r.nowTime().Add(maxAge),
	}
	_ = r.persist()
}

func (r *FileRepo) persist() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.persist] marshal entries")
	}
	tmp := r.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo.persist] create session dir")
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.persist] write session file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.persist] replace session file")
	}
	return nil
}
