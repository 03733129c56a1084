package session

import (
	"sync"
	"time"
)

var _ Repo = (*InMemoryRepo)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Entries are keyed by their exact prefixed name, so a name that
// is a suffix of another name can never match the wrong entry.
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time
}

// InMemoryRepoOption defines a function type to modify the InMemoryRepo instance.
type InMemoryRepoOption func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) InMemoryRepoOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory session entry repository
func NewInMemoryRepo(options ...InMemoryRepoOption) *InMemoryRepo {
	r := &InMemoryRepo{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Get retrieves an entry value, returning "" when absent or expired.
func (r *InMemoryRepo) Get(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[EntryPrefix+name]
	if !ok {
		return ""
	}
	if !r.nowTime().Before(e.expiresAt) {
		return ""
	}
	return e.value
}

// Set stores an entry value with the given max-age. A non-positive max-age
// leaves the entry immediately expired, which is how entries are cleared.
func (r *InMemoryRepo) Set(name, value string, maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[EntryPrefix+name] = entry{
		value:     value,
		expiresAt: r.nowTime().Add(maxAge),
	}
}
