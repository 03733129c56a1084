package session

import "time"

// EntryPrefix namespaces every stored entry so the session data can share a
// backing store (a cookie string, a config file) with unrelated values.
const EntryPrefix = "oauth_"

// Names of the entries the auth flow persists. Each entry carries its own
// max-age; there is no session record, only these independent values.
const (
	EntryToken        = "token"
	EntryRefreshToken = "refreshToken"
	EntryUID          = "uid"
	EntryState        = "state"
)

// DefaultTTL is the conventional max-age for short-lived flow entries such as
// the CSRF state.
const DefaultTTL = 5 * time.Minute

// RefreshTTL is the max-age for the refresh token and uid entries when the
// identity server declared a usable access-token lifetime.
const RefreshTTL = 30 * 24 * time.Hour

// Repo defines the interface for expiring key/value session storage.
//
// Get returns the stored value, or the empty string when the entry is absent
// or its max-age has elapsed. Set stores a value with the given max-age;
// setting an empty value with a zero max-age clears the entry. There is no
// Delete.
type Repo interface {
	Get(name string) string
	Set(name, value string, maxAge time.Duration)
}
