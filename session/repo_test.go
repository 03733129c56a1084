package session_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepoRoundTrip(t *testing.T) {
	repo := session.NewInMemoryRepo()

	repo.Set(session.EntryToken, "tok1", session.DefaultTTL)
	require.Equal(t, "tok1", repo.Get(session.EntryToken))
}

func TestInMemoryRepoExpiry(t *testing.T) {
	now := time.Now()
	repo := session.NewInMemoryRepo(session.WithNowTime(func() time.Time { return now }))

	repo.Set(session.EntryToken, "tok1", 30*time.Second)
	require.Equal(t, "tok1", repo.Get(session.EntryToken))

	now = now.Add(31 * time.Second)
	require.Empty(t, repo.Get(session.EntryToken))
}

func TestInMemoryRepoClear(t *testing.T) {
	repo := session.NewInMemoryRepo()

	repo.Set(session.EntryState, "XYZ123", session.DefaultTTL)
	repo.Set(session.EntryState, "", 0)
	require.Empty(t, repo.Get(session.EntryState))
}

func TestInMemoryRepoAbsentEntry(t *testing.T) {
	repo := session.NewInMemoryRepo()
	require.Empty(t, repo.Get(session.EntryRefreshToken))
}

// Entry names that are suffixes of each other must never collide; the old
// cookie-string lookup matched on raw substrings and could.
func TestInMemoryRepoSuffixNamesDoNotCollide(t *testing.T) {
	repo := session.NewInMemoryRepo()

	repo.Set(session.EntryToken, "access", session.DefaultTTL)
	repo.Set(session.EntryRefreshToken, "refresh", session.DefaultTTL)

	require.Equal(t, "access", repo.Get(session.EntryToken))
	require.Equal(t, "refresh", repo.Get(session.EntryRefreshToken))
}

func TestFileRepoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	repo, err := session.NewFileRepo(path)
	require.NoError(t, err)

	repo.Set(session.EntryUID, "u1", session.DefaultTTL)
	require.Equal(t, "u1", repo.Get(session.EntryUID))

	// A second repo on the same path sees the persisted entry.
	reopened, err := session.NewFileRepo(path)
	require.NoError(t, err)
	require.Equal(t, "u1", reopened.Get(session.EntryUID))
}

func TestFileRepoDropsExpiredEntriesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	now := time.Now()

	repo, err := session.NewFileRepo(path, session.WithFileNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	repo.Set(session.EntryToken, "tok1", time.Minute)

	later := now.Add(2 * time.Minute)
	reopened, err := session.NewFileRepo(path, session.WithFileNowTime(func() time.Time { return later }))
	require.NoError(t, err)
	require.Empty(t, reopened.Get(session.EntryToken))
}

func TestFileRepoMissingFile(t *testing.T) {
	repo, err := session.NewFileRepo(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)
	require.Empty(t, repo.Get(session.EntryToken))
}
