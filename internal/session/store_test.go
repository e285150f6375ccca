package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financeguardian/dashboard/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return NewStore(db, zerolog.Nop())
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("tok-123", "alice", "F10A_ALPHA", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// All fields present together, never partially
	assert.Equal(t, "tok-123", got.Token)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "F10A_ALPHA", got.Group)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), got.ExpiresAt, 5*time.Second)
}

func TestGetUnknownID(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get("no-such-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetEmptyID(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpiredSessionReadsAsAbsent(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("tok", "bob", "grp", time.Minute)
	require.NoError(t, err)

	// Move the clock past the expiry without ever calling Delete
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("tok", "carol", "grp", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Delete(sess.ID))
	require.NoError(t, store.Delete(sess.ID))
	require.NoError(t, store.Delete("never-existed"))

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPurgeExpired(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create("tok1", "u1", "g", time.Minute)
	require.NoError(t, err)
	live, err := store.Create("tok2", "u2", "g", time.Hour)
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	n, err := store.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.Get(live.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
