package sessionstore

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sidereusnuntius/donata/internal/initialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	d, err := initialization.OpenDB("file:" + path + "?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, initialization.SetupDB(d, "../../../migrations", path))
	return New(context.Background(), d, 0)
}

func TestSaveFind(t *testing.T) {
	s := newStore(t)
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, s.Save("token", []byte("first"), expiry))
	require.NoError(t, s.Save("token", []byte("second"), expiry))

	b, found, err := s.Find("token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), b)

	_, found, err = s.Find("other")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSave_LargeData(t *testing.T) {
	s := newStore(t)
	data := bytes.Repeat([]byte(strings.Repeat("x", 1024)), 64)

	require.NoError(t, s.Save("token", data, time.Now().Add(time.Hour)))
	b, found, err := s.Find("token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, b, len(data))
}

func TestFind_Expired(t *testing.T) {
	s := newStore(t)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save("old", []byte("a"), now.Add(-time.Second)))
	require.NoError(t, s.Save("new", []byte("b"), now.Add(time.Minute)))

	_, found, err := s.Find("old")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := s.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, found, err = s.Find("new")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save("token", []byte("a"), time.Now().Add(time.Hour)))
	require.NoError(t, s.Delete("token"))
	require.NoError(t, s.Delete("missing"))

	_, found, err := s.Find("token")
	require.NoError(t, err)
	assert.False(t, found)
}
