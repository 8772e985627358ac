package kvstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backends(t *testing.T) map[string]kvstore.Store {
	t.Helper()
	sq, err := kvstore.NewSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]kvstore.Store{
		"memory": kvstore.NewMemory(),
		"file":   kvstore.NewFile(t.TempDir()),
		"sqlite": sq,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kvstore.SaveJSON(s, "k", sample{Name: "a", Count: 3}))

			var got sample
			require.True(t, kvstore.LoadJSON(s, "k", &got, nil))
			assert.Equal(t, sample{Name: "a", Count: 3}, got)

			require.NoError(t, kvstore.SaveJSON(s, "k", sample{Name: "b"}))
			got = sample{}
			require.True(t, kvstore.LoadJSON(s, "k", &got, nil))
			assert.Equal(t, "b", got.Name)

			require.NoError(t, s.Delete("k"))
			require.NoError(t, s.Delete("k"))
			assert.False(t, kvstore.LoadJSON(s, "k", &got, nil))
		})
	}
}

func TestLoadJSONMalformed(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("bad", []byte("{bad json")))
			got := sample{Name: "default"}
			assert.False(t, kvstore.LoadJSON(s, "bad", &got, nil))
			assert.Equal(t, "default", got.Name)
		})
	}
}

func TestFileCorruptOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, kvstore.KeyEntries+".json"), []byte("[{"), 0o600))

	var entries []sample
	assert.False(t, kvstore.LoadJSON(kvstore.NewFile(dir), kvstore.KeyEntries, &entries, nil))
	assert.Empty(t, entries)
}

func TestPartialDecodeLeavesValueUntouched(t *testing.T) {
	s := kvstore.NewMemory()
	require.NoError(t, s.Set(kvstore.KeyEntries, []byte(`[{"name":"second"},{`)))

	entries := []sample{{Name: "kept"}}
	assert.False(t, kvstore.LoadJSON(s, kvstore.KeyEntries, &entries, nil))
	assert.Equal(t, []sample{{Name: "kept"}}, entries)
}

func TestFileWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// A regular file where the directory should be makes MkdirAll fail.
	s := kvstore.NewFile(filepath.Join(blocker, "sub"))
	err := s.Set("k", []byte("{}"))
	require.Error(t, err)
	assert.True(t, kvstore.IsWriteError(err))
}

func TestMemoryReadOnly(t *testing.T) {
	m := kvstore.NewMemory()
	require.NoError(t, m.Set("k", []byte("1")))
	m.SetReadOnly(true)

	err := kvstore.SaveJSON(m, "k", 2)
	assert.True(t, kvstore.IsWriteError(err))

	var v int
	require.True(t, kvstore.LoadJSON(m, "k", &v, nil))
	assert.Equal(t, 1, v)
}

func TestSQLiteReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := kvstore.NewSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte(`"v"`)))
	require.NoError(t, s.Close())

	s2, err := kvstore.NewSQLite(dir)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"v"`, string(v))
}

func TestCopy(t *testing.T) {
	src := kvstore.NewMemory()
	require.NoError(t, src.Set(kvstore.KeyEntries, []byte("[]")))
	require.NoError(t, src.Set(kvstore.KeyCounters, []byte(`{"2024-05":3}`)))

	dst, err := kvstore.NewSQLiteMemory()
	require.NoError(t, err)
	defer dst.Close()

	n, err := kvstore.Copy(dst, src, kvstore.KeyEntries, kvstore.KeyCustomer, kvstore.KeyCounters)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var counters map[string]int
	require.True(t, kvstore.LoadJSON(dst, kvstore.KeyCounters, &counters, nil))
	assert.Equal(t, 3, counters["2024-05"])

	_, ok, err := dst.Get(kvstore.KeyCustomer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, b := range []string{"", "file", "memory", "sqlite"} {
		s, err := kvstore.Open(b, dir)
		require.NoError(t, err, b)
		assert.NotNil(t, s)
		if c, ok := s.(interface{ Close() error }); ok {
			c.Close()
		}
	}
	_, err := kvstore.Open("redis", dir)
	assert.Error(t, err)
}
