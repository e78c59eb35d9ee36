package slot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores under test, constructed fresh per case.
func testStores(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFile(t.TempDir())
	require.NoError(t, err)
	sqlite, err := NewSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStore_ReadMissingKey(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Read("nothing_here")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("mycalendar.events.v1", []byte(`[{"id":"a"}]`)))

			got, ok, err := s.Read("mycalendar.events.v1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `[{"id":"a"}]`, string(got))
		})
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("k", []byte("one")))
			require.NoError(t, s.Write("k", []byte("two")))

			got, ok, err := s.Read("k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "two", string(got))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("auth_user", []byte(`{}`)))
			require.NoError(t, s.Delete("auth_user"))

			_, ok, err := s.Read("auth_user")
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting an absent key is not an error.
			require.NoError(t, s.Delete("auth_user"))
		})
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "  ", "a/b", `a\b`, "../escape"} {
				require.Error(t, s.Write(key, []byte("x")), "key %q", key)
			}
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Write("k", []byte("persisted")))

	second, err := NewFile(dir)
	require.NoError(t, err)
	got, ok, err := second.Read("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", string(got))
}

func TestFile_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Write("k", []byte("v")))

	matches, err := filepath.Glob(filepath.Join(dir, ".slot-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, first.Write("k", []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(dir)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Read("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", string(got))
}

func TestOpen_SelectsDriver(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(DriverFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(DriverSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Driver("redis"), dir)
	assert.Error(t, err)

	// Filesystem stores must exist after Open.
	_, err = os.Stat(dir)
	require.NoError(t, err)
}
