package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// withFakePath prepends a temp dir containing a fake pagefind executable
// to PATH for the duration of the test.
func withFakePath(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pagefind")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestIndexToolNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := Index(context.Background(), t.TempDir(), time.Second)
	require.Error(t, err)

	var serr *SearchError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrToolNotFound, serr.Kind)
}

func TestIndexSuccess(t *testing.T) {
	withFakePath(t, "#!/bin/sh\nexit 0\n")

	err := Index(context.Background(), t.TempDir(), time.Second)
	require.NoError(t, err)
}

func TestIndexNonZeroExit(t *testing.T) {
	withFakePath(t, "#!/bin/sh\necho boom 1>&2\nexit 1\n")

	err := Index(context.Background(), t.TempDir(), time.Second)
	require.Error(t, err)

	var serr *SearchError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrIndexingFailed, serr.Kind)
	require.Equal(t, 1, serr.ExitCode)
	require.Contains(t, serr.Stderr, "boom")
}

func TestIndexTimeout(t *testing.T) {
	withFakePath(t, "#!/bin/sh\nsleep 5\n")

	err := Index(context.Background(), t.TempDir(), 50*time.Millisecond)
	require.Error(t, err)

	var serr *SearchError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrTimeout, serr.Kind)
}
