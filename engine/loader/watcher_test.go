package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths ...string) Watcher {
	t.Helper()
	w, err := NewWatcher(WithDebounce(50 * time.Millisecond))
	require.NoError(t, err)
	for _, p := range paths {
		require.NoError(t, w.Add(p))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func nextChange(t *testing.T, w Watcher, timeout time.Duration) (string, bool) {
	t.Helper()
	select {
	case p := <-w.Changes():
		return p, true
	case <-time.After(timeout):
		return "", false
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	path := writeAsset(t, "walker.yaml", walkerYAML)
	w := startWatcher(t, path)

	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte(walkerYAML), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	got, ok := nextChange(t, w, 2*time.Second)
	require.True(t, ok, "no change reported")
	assert.Equal(t, filepath.Clean(path), got)

	_, again := nextChange(t, w, 300*time.Millisecond)
	assert.False(t, again, "burst reported more than once")
}

func TestWatcher_DirectoryFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	asset := filepath.Join(dir, "rig.gltf")
	require.NoError(t, os.WriteFile(asset, []byte("{}"), 0o644))

	got, ok := nextChange(t, w, 2*time.Second)
	require.True(t, ok, "no change reported")
	assert.Equal(t, asset, got)
}

func TestWatcher_AddMissingPath(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestWatcher_CloseStopsRun(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
