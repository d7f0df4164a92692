package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/patterns"
	"github.com/specialistvlad/assetgrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, changed []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, changed)
	return n.err
}

func (n *recordingNotifier) all() [][]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]string(nil), n.batches...)
}

// startLoop runs the loop in the background and stops it on cleanup.
func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(ctxlog.Discard(context.Background()))
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch loop did not stop")
		}
	})

	select {
	case <-l.Ready():
	case err := <-done:
		t.Fatalf("watch loop exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop never became ready")
	}
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoop_RebuildsOnMatchingChange(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := filepath.ToSlash(t.TempDir())
	require.NoError(t, os.MkdirAll(root+"/sass", 0o755))
	var builds atomic.Int32
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error {
		builds.Add(1)
		return nil
	}}
	notifier := &recordingNotifier{}
	set := patterns.Set{patterns.Include(root + "/sass/**/*.scss")}
	startLoop(t, NewLoop(set, build, notifier).WithDebounce(20*time.Millisecond))

	// --- Act ---
	touch(t, root+"/sass/ignored.txt", "x")
	touch(t, root+"/sass/app.scss", "a{}")

	// --- Assert ---
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(notifier.all()) >= 1 }, 5*time.Second, 10*time.Millisecond)
	for _, batch := range notifier.all() {
		assert.NotContains(t, batch, root+"/sass/ignored.txt")
	}
	assert.Contains(t, notifier.all()[0], root+"/sass/app.scss")
}

func TestLoop_WatchesNewSubdirectories(t *testing.T) {
	t.Parallel()

	root := filepath.ToSlash(t.TempDir())
	require.NoError(t, os.MkdirAll(root+"/sass", 0o755))
	var builds atomic.Int32
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error {
		builds.Add(1)
		return nil
	}}
	startLoop(t, NewLoop(patterns.Set{patterns.Include(root + "/sass/**/*.scss")}, build).WithDebounce(20*time.Millisecond))

	require.NoError(t, os.MkdirAll(root+"/sass/modules", 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	touch(t, root+"/sass/modules/_grid.scss", "a{}")

	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestLoop_BuildsNeverOverlap(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := filepath.ToSlash(t.TempDir())
	require.NoError(t, os.MkdirAll(root+"/sass", 0o755))
	var running, maxRunning, builds atomic.Int32
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		builds.Add(1)
		return nil
	}}
	startLoop(t, NewLoop(patterns.Set{patterns.Include(root + "/sass/*.scss")}, build).WithDebounce(5*time.Millisecond))

	// --- Act ---
	for i := 0; i < 10; i++ {
		touch(t, root+"/sass/app.scss", "a{}")
		time.Sleep(15 * time.Millisecond)
	}

	// --- Assert ---
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Less(t, builds.Load(), int32(10), "changes during a build are coalesced")
}

func TestLoop_FailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := filepath.ToSlash(t.TempDir())
	require.NoError(t, os.MkdirAll(root+"/sass", 0o755))
	var builds atomic.Int32
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error {
		if builds.Add(1) == 1 {
			return errors.New("sass exited with status 1")
		}
		return nil
	}}
	notifier := &recordingNotifier{err: errors.New("reload server down")}
	startLoop(t, NewLoop(patterns.Set{patterns.Include(root + "/sass/*.scss")}, build, notifier).WithDebounce(20*time.Millisecond))

	// --- Act ---
	touch(t, root+"/sass/app.scss", "a{")
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	touch(t, root+"/sass/app.scss", "a{}")

	// --- Assert ---
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(notifier.all()) >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestLoop_MissingBaseIsSkipped(t *testing.T) {
	t.Parallel()

	root := filepath.ToSlash(t.TempDir())
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error { return nil }}

	startLoop(t, NewLoop(patterns.Set{patterns.Include(root + "/missing/*.scss")}, build))
}

func TestLoop_RunTwice(t *testing.T) {
	t.Parallel()

	root := filepath.ToSlash(t.TempDir())
	build := task.Func{Label: "compile-styles", Fn: func(context.Context) error { return nil }}
	l := NewLoop(patterns.Set{patterns.Include(root + "/*.scss")}, build)
	ctx, cancel := context.WithCancel(ctxlog.Discard(context.Background()))
	cancel()

	require.NoError(t, l.Run(ctx))
	assert.NotPanics(t, func() {
		require.NoError(t, l.Run(ctx))
	})
	<-l.Ready()
}

func TestConvertOp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OpCreate|OpWrite, convertOp(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, Op(0), convertOp(fsnotify.Chmod))
	assert.True(t, convertOp(fsnotify.Remove).Has(OpRemove))
}
