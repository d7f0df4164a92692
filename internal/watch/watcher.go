// Package watch rebuilds when files selected by a pattern set change.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrWatcherClosed is returned when operating on a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")
	// ErrPathNotExist is returned when watching a path that does not exist.
	ErrPathNotExist = errors.New("path does not exist")
)

// Op is the kind of file system change.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether op contains o.
func (op Op) Has(o Op) bool { return op&o != 0 }

// Event is one file system change.
type Event struct {
	Path string
	Op   Op
}

// Watcher reports changes below a set of directories. Directories created
// inside a watched tree are watched as well.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	paths   map[string]bool
	events  chan Event
	errors  chan error
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
	filter  func(path string) bool
}

// NewWatcher starts an fsnotify backed watcher. Only events whose slash
// path passes filter are queued; a nil filter passes everything.
func NewWatcher(filter func(path string) bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		paths:   make(map[string]bool),
		events:  make(chan Event, 256),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
		filter:  filter,
	}
	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// WatchRecursive watches dir and every directory below it.
func (w *Watcher) WatchRecursive(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return w.watch(abs)
	}
	return filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.watch(p)
		}
		return nil
	})
}

func (w *Watcher) watch(p string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.paths[p] {
		return nil
	}
	if err := w.fsw.Add(p); err != nil {
		return err
	}
	w.paths[p] = true
	return nil
}

// Events returns the change channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	if op.Has(OpCreate) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.WatchRecursive(ev.Name); err != nil {
				w.report(fmt.Errorf("failed to watch new directory %s: %w", ev.Name, err))
			}
		}
	}

	path := filepath.ToSlash(ev.Name)
	if w.filter != nil && !w.filter(path) {
		return
	}

	// Every queued event passes the filter, so a full buffer already
	// guarantees a pending rebuild.
	select {
	case w.events <- Event{Path: path, Op: op}:
	default:
	}
}

// convertOp maps fsnotify operations; chmod-only changes map to zero.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
