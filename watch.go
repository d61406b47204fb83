// Completion: 100% - Dev-mode watcher complete
//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// watch.go - dev-mode recompile-on-save for the `watch` CLI subcommand
// (SPEC_FULL.md §6.2). Adapted from the teacher's inotify-based
// FileWatcher: same debounced single-fd event loop, repurposed to watch
// exactly one script path and re-run the build on every write instead of
// the teacher's hot-reload callback.

// scriptWatcher watches one script file via inotify and invokes rebuild
// on every debounced write.
type scriptWatcher struct {
	fd       int
	wd       int
	path     string
	mu       sync.Mutex
	debounce *time.Timer
	rebuild  func(path string)
}

func newScriptWatcher(path string, rebuild func(path string)) (*scriptWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %v", err)
	}
	wd, err := unix.InotifyAddWatch(fd, absPath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to watch %s: %v", absPath, err)
	}
	return &scriptWatcher{fd: fd, wd: wd, path: absPath, rebuild: rebuild}, nil
}

// Run blocks, rebuilding on every debounced write event, until an
// unrecoverable read error occurs.
func (w *scriptWatcher) Run() error {
	buf := make([]byte, unix.SizeofInotifyEvent*10)
	for {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return fmt.Errorf("inotify read: %v", err)
		}
		offset := 0
		for offset < n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)
			if int(event.Wd) == w.wd && event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				w.debouncedRebuild()
			}
		}
	}
}

func (w *scriptWatcher) debouncedRebuild() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(200*time.Millisecond, func() {
		w.rebuild(w.path)
	})
}

func (w *scriptWatcher) Close() error {
	return unix.Close(w.fd)
}

// runWatch implements the `watch` subcommand: compile once immediately,
// then recompile on every save until interrupted.
func runWatch(scriptPath, outputPath string) error {
	rebuild := func(path string) {
		if err := compileToFile(path, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "rebuilt %s -> %s\n", path, outputPath)
	}
	rebuild(scriptPath)

	w, err := newScriptWatcher(scriptPath, rebuild)
	if err != nil {
		return IOError(fmt.Sprintf("cannot watch %s: %v", scriptPath, err))
	}
	defer w.Close()
	return w.Run()
}
