package shader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce collapses the burst of events editors emit for a single save.
const defaultDebounce = 100 * time.Millisecond

// Watcher reprocesses an entry shader whenever a file of its include graph changes on disk.
// It watches the directories holding those files rather than the files themselves, so saves that
// replace a file through a rename are still seen.
type Watcher struct {
	pp       PreProcessor
	entry    string
	onChange func(ProcessResult, error)
	debounce time.Duration
	logger   *slog.Logger

	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewWatcher creates a Watcher for an entry shader on the host filesystem.
//
// Parameters:
//   - pp: the pre-processor used for every run; it must read from the host filesystem
//   - entry: the entry shader path
//   - onChange: called with the outcome of the initial run and of every rerun
//
// Returns:
//   - *Watcher: the watcher, started with Run
func NewWatcher(pp PreProcessor, entry string, onChange func(ProcessResult, error)) *Watcher {
	return &Watcher{
		pp:       pp,
		entry:    entry,
		onChange: onChange,
		debounce: defaultDebounce,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
}

// SetDebounce changes the quiet period awaited after a change before reprocessing.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// SetLogger sets the logger for watch errors. Defaults to the package logger.
func (w *Watcher) SetLogger(l *slog.Logger) {
	w.logger = l
}

func (w *Watcher) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return Logger()
}

// Run processes the entry once, then again after every change, until ctx is cancelled.
//
// Parameters:
//   - ctx: cancelling the context stops the watcher
//
// Returns:
//   - error: an error if the filesystem watcher could not be created
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("shader: failed to create file watcher: %w", err)
	}
	defer fw.Close()

	w.process(fw)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log().Warn("shader watch error", "entry", w.entry, "error", err)
		case <-timerC:
			timerC = nil
			w.process(fw)
		}
	}
}

// process runs the pre-processor, refreshes the watched set and reports the outcome.
func (w *Watcher) process(fw *fsnotify.Watcher) {
	result, err := w.pp.Process(w.entry)
	defer w.onChange(result, err)

	// a failed run has no file list; keep watching what was known so a fix is picked up
	if err == nil {
		clear(w.files)
		for _, f := range result.Files {
			w.files[filepath.Clean(f)] = struct{}{}
		}
	} else if missing := unreadablePath(err); missing != "" {
		// creating the missing file is the fix; its directory must be watched to see it
		w.files[filepath.Clean(missing)] = struct{}{}
	}
	if abs, err := filepath.Abs(w.entry); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		w.files[abs] = struct{}{}
	}

	for f := range w.files {
		dir := filepath.Dir(f)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log().Warn("failed to watch shader directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = struct{}{}
	}
}

// unreadablePath returns the file a run failed to read, or "" when err is not a read failure.
func unreadablePath(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Root().Path
}

// relevant reports whether an event touches a file of the include graph.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}
