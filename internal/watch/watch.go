// Package watch reruns a callback when any of a fixed set of files changes.
// Bursts of events are debounced into one run and runs never overlap.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/logging"
)

// Func is run after the watched files settle. A returned error is logged
// and watching continues.
type Func func(ctx context.Context) error

// Watcher watches the directories holding a set of files and filters the
// events down to those files. Directories are watched rather than files
// because editors and the xlsx store replace files by rename.
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must be quiet before a run.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New starts watching paths. Events that arrive after New returns are
// never lost.
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.NewValidationError("paths", paths, "nothing to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapIO("watch", "", err)
	}
	w := &Watcher{fw: fw, files: make(map[string]bool), debounce: constants.WatchDebounce}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, errors.WrapIO("resolve", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for _, dir := range sortedKeys(dirs) {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, errors.WrapIO("watch", dir, err)
		}
	}
	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	return sortedKeys(w.files)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Run calls fn each time the watched files settle, until ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	log := logging.FromContext(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Change detected")
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watch error")

		case <-timer.C:
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Msg("Run failed")
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".specgate-") {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
