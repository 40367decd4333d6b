package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/hookstorm/internal/settings"
)

// DefaultDebounce coalesces rapid settings rewrites into one reload signal.
const DefaultDebounce = 200 * time.Millisecond

// Watcher observes the settings files of the configured roots and signals
// when the hook configuration changes. The owner rebuilds its registry on
// each signal; the watcher itself never touches a registry.
type Watcher struct {
	fsw      *fsnotify.Watcher
	reload   chan struct{}
	debounce time.Duration
	log      zerolog.Logger

	closeOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the coalescing window for change events.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the watcher logger. Defaults to a no-op logger.
func WithWatcherLogger(logger zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = logger
	}
}

// NewWatcher watches the settings directories of the given roots. Roots
// whose settings directory does not exist yet are skipped.
func NewWatcher(cfg Config, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		reload:   make(chan struct{}, 1),
		debounce: DefaultDebounce,
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, root := range []string{cfg.TeamRoot, cfg.Workspace} {
		if root == "" {
			continue
		}
		// Watch the directory, not the file: editors replace settings
		// files on save, which would drop a file-level watch.
		dir := filepath.Dir(settings.FilePath(root))
		if err := fsw.Add(dir); err != nil {
			w.log.Debug().Str("dir", dir).Err(err).Msg("settings dir not watchable")
		}
	}

	return w, nil
}

// Run processes filesystem events until the context is canceled. Call in
// its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != settings.File {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("settings watch error")

		case <-fire:
			fire = nil
			select {
			case w.reload <- struct{}{}:
			default: // a reload is already pending
			}
		}
	}
}

// Reload returns the channel that receives one signal per coalesced
// settings change.
func (w *Watcher) Reload() <-chan struct{} {
	return w.reload
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
