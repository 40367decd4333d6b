// Package registry resolves the hook units that apply to a workspace.
//
// The registry is built once per session from the declarative settings of
// the active workspace and, optionally, its team root. Lua hook files are
// loaded eagerly at build time; a unit that fails to load is logged and
// skipped without affecting other units or kinds. Resolution order is
// binding and reproducible: team hooks first, then workspace hooks, each in
// settings declaration order, then programmatically registered units in
// registration order.
package registry

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/hookstorm/internal/hook"
	"github.com/dshills/hookstorm/internal/luahook"
	"github.com/dshills/hookstorm/internal/settings"
)

// Config locates the hook configuration roots.
type Config struct {
	// Workspace is the active workspace root. Required.
	Workspace string

	// TeamRoot, when set, is loaded before the workspace so team hooks
	// run first.
	TeamRoot string
}

// Registry holds loaded hook units indexed by event kind.
type Registry struct {
	mu       sync.RWMutex
	units    map[hook.Kind][]hook.Unit
	loadErrs []*hook.LoadError
	log      zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = logger
	}
}

// New builds a registry from the configured roots. Per-unit load failures
// are recorded and skipped; only a malformed settings file is an error.
func New(cfg Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		units: make(map[hook.Kind][]hook.Unit),
		log:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	roots := make([]string, 0, 2)
	if cfg.TeamRoot != "" {
		roots = append(roots, cfg.TeamRoot)
	}
	if cfg.Workspace != "" {
		roots = append(roots, cfg.Workspace)
	}

	for _, root := range roots {
		s, err := settings.Load(root)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.loadFrom(s)
	}

	return r, nil
}

// loadFrom loads every enabled descriptor of one settings root.
func (r *Registry) loadFrom(s *settings.Settings) {
	for _, d := range s.All() {
		if !d.Enabled {
			r.log.Debug().
				Str("hook", d.Path).
				Str("kind", d.Kind.String()).
				Msg("hook disabled, skipping")
			continue
		}

		unit, err := luahook.Load(d.Path, s.Resolve(d), d.Kind)
		if err != nil {
			// Load errors are isolated per unit; the rest of the
			// registry keeps functioning.
			le, ok := err.(*hook.LoadError)
			if !ok {
				le = &hook.LoadError{Path: d.Path, Kind: d.Kind, Err: err}
			}
			r.loadErrs = append(r.loadErrs, le)
			r.log.Warn().
				Str("hook", d.Path).
				Str("kind", d.Kind.String()).
				Err(le.Err).
				Msg("hook failed to load, skipping")
			continue
		}

		r.units[d.Kind] = append(r.units[d.Kind], unit)
		r.log.Debug().
			Str("hook", unit.Name()).
			Str("kind", d.Kind.String()).
			Msg("hook loaded")
	}
}

// Register appends a programmatic unit after the file-backed ones. Used by
// the host for built-in hooks.
func (r *Registry) Register(u hook.Unit) error {
	if !u.Kind().Valid() {
		return hook.ErrUnknownKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.Kind()] = append(r.units[u.Kind()], u)
	return nil
}

// Resolve returns the units registered for a kind, in binding order. The
// returned slice is a copy; repeated resolutions within a session yield the
// identical sequence. No units registered is a normal state: the result is
// empty, never an error.
func (r *Registry) Resolve(kind hook.Kind) []hook.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]hook.Unit(nil), r.units[kind]...)
}

// LoadErrors returns the units that failed to load, in discovery order.
func (r *Registry) LoadErrors() []*hook.LoadError {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*hook.LoadError(nil), r.loadErrs...)
}

// Len returns the total number of loaded units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, us := range r.units {
		n += len(us)
	}
	return n
}

// Close releases every unit that holds resources. The registry must not be
// used afterward.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, us := range r.units {
		for _, u := range us {
			if c, ok := u.(interface{ Close() error }); ok {
				if err := c.Close(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	r.units = make(map[hook.Kind][]hook.Unit)
	return firstErr
}
