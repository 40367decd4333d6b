// Package session holds the host-side session state that setup hooks
// patch. Hooks never touch this state directly: the host routes every
// change through the dispatch/merge pipeline and commits the result here.
package session

import (
	"maps"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// State is the mutable host session. Only the host mutates it, and only by
// committing a merged setup result.
type State struct {
	// ID uniquely identifies the session.
	ID string

	// Workspace is the absolute path of the active workspace.
	Workspace string

	// IsTeam reports whether the session belongs to a team workspace.
	IsTeam bool

	// CustomEnv holds environment entries to inject when the session's
	// process is spawned. May be nil.
	CustomEnv map[string]string
}

// New creates a session for a workspace with a fresh ID.
func New(workspace string) State {
	return State{
		ID:        uuid.NewString(),
		Workspace: workspace,
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.CustomEnv = maps.Clone(s.CustomEnv)
	return out
}

// Environ renders the process environment for session spawn: base entries
// with CustomEnv applied on top, CustomEnv winning on key collisions. The
// host calls this exactly once, at spawn time; this is the only point where
// hook-requested environment reaches a process.
func (s State) Environ(base []string) []string {
	if len(s.CustomEnv) == 0 {
		return append([]string(nil), base...)
	}

	out := make([]string, 0, len(base)+len(s.CustomEnv))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if _, overridden := s.CustomEnv[key]; overridden {
				continue
			}
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(s.CustomEnv))
	for k := range s.CustomEnv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+s.CustomEnv[k])
	}
	return out
}
