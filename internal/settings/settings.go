// Package settings reads the declarative hook configuration for a workspace
// or team root.
//
// Hooks are declared in <root>/.hookstorm/settings.json:
//
//	{
//	  "hooks": {
//	    "message": [
//	      {"path": "hooks/game_prefix.lua"},
//	      {"path": "hooks/audit.lua", "enabled": false}
//	    ],
//	    "setup": [
//	      {"path": "hooks/team_env.lua"}
//	    ]
//	  }
//	}
//
// Hook paths are root-relative. Array order is binding: it is the order the
// dispatcher invokes the hooks in. A missing settings file means no hooks,
// a normal silent state rather than an error. The settings UI that edits this file
// is an external collaborator; this package is its only contact point with
// the hook system.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/hookstorm/internal/hook"
)

// Settings file location under a root directory.
const (
	Dir  = ".hookstorm"
	File = "settings.json"
)

// Descriptor declares one hook unit: a root-relative Lua file bound to an
// event kind. The registry resolves descriptors to concrete units at
// session init.
type Descriptor struct {
	// Path is the hook file, relative to the declaring root.
	Path string

	// Kind is the event kind the hook is bound to.
	Kind hook.Kind

	// Enabled gates loading. Defaults to true when the settings entry
	// omits it.
	Enabled bool
}

// Settings is the parsed hook configuration of one root directory.
type Settings struct {
	root        string
	descriptors []Descriptor
}

// FilePath returns the settings file location for a root directory.
func FilePath(root string) string {
	return filepath.Join(root, Dir, File)
}

// Load parses the hook configuration under root. A missing settings file
// yields empty settings; malformed JSON or a wrong shape is an error.
func Load(root string) (*Settings, error) {
	s := &Settings{root: root}

	data, err := os.ReadFile(FilePath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("settings %s: invalid JSON", FilePath(root))
	}

	for _, kind := range []hook.Kind{hook.KindMessage, hook.KindSetup} {
		list := gjson.GetBytes(data, "hooks."+kind.String())
		if !list.Exists() {
			continue
		}
		if !list.IsArray() {
			return nil, fmt.Errorf("settings %s: hooks.%s is not an array", FilePath(root), kind)
		}

		for _, entry := range list.Array() {
			d := Descriptor{
				Path:    entry.Get("path").String(),
				Kind:    kind,
				Enabled: true,
			}
			if e := entry.Get("enabled"); e.Exists() {
				d.Enabled = e.Bool()
			}
			s.descriptors = append(s.descriptors, d)
		}
	}

	return s, nil
}

// Root returns the directory the settings were loaded from. Descriptor
// paths resolve against it.
func (s *Settings) Root() string {
	return s.root
}

// Descriptors returns the declared hooks for one kind, in declaration order.
func (s *Settings) Descriptors(kind hook.Kind) []Descriptor {
	var out []Descriptor
	for _, d := range s.descriptors {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// All returns every declared hook in declaration order, message before setup.
func (s *Settings) All() []Descriptor {
	return append([]Descriptor(nil), s.descriptors...)
}

// Resolve returns the absolute file path for a descriptor.
func (s *Settings) Resolve(d Descriptor) string {
	return filepath.Join(s.root, d.Path)
}

// SetEnabled toggles a declared hook in place and rewrites the settings
// file. The hook is addressed by kind and root-relative path.
func SetEnabled(root string, kind hook.Kind, hookPath string, enabled bool) error {
	file := FilePath(root)

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	list := gjson.GetBytes(data, "hooks."+kind.String())
	idx := -1
	for i, entry := range list.Array() {
		if entry.Get("path").String() == hookPath {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no %s hook %q in %s", kind, hookPath, file)
	}

	updated, err := sjson.SetBytes(data, fmt.Sprintf("hooks.%s.%d.enabled", kind, idx), enabled)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return os.WriteFile(file, updated, 0o644)
}
