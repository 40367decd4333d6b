// Package merge folds ordered hook patch sequences into host state.
//
// Merging is a pure, total function: given the same base and patch sequence
// it always produces the same result, and no merge can fail. Absent patch
// fields leave the base untouched. Overlapping scalar fields follow
// last-patch-wins. Mapping-valued fields merge key-wise, with patch keys
// taking precedence over prior state, never replacing the whole map.
package merge

import (
	"maps"

	"github.com/dshills/hookstorm/internal/hook"
)

// Message folds message patches onto a base content string in order.
func Message(base string, patches ...hook.MessagePatch) string {
	content := base
	for _, p := range patches {
		if p.Content != nil {
			content = *p.Content
		}
	}
	return content
}

// Setup folds setup patches onto a base setup context in order. The base is
// not mutated; the result carries a fresh CustomEnv map whenever any entry
// exists.
func Setup(base hook.SetupContext, patches ...hook.SetupPatch) hook.SetupContext {
	out := base
	out.CustomEnv = maps.Clone(base.CustomEnv)

	for _, p := range patches {
		if p.IsTeam != nil {
			out.IsTeam = *p.IsTeam
		}
		if len(p.CustomEnv) > 0 {
			if out.CustomEnv == nil {
				out.CustomEnv = make(map[string]string, len(p.CustomEnv))
			}
			maps.Copy(out.CustomEnv, p.CustomEnv)
		}
	}
	return out
}
