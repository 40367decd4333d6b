package hook

import "maps"

// Context is the immutable input presented to a hook unit for one event
// firing. Concrete contexts are value types; map-valued fields are cloned
// when a context is built so a unit never aliases host state.
type Context interface {
	// Kind returns the event kind this context is valid for.
	Kind() Kind
}

// MessageContext is the context for KindMessage events.
type MessageContext struct {
	// Content is the outbound user message text.
	Content string

	// Workspace is the absolute path of the active workspace.
	Workspace string
}

// Kind implements Context.
func (MessageContext) Kind() Kind { return KindMessage }

// SetupContext is the context for KindSetup events.
type SetupContext struct {
	// SessionID identifies the session being set up.
	SessionID string

	// Workspace is the absolute path of the active workspace.
	Workspace string

	// IsTeam reports whether the session belongs to a team workspace.
	IsTeam bool

	// CustomEnv holds environment entries already requested for the
	// session. May be nil.
	CustomEnv map[string]string
}

// Kind implements Context.
func (SetupContext) Kind() Kind { return KindSetup }

// Clone returns a deep copy of the context. The dispatcher clones before
// every unit invocation so no unit can observe another unit's view.
func (c SetupContext) Clone() SetupContext {
	out := c
	out.CustomEnv = maps.Clone(c.CustomEnv)
	return out
}
