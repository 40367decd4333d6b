package hook

// Patch is the partial output of a hook unit. Absent optional fields signal
// "no opinion" and never overwrite existing host values during merging.
type Patch interface {
	// Kind returns the event kind this patch is valid for.
	Kind() Kind
}

// MessagePatch is the patch shape for KindMessage events.
type MessagePatch struct {
	// Content, when non-nil, replaces the message content.
	Content *string
}

// Kind implements Patch.
func (MessagePatch) Kind() Kind { return KindMessage }

// IsZero reports whether the patch carries no opinion.
func (p MessagePatch) IsZero() bool { return p.Content == nil }

// SetupPatch is the patch shape for KindSetup events.
type SetupPatch struct {
	// IsTeam, when non-nil, sets the session team flag.
	IsTeam *bool

	// CustomEnv entries are merged key-wise into the session environment.
	// Patch keys take precedence over prior state; keys the patch does
	// not name are untouched. A nil map contributes nothing.
	CustomEnv map[string]string
}

// Kind implements Patch.
func (SetupPatch) Kind() Kind { return KindSetup }

// IsZero reports whether the patch carries no opinion.
func (p SetupPatch) IsZero() bool { return p.IsTeam == nil && len(p.CustomEnv) == 0 }

// String returns a pointer to s, for building patch literals.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building patch literals.
func Bool(b bool) *bool { return &b }
