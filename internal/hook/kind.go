package hook

import "fmt"

// Kind identifies the event a hook unit is bound to.
type Kind string

// Event kinds.
const (
	// KindMessage fires for an outbound user message before it reaches
	// the assistant.
	KindMessage Kind = "message"

	// KindSetup fires during workspace/session setup, before the session
	// is persisted.
	KindSetup Kind = "setup"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	return k == KindMessage || k == KindSetup
}

// String returns the kind's wire name.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a settings string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}
