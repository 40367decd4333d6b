package hook

import (
	"errors"
	"fmt"
)

// Hook contract errors.
var (
	// ErrUnknownKind is returned for an event kind outside the enumerated set.
	ErrUnknownKind = errors.New("unknown hook kind")

	// ErrContextKind is returned when a unit receives a context of the
	// wrong event kind.
	ErrContextKind = errors.New("context kind does not match unit kind")

	// ErrPatchKind is returned when a unit produces a patch of the wrong
	// event kind.
	ErrPatchKind = errors.New("patch kind does not match unit kind")

	// ErrBadExport is returned when a hook file does not resolve to the
	// expected callable shape for its kind.
	ErrBadExport = errors.New("hook file has no valid export")
)

// LoadError reports a unit that could not be resolved or loaded. Load errors
// are isolated per unit: the registry logs and skips the unit, and other
// units and kinds keep functioning.
type LoadError struct {
	Path string
	Kind Kind
	Err  error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s hook %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// ExecError reports a unit that failed during Invoke. An exec error is fatal
// to the current firing: the dispatcher aborts the remaining sequence and no
// patch from the firing is committed.
type ExecError struct {
	Unit string
	Kind Kind
	Err  error
}

// Error implements error.
func (e *ExecError) Error() string {
	return fmt.Sprintf("invoke %s hook %s: %v", e.Kind, e.Unit, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error { return e.Err }
