package hook

import "context"

// Unit is a single event-bound hook. Implementations must treat the passed
// Context as read-only and must not retain it across invocations.
//
// Invoke may block; a unit that performs asynchronous work is expected to
// wait for its own completion before returning. The dispatcher awaits each
// unit before invoking the next. No cancellation or timeout policy is
// applied at this layer; the ctx is passed through for units that honor it.
type Unit interface {
	// Name identifies the unit for logging and errors. For file-backed
	// units this is the workspace-relative path.
	Name() string

	// Kind returns the event kind the unit is bound to.
	Kind() Kind

	// Invoke runs the hook against an immutable context snapshot and
	// returns a patch. A nil patch is a no-op.
	Invoke(ctx context.Context, hctx Context) (Patch, error)
}

// MessageFunc adapts a Go function to a message-kind Unit. Used by the host
// for built-in hooks registered programmatically.
type MessageFunc struct {
	// UnitName identifies the unit.
	UnitName string

	// Fn is the hook body. A zero MessagePatch is a no-op.
	Fn func(ctx context.Context, mc MessageContext) (MessagePatch, error)
}

// Name implements Unit.
func (f MessageFunc) Name() string { return f.UnitName }

// Kind implements Unit.
func (f MessageFunc) Kind() Kind { return KindMessage }

// Invoke implements Unit.
func (f MessageFunc) Invoke(ctx context.Context, hctx Context) (Patch, error) {
	mc, ok := hctx.(MessageContext)
	if !ok {
		return nil, ErrContextKind
	}
	p, err := f.Fn(ctx, mc)
	if err != nil {
		return nil, err
	}
	if p.IsZero() {
		return nil, nil
	}
	return p, nil
}

// SetupFunc adapts a Go function to a setup-kind Unit.
type SetupFunc struct {
	// UnitName identifies the unit.
	UnitName string

	// Fn is the hook body. A zero SetupPatch is a no-op.
	Fn func(ctx context.Context, sc SetupContext) (SetupPatch, error)
}

// Name implements Unit.
func (f SetupFunc) Name() string { return f.UnitName }

// Kind implements Unit.
func (f SetupFunc) Kind() Kind { return KindSetup }

// Invoke implements Unit.
func (f SetupFunc) Invoke(ctx context.Context, hctx Context) (Patch, error) {
	sc, ok := hctx.(SetupContext)
	if !ok {
		return nil, ErrContextKind
	}
	p, err := f.Fn(ctx, sc)
	if err != nil {
		return nil, err
	}
	if p.IsZero() {
		return nil, nil
	}
	return p, nil
}
