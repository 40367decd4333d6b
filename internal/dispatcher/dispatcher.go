// Package dispatcher sequences hook unit invocation for one firing event.
//
// Invocation is strictly sequential in registry order: ordering is a
// correctness requirement, not an optimization concern. A later message
// hook's "already transformed" check must see the effect of an earlier
// hook's patch, so each unit receives a fresh immutable snapshot that
// reflects the patches collected so far. Units for one kind are never
// invoked concurrently; distinct kinds fire in unrelated host turns and
// have no ordering relationship.
//
// The dispatcher only collects patches. Committing merged state to the
// session is the host's job, and happens only after the full sequence
// succeeds. An execution error aborts the firing with host state pristine.
package dispatcher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dshills/hookstorm/internal/hook"
	"github.com/dshills/hookstorm/internal/merge"
)

// Resolver yields the ordered hook units for an event kind. Satisfied by
// *registry.Registry.
type Resolver interface {
	Resolve(kind hook.Kind) []hook.Unit
}

// Dispatcher fires events against the units a Resolver supplies.
type Dispatcher struct {
	resolver Resolver
	log      zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = logger
	}
}

// New creates a dispatcher over a resolver.
func New(resolver Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FireMessage runs every message unit in order and returns the collected
// patches. Zero registered units returns an empty slice and no error. The
// first unit error aborts the sequence and surfaces as a *hook.ExecError;
// no patches are returned in that case.
func (d *Dispatcher) FireMessage(ctx context.Context, mc hook.MessageContext) ([]hook.MessagePatch, error) {
	units := d.resolver.Resolve(hook.KindMessage)
	patches := make([]hook.MessagePatch, 0, len(units))

	current := mc
	for _, u := range units {
		p, err := d.invoke(ctx, u, current)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}

		mp, ok := p.(hook.MessagePatch)
		if !ok {
			return nil, &hook.ExecError{Unit: u.Name(), Kind: hook.KindMessage, Err: hook.ErrPatchKind}
		}
		patches = append(patches, mp)

		// The next unit sees the content as transformed so far.
		current.Content = merge.Message(current.Content, mp)
	}

	return patches, nil
}

// FireSetup runs every setup unit in order and returns the collected
// patches. Semantics mirror FireMessage: sequential, full sequence on
// no-ops, abort on the first execution error.
func (d *Dispatcher) FireSetup(ctx context.Context, sc hook.SetupContext) ([]hook.SetupPatch, error) {
	units := d.resolver.Resolve(hook.KindSetup)
	patches := make([]hook.SetupPatch, 0, len(units))

	current := sc.Clone()
	for _, u := range units {
		p, err := d.invoke(ctx, u, current.Clone())
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}

		sp, ok := p.(hook.SetupPatch)
		if !ok {
			return nil, &hook.ExecError{Unit: u.Name(), Kind: hook.KindSetup, Err: hook.ErrPatchKind}
		}
		patches = append(patches, sp)

		current = merge.Setup(current, sp)
	}

	return patches, nil
}

// invoke runs one unit and wraps any failure as a fatal execution error.
func (d *Dispatcher) invoke(ctx context.Context, u hook.Unit, hctx hook.Context) (hook.Patch, error) {
	p, err := u.Invoke(ctx, hctx)
	if err != nil {
		d.log.Error().
			Str("hook", u.Name()).
			Str("kind", u.Kind().String()).
			Err(err).
			Msg("hook failed, aborting event")
		return nil, &hook.ExecError{Unit: u.Name(), Kind: u.Kind(), Err: err}
	}
	return p, nil
}
