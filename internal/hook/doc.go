// Package hook defines the contract between the host assistant and its
// lifecycle hooks.
//
// A hook is a small, independently loaded transformation bound to exactly one
// event kind. The host fires two kinds of events:
//
//   - KindMessage: an outbound user message, before it reaches the assistant.
//   - KindSetup: a workspace/session setup event, before the session is
//     persisted and its process environment is spawned.
//
// # Contract
//
// Every hook satisfies the Unit interface:
//
//	Invoke(ctx, hookContext) -> (patch, error)
//
// The hook context is an immutable snapshot; a unit only observes it. The
// returned patch is partial: absent fields mean "no opinion", never "clear
// this field". A nil patch is a no-op.
//
// Units are stateless by contract. A unit is loaded once per session, may be
// invoked once per event of its kind, and is discarded when the owning
// session is torn down. Any state a unit needs must be read fresh from the
// context on each call.
//
// # Composition guarantees
//
// Units must not assume any other unit in the sequence has run before or
// after them. The dispatcher invokes units strictly in registry order and
// presents each unit a snapshot that reflects the patches of the units that
// ran before it, so an "already transformed" check in a later unit sees an
// earlier unit's effect. A message hook that detects its own marker and
// returns the content verbatim is therefore a fixed point under repeated
// application.
//
// # Errors
//
// Two failure classes exist. A LoadError means a unit could not be resolved
// or loaded; the registry logs it and skips the unit without affecting other
// units or kinds. An ExecError means a unit failed during Invoke; it is fatal
// to that event's firing and the dispatcher aborts the remaining sequence,
// leaving host state untouched. Merging itself cannot fail: the per-field
// rules are total functions.
package hook
