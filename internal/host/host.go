// Package host composes the registry, dispatcher, and merger into the two
// operations the assistant calls: transforming an outbound message and
// setting up a session.
//
// The host owns the commit boundary. Patches are merged and committed only
// after every hook in the firing succeeded; a failed firing leaves the
// message or session exactly as it was and reports the failure upstream.
// A transformation is never silently half-applied.
package host

import (
	"context"
	"maps"

	"github.com/rs/zerolog"

	"github.com/dshills/hookstorm/internal/dispatcher"
	"github.com/dshills/hookstorm/internal/hook"
	"github.com/dshills/hookstorm/internal/merge"
	"github.com/dshills/hookstorm/internal/session"
)

// Host fires hook events on behalf of the assistant and commits merged
// results to session state.
type Host struct {
	disp *dispatcher.Dispatcher
	log  zerolog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) {
		h.log = logger
	}
}

// New creates a host over a resolver (normally a *registry.Registry).
func New(resolver dispatcher.Resolver, opts ...Option) *Host {
	h := &Host{
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.disp = dispatcher.New(resolver, dispatcher.WithLogger(h.log))
	return h
}

// TransformMessage fires the message event for an outbound user message and
// returns the merged content. On error the original content is returned
// unchanged alongside the error.
func (h *Host) TransformMessage(ctx context.Context, sess session.State, content string) (string, error) {
	mc := hook.MessageContext{
		Content:   content,
		Workspace: sess.Workspace,
	}

	patches, err := h.disp.FireMessage(ctx, mc)
	if err != nil {
		return content, err
	}

	return merge.Message(content, patches...), nil
}

// SetupSession fires the setup event for a session about to be persisted
// and returns the new state with all patches merged. On error the input
// state is returned unchanged alongside the error; no partial merge is
// ever committed.
func (h *Host) SetupSession(ctx context.Context, sess session.State) (session.State, error) {
	sc := hook.SetupContext{
		SessionID: sess.ID,
		Workspace: sess.Workspace,
		IsTeam:    sess.IsTeam,
		CustomEnv: maps.Clone(sess.CustomEnv),
	}

	patches, err := h.disp.FireSetup(ctx, sc)
	if err != nil {
		return sess, err
	}

	merged := merge.Setup(sc, patches...)

	out := sess.Clone()
	out.IsTeam = merged.IsTeam
	out.CustomEnv = merged.CustomEnv
	return out, nil
}
