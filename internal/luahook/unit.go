package luahook

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookstorm/internal/hook"
)

// setupField is the named callback a setup hook's exported table must expose.
const setupField = "setup"

// Unit is a Lua-backed hook unit. It owns a private sandboxed state, loads
// its file once, and holds the resolved callable for the life of the session.
type Unit struct {
	name   string
	kind   hook.Kind
	state  *State
	bridge *Bridge
	fn     *lua.LFunction
}

// Load creates a unit from a Lua file. name is the workspace-relative path
// used for logging and errors; path is the absolute file location. The file
// is executed once; its exported value must match the kind's contract. On
// failure the state is closed and a *hook.LoadError is returned.
func Load(name, path string, kind hook.Kind) (*Unit, error) {
	if !kind.Valid() {
		return nil, &hook.LoadError{Path: name, Kind: kind, Err: hook.ErrUnknownKind}
	}

	state := NewState()

	export, err := state.LoadFileValue(path)
	if err != nil {
		state.Close()
		return nil, &hook.LoadError{Path: name, Kind: kind, Err: err}
	}

	fn, err := resolveExport(export, kind)
	if err != nil {
		state.Close()
		return nil, &hook.LoadError{Path: name, Kind: kind, Err: err}
	}

	return &Unit{
		name:   name,
		kind:   kind,
		state:  state,
		bridge: NewBridge(state.L),
		fn:     fn,
	}, nil
}

// resolveExport maps the chunk's returned value to the unit callable.
// Message hooks export the function directly; setup hooks export a table
// with a setup function field.
func resolveExport(v lua.LValue, kind hook.Kind) (*lua.LFunction, error) {
	switch kind {
	case hook.KindMessage:
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%w: chunk must return a function, got %s", hook.ErrBadExport, v.Type())
		}
		return fn, nil

	case hook.KindSetup:
		t, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: chunk must return a table, got %s", hook.ErrBadExport, v.Type())
		}
		fv := t.RawGetString(setupField)
		fn, ok := fv.(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%w: table has no %q function", hook.ErrBadExport, setupField)
		}
		return fn, nil

	default:
		return nil, hook.ErrUnknownKind
	}
}

// Name implements hook.Unit.
func (u *Unit) Name() string { return u.name }

// Kind implements hook.Unit.
func (u *Unit) Kind() hook.Kind { return u.kind }

// Invoke implements hook.Unit. The context snapshot is rendered as a fresh
// Lua table per call, so the hook can never alias host state.
func (u *Unit) Invoke(_ context.Context, hctx hook.Context) (hook.Patch, error) {
	if hctx.Kind() != u.kind {
		return nil, hook.ErrContextKind
	}

	switch c := hctx.(type) {
	case hook.MessageContext:
		return u.invokeMessage(c)
	case hook.SetupContext:
		return u.invokeSetup(c)
	default:
		return nil, hook.ErrContextKind
	}
}

func (u *Unit) invokeMessage(c hook.MessageContext) (hook.Patch, error) {
	arg := u.bridge.ToLua(map[string]any{
		"content":   c.Content,
		"workspace": c.Workspace,
	})

	results, err := u.state.CallFunction(u.fn, arg)
	if err != nil {
		return nil, err
	}
	return parseMessageResult(u.bridge, results)
}

func (u *Unit) invokeSetup(c hook.SetupContext) (hook.Patch, error) {
	arg := u.bridge.ToLua(map[string]any{
		"session_id": c.SessionID,
		"workspace":  c.Workspace,
		"is_team":    c.IsTeam,
		"custom_env": c.CustomEnv,
	})

	results, err := u.state.CallFunction(u.fn, arg)
	if err != nil {
		return nil, err
	}
	return parseSetupResult(u.bridge, results)
}

// parseMessageResult converts a message hook's return value to a patch.
// nil is a no-op, a string replaces the content, and a table may carry an
// optional content field.
func parseMessageResult(b *Bridge, results []lua.LValue) (hook.Patch, error) {
	if len(results) == 0 {
		return nil, nil
	}

	switch v := results[0].(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return hook.MessagePatch{Content: hook.String(string(v))}, nil
	case *lua.LTable:
		content, ok, err := b.TableString(v, "content")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return hook.MessagePatch{Content: &content}, nil
	default:
		return nil, fmt.Errorf("message hook returned %s, want nil, string, or table", v.Type())
	}
}

// parseSetupResult converts a setup hook's return value to a patch. nil is
// a no-op; a table may carry optional is_team and custom_env fields.
func parseSetupResult(b *Bridge, results []lua.LValue) (hook.Patch, error) {
	if len(results) == 0 {
		return nil, nil
	}

	switch v := results[0].(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		var patch hook.SetupPatch

		isTeam, ok, err := b.TableBool(v, "is_team")
		if err != nil {
			return nil, err
		}
		if ok {
			patch.IsTeam = &isTeam
		}

		env, ok, err := b.TableStringMap(v, "custom_env")
		if err != nil {
			return nil, err
		}
		if ok {
			patch.CustomEnv = env
		}

		if patch.IsZero() {
			return nil, nil
		}
		return patch, nil
	default:
		return nil, fmt.Errorf("setup hook returned %s, want nil or table", v.Type())
	}
}

// Close releases the unit's Lua state.
func (u *Unit) Close() error {
	return u.state.Close()
}
