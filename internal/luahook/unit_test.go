package luahook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/hookstorm/internal/hook"
)

// writeHook writes a Lua hook file into dir and returns its path.
func writeHook(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const prefixHook = `
local marker = "@game-developer"

return function(ctx)
    if string.find(ctx.content, marker, 1, true) then
        return ctx.content
    end
    return { content = marker .. " " .. ctx.content }
end
`

func TestMessageHookTransform(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "prefix.lua", prefixHook)

	unit, err := Load("hooks/prefix.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	if unit.Name() != "hooks/prefix.lua" {
		t.Errorf("Name() = %q, want %q", unit.Name(), "hooks/prefix.lua")
	}
	if unit.Kind() != hook.KindMessage {
		t.Errorf("Kind() = %q, want %q", unit.Kind(), hook.KindMessage)
	}

	p, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "do X", Workspace: "/ws"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	mp, ok := p.(hook.MessagePatch)
	if !ok {
		t.Fatalf("Invoke() patch type = %T, want MessagePatch", p)
	}
	if got := *mp.Content; got != "@game-developer do X" {
		t.Errorf("patch content = %q, want %q", got, "@game-developer do X")
	}
}

func TestMessageHookIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "prefix.lua", prefixHook)

	unit, err := Load("hooks/prefix.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	// First application transforms.
	p, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "do X"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	first := *p.(hook.MessagePatch).Content

	// Re-applying to its own output is a fixed point.
	p, err = unit.Invoke(context.Background(), hook.MessageContext{Content: first})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	second := *p.(hook.MessagePatch).Content

	if second != first {
		t.Errorf("re-application changed content: %q -> %q", first, second)
	}
}

func TestMessageHookNoOp(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "noop.lua", `return function(ctx) return nil end`)

	unit, err := Load("hooks/noop.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "do X"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if p != nil {
		t.Errorf("Invoke() patch = %#v, want nil", p)
	}
}

func TestMessageHookStringReturn(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "echo.lua", `return function(ctx) return ctx.content end`)

	unit, err := Load("hooks/echo.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "verbatim"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := *p.(hook.MessagePatch).Content; got != "verbatim" {
		t.Errorf("patch content = %q, want %q", got, "verbatim")
	}
}

func TestSetupHook(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "team.lua", `
return {
    setup = function(ctx)
        return {
            is_team = true,
            custom_env = { TEAM_MODE = "1", SESSION = ctx.session_id },
        }
    end,
}
`)

	unit, err := Load("hooks/team.lua", path, hook.KindSetup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.SetupContext{SessionID: "s1", Workspace: "/ws"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	sp, ok := p.(hook.SetupPatch)
	if !ok {
		t.Fatalf("Invoke() patch type = %T, want SetupPatch", p)
	}

	if sp.IsTeam == nil || !*sp.IsTeam {
		t.Errorf("patch IsTeam = %v, want true", sp.IsTeam)
	}
	if sp.CustomEnv["TEAM_MODE"] != "1" {
		t.Errorf("patch env TEAM_MODE = %q, want %q", sp.CustomEnv["TEAM_MODE"], "1")
	}
	if sp.CustomEnv["SESSION"] != "s1" {
		t.Errorf("patch env SESSION = %q, want %q", sp.CustomEnv["SESSION"], "s1")
	}
}

func TestSetupHookObservesExistingEnv(t *testing.T) {
	dir := t.TempDir()
	// Contributes a key only when the session doesn't already carry it.
	path := writeHook(t, dir, "fill.lua", `
return {
    setup = function(ctx)
        if ctx.custom_env and ctx.custom_env.MODE then
            return nil
        end
        return { custom_env = { MODE = "default" } }
    end,
}
`)

	unit, err := Load("hooks/fill.lua", path, hook.KindSetup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.SetupContext{
		CustomEnv: map[string]string{"MODE": "custom"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if p != nil {
		t.Errorf("hook should skip when MODE is present, got %#v", p)
	}

	p, err = unit.Invoke(context.Background(), hook.SetupContext{})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	sp := p.(hook.SetupPatch)
	if sp.CustomEnv["MODE"] != "default" {
		t.Errorf("patch env MODE = %q, want %q", sp.CustomEnv["MODE"], "default")
	}
}

func TestSetupHookEmptyPatch(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "empty.lua", `
return {
    setup = function(ctx)
        return {}
    end,
}
`)

	unit, err := Load("hooks/empty.lua", path, hook.KindSetup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.SetupContext{})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if p != nil {
		t.Errorf("empty table should be a no-op, got %#v", p)
	}
}

func TestLoadBadExport(t *testing.T) {
	tests := []struct {
		name   string
		kind   hook.Kind
		source string
	}{
		{"message chunk returns table", hook.KindMessage, `return { content = "x" }`},
		{"message chunk returns nothing", hook.KindMessage, `local x = 1`},
		{"setup chunk returns function", hook.KindSetup, `return function(ctx) end`},
		{"setup table missing callback", hook.KindSetup, `return { activate = function() end }`},
		{"setup callback not a function", hook.KindSetup, `return { setup = "yes" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeHook(t, dir, "bad.lua", tt.source)

			_, err := Load("hooks/bad.lua", path, tt.kind)
			if err == nil {
				t.Fatal("Load() error = nil, want bad export error")
			}

			var le *hook.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error type = %T, want *hook.LoadError", err)
			}
			if !errors.Is(err, hook.ErrBadExport) {
				t.Errorf("Load() error = %v, want ErrBadExport", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("hooks/gone.lua", filepath.Join(t.TempDir(), "gone.lua"), hook.KindMessage)

	var le *hook.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error type = %T, want *hook.LoadError", err)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "broken.lua", `return function(ctx`)

	_, err := Load("hooks/broken.lua", path, hook.KindMessage)

	var le *hook.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error type = %T, want *hook.LoadError", err)
	}
}

func TestInvokeRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "boom.lua", `return function(ctx) error("boom") end`)

	unit, err := Load("hooks/boom.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	_, err = unit.Invoke(context.Background(), hook.MessageContext{Content: "x"})
	if err == nil {
		t.Fatal("Invoke() error = nil, want runtime error")
	}
}

func TestInvokeBadPatchShape(t *testing.T) {
	tests := []struct {
		name   string
		kind   hook.Kind
		source string
	}{
		{"message returns number", hook.KindMessage, `return function(ctx) return 42 end`},
		{"message content not string", hook.KindMessage, `return function(ctx) return { content = 42 } end`},
		{"setup returns string", hook.KindSetup, `return { setup = function(ctx) return "x" end }`},
		{"setup is_team not boolean", hook.KindSetup, `return { setup = function(ctx) return { is_team = "yes" } end }`},
		{"setup env value not string", hook.KindSetup, `return { setup = function(ctx) return { custom_env = { N = 1 } } end }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeHook(t, dir, "bad.lua", tt.source)

			unit, err := Load("hooks/bad.lua", path, tt.kind)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			defer unit.Close()

			var hctx hook.Context
			if tt.kind == hook.KindMessage {
				hctx = hook.MessageContext{Content: "x"}
			} else {
				hctx = hook.SetupContext{}
			}

			if _, err := unit.Invoke(context.Background(), hctx); err == nil {
				t.Error("Invoke() error = nil, want patch shape error")
			}
		})
	}
}

func TestInvokeWrongContextKind(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "prefix.lua", prefixHook)

	unit, err := Load("hooks/prefix.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	_, err = unit.Invoke(context.Background(), hook.SetupContext{})
	if !errors.Is(err, hook.ErrContextKind) {
		t.Errorf("Invoke(SetupContext) error = %v, want ErrContextKind", err)
	}
}

func TestSandboxBlocksModules(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"require os", `return function(ctx) local os = require("os") return ctx.content end`},
		{"require io", `return function(ctx) local io = require("io") return ctx.content end`},
		{"dofile removed", `return function(ctx) dofile("x.lua") return ctx.content end`},
		{"load removed", `return function(ctx) load("return 1")() return ctx.content end`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeHook(t, dir, "escape.lua", tt.source)

			unit, err := Load("hooks/escape.lua", path, hook.KindMessage)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			defer unit.Close()

			if _, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "x"}); err == nil {
				t.Error("Invoke() error = nil, want sandbox violation")
			}
		})
	}
}

func TestSandboxAllowsSafeModules(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "upper.lua", `
local s = require("string")
return function(ctx)
    return { content = s.upper(ctx.content) }
end
`)

	unit, err := Load("hooks/upper.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer unit.Close()

	p, err := unit.Invoke(context.Background(), hook.MessageContext{Content: "loud"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := *p.(hook.MessagePatch).Content; got != "LOUD" {
		t.Errorf("patch content = %q, want %q", got, "LOUD")
	}
}

func TestInvokeAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := writeHook(t, dir, "prefix.lua", prefixHook)

	unit, err := Load("hooks/prefix.lua", path, hook.KindMessage)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := unit.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err = unit.Invoke(context.Background(), hook.MessageContext{Content: "x"})
	if !errors.Is(err, ErrStateClosed) {
		t.Errorf("Invoke() after Close error = %v, want ErrStateClosed", err)
	}
}
