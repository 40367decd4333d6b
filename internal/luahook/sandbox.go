package luahook

import (
	lua "github.com/yuin/gopher-lua"
)

// sandbox restricts a hook state to pure computation. Hooks observe their
// context and return a patch; they get no filesystem, process, or module
// loading access.
type sandbox struct {
	L *lua.LState
}

func newSandbox(L *lua.LState) *sandbox {
	return &sandbox{L: L}
}

// install removes the code loaders and restricts require to the built-in
// safe modules.
func (s *sandbox) install() {
	// Loaders could pull arbitrary code into the state.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installSafeRequire()
}

// installSafeRequire installs a whitelist-based require and clears
// package.path/cpath so nothing can be loaded from disk. The package library
// is never opened, so the safe modules resolve from their globals.
func (s *sandbox) installSafeRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if safeModules[modName] {
			L.Push(L.GetGlobal(modName))
			return 1
		}

		// Note: L.RaiseError does a longjmp, so code after it is unreachable.
		L.RaiseError("module %q is not available to hooks", modName)
		return 0 // unreachable, but required for Go compiler
	}))
}
