package luahook

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a sandboxed gopher-lua state for one hook unit.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes access
// from Go code; Lua execution itself is single-threaded, which matches the
// host's cooperative scheduling model: within one event firing each hook
// runs to completion before the next is invoked.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// NewState creates a sandboxed Lua state with only the safe standard
// libraries opened.
func NewState() *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // opened selectively below
	})

	// Safe subset: no io, os, debug, or package loading from disk.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	s := &State{L: L}
	newSandbox(L).install()
	return s
}

// LoadFileValue executes a Lua file and returns the first value the chunk
// returns, or lua.LNil when the chunk returns nothing.
func (s *State) LoadFileValue(path string) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil, ErrStateClosed
	}

	fn, err := s.L.LoadFile(path)
	if err != nil {
		return lua.LNil, err
	}

	top := s.L.GetTop()
	s.L.Push(fn)

	if err := s.pcall(0); err != nil {
		return lua.LNil, err
	}

	nret := s.L.GetTop() - top
	if nret <= 0 {
		return lua.LNil, nil
	}
	v := s.L.Get(top + 1)
	s.L.Pop(nret)
	return v, nil
}

// CallFunction calls a Lua function value with the given arguments and
// returns its results. Returns an empty slice (not nil) when the function
// returns no values.
func (s *State) CallFunction(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	if err := s.pcall(len(args)); err != nil {
		return nil, err
	}

	nret := s.L.GetTop() - top
	if nret <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(nret)
	return results, nil
}

// pcall runs a protected call with panic recovery. The function and its
// arguments must already be on the stack.
func (s *State) pcall(nargs int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return s.L.PCall(nargs, lua.MultRet, nil)
}

// IsClosed reports whether the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. After Close all other methods return
// ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
