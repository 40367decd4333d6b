package luahook

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts between Go and Lua values for hook contexts and patches.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToLua converts a Go value to a Lua value. Supported: nil, bool, numbers,
// string, map[string]string, and map[string]any.
func (b *Bridge) ToLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case map[string]string:
		t := b.L.NewTable()
		for k, s := range val {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, av := range val {
			t.RawSetString(k, b.ToLua(av))
		}
		return t
	case lua.LValue:
		return val
	default:
		return lua.LNil
	}
}

// TableString reads a string field from a table. The second return reports
// presence; a present non-string field is an error.
func (b *Bridge) TableString(t *lua.LTable, key string) (string, bool, error) {
	v := t.RawGetString(key)
	switch s := v.(type) {
	case *lua.LNilType:
		return "", false, nil
	case lua.LString:
		return string(s), true, nil
	default:
		return "", false, fmt.Errorf("field %q: expected string, got %s", key, v.Type())
	}
}

// TableBool reads a boolean field from a table. The second return reports
// presence; a present non-boolean field is an error.
func (b *Bridge) TableBool(t *lua.LTable, key string) (bool, bool, error) {
	v := t.RawGetString(key)
	switch bv := v.(type) {
	case *lua.LNilType:
		return false, false, nil
	case lua.LBool:
		return bool(bv), true, nil
	default:
		return false, false, fmt.Errorf("field %q: expected boolean, got %s", key, v.Type())
	}
}

// TableStringMap reads a table field as a map[string]string. The second
// return reports presence. Non-string keys or values are an error: patch
// environment entries are strings by contract.
func (b *Bridge) TableStringMap(t *lua.LTable, key string) (map[string]string, bool, error) {
	v := t.RawGetString(key)
	switch tbl := v.(type) {
	case *lua.LNilType:
		return nil, false, nil
	case *lua.LTable:
		m := make(map[string]string)
		var convErr error
		tbl.ForEach(func(k, mv lua.LValue) {
			if convErr != nil {
				return
			}
			ks, ok := k.(lua.LString)
			if !ok {
				convErr = fmt.Errorf("field %q: non-string key %s", key, k.Type())
				return
			}
			vs, ok := mv.(lua.LString)
			if !ok {
				convErr = fmt.Errorf("field %q: entry %q has non-string value %s", key, string(ks), mv.Type())
				return
			}
			m[string(ks)] = string(vs)
		})
		if convErr != nil {
			return nil, false, convErr
		}
		return m, true, nil
	default:
		return nil, false, fmt.Errorf("field %q: expected table, got %s", key, v.Type())
	}
}
