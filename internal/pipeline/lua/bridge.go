package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua for a single state.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGoValue(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	if lv == nil {
		return nil
	}

	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break circular reference
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a Go slice (contiguous 1-based integer
// keys) or a string-keyed map.
func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})
	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = b.toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = b.toGoValue(v, visited)
	})
	return m
}

// ToLuaValue converts a Go value to a Lua value.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
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
	case []any:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, b.ToLuaValue(e))
		}
		return t
	case lua.LValue:
		return val
	default:
		return lua.LNil
	}
}

// GetTableString gets a string field from a Lua table.
func (b *Bridge) GetTableString(t *lua.LTable, key string) (string, bool) {
	v := t.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// GetTableNumber gets a numeric field from a Lua table.
func (b *Bridge) GetTableNumber(t *lua.LTable, key string) (float64, bool) {
	v := t.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n), true
	}
	return 0, false
}

// GetTableTable gets a table field from a Lua table.
func (b *Bridge) GetTableTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	v := t.RawGetString(key)
	if tbl, ok := v.(*lua.LTable); ok {
		return tbl, true
	}
	return nil, false
}
