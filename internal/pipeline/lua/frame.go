package lua

import (
	"github.com/framepipe/framepipe/internal/frame"
	lua "github.com/yuin/gopher-lua"
)

const frameTypeName = "frame"

// registerFrameType installs the frame userdata metatable.
func registerFrameType(L *lua.LState) {
	mt := L.NewTypeMetatable(frameTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), frameMethods))
}

// installHelpers installs the global fp module available to every plugin.
func installHelpers(L *lua.LState) {
	fp := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"new_frame":  fpNewFrame,
		"read_value": fpReadValue,
	})
	L.SetGlobal("fp", fp)
}

var frameMethods = map[string]lua.LGFunction{
	"width":     frameWidth,
	"height":    frameHeight,
	"channels":  frameChannels,
	"len":       frameLen,
	"get":       frameGet,
	"set":       frameSet,
	"pixel":     framePixel,
	"set_pixel": frameSetPixel,
	"clone":     frameClone,
}

// NewFrameValue wraps a frame into a Lua userdata bound to this state.
func (s *State) NewFrameValue(f *frame.Frame) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return newFrameValue(s.L, f)
}

func newFrameValue(L *lua.LState, f *frame.Frame) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = f
	L.SetMetatable(ud, L.GetTypeMetatable(frameTypeName))
	return ud
}

// FrameFromValue unwraps a frame from a Lua value.
func FrameFromValue(lv lua.LValue) (*frame.Frame, error) {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, ErrNotAFrame
	}
	f, ok := ud.Value.(*frame.Frame)
	if !ok {
		return nil, ErrNotAFrame
	}
	return f, nil
}

func checkFrame(L *lua.LState) *frame.Frame {
	ud := L.CheckUserData(1)
	if f, ok := ud.Value.(*frame.Frame); ok {
		return f
	}
	L.ArgError(1, "frame expected")
	return nil
}

func fpNewFrame(L *lua.LState) int {
	w := L.CheckInt(1)
	h := L.CheckInt(2)
	c := L.CheckInt(3)
	if w <= 0 || h <= 0 || c <= 0 {
		L.ArgError(1, "frame dimensions must be positive")
		return 0
	}
	L.Push(newFrameValue(L, frame.New(w, h, c)))
	return 1
}

// fpReadValue returns settings[key][1], the current value of a setting.
func fpReadValue(L *lua.LState) int {
	settings := L.CheckTable(1)
	key := L.CheckString(2)

	entry := settings.RawGetString(key)
	tbl, ok := entry.(*lua.LTable)
	if !ok {
		L.ArgError(2, "unknown setting "+key)
		return 0
	}
	L.Push(tbl.RawGetInt(1))
	return 1
}

func frameWidth(L *lua.LState) int {
	L.Push(lua.LNumber(checkFrame(L).Width))
	return 1
}

func frameHeight(L *lua.LState) int {
	L.Push(lua.LNumber(checkFrame(L).Height))
	return 1
}

func frameChannels(L *lua.LState) int {
	L.Push(lua.LNumber(checkFrame(L).Channels))
	return 1
}

func frameLen(L *lua.LState) int {
	L.Push(lua.LNumber(len(checkFrame(L).Pix)))
	return 1
}

// frameGet returns the byte at 1-based linear index i.
func frameGet(L *lua.LState) int {
	f := checkFrame(L)
	i := L.CheckInt(2)
	if i < 1 || i > len(f.Pix) {
		L.ArgError(2, "index out of range")
		return 0
	}
	L.Push(lua.LNumber(f.Pix[i-1]))
	return 1
}

// frameSet stores a byte at 1-based linear index i, clamping to 0..255.
func frameSet(L *lua.LState) int {
	f := checkFrame(L)
	i := L.CheckInt(2)
	v := L.CheckNumber(3)
	if i < 1 || i > len(f.Pix) {
		L.ArgError(2, "index out of range")
		return 0
	}
	f.Pix[i-1] = clampByte(float64(v))
	return 0
}

// framePixel returns the value at 1-based (x, y, c).
func framePixel(L *lua.LState) int {
	f := checkFrame(L)
	x, y, c := L.CheckInt(2), L.CheckInt(3), L.CheckInt(4)
	if x < 1 || x > f.Width || y < 1 || y > f.Height || c < 1 || c > f.Channels {
		L.ArgError(2, "pixel coordinates out of range")
		return 0
	}
	L.Push(lua.LNumber(f.At(x-1, y-1, c-1)))
	return 1
}

// frameSetPixel stores a value at 1-based (x, y, c), clamping to 0..255.
func frameSetPixel(L *lua.LState) int {
	f := checkFrame(L)
	x, y, c := L.CheckInt(2), L.CheckInt(3), L.CheckInt(4)
	v := L.CheckNumber(5)
	if x < 1 || x > f.Width || y < 1 || y > f.Height || c < 1 || c > f.Channels {
		L.ArgError(2, "pixel coordinates out of range")
		return 0
	}
	f.Set(x-1, y-1, c-1, clampByte(float64(v)))
	return 0
}

func frameClone(L *lua.LState) int {
	L.Push(newFrameValue(L, checkFrame(L).Clone()))
	return 1
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
