package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// WriteSetting stores a committed value into the plugin's own settings
// table (settings[key][1]) so the next on_frame_process call observes it.
func (s *State) WriteSetting(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	tbl, ok := s.L.GetGlobal("settings").(*lua.LTable)
	if !ok {
		return fmt.Errorf("plugin declares no settings table")
	}
	entry, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	entry.RawSetInt(1, NewBridge(s.L).ToLuaValue(value))
	return nil
}
