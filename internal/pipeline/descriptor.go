package pipeline

import (
	"fmt"
	"io"

	"github.com/framepipe/framepipe/internal/frame"
)

// Setting is one configurable plugin variable: current value, bounds, UI
// step, and tooltip. Bounds, step, and tooltip are part of the plugin's
// compiled definition and are never persisted.
type Setting struct {
	Value   any
	Min     float64
	Max     float64
	Step    float64
	Tooltip string
}

// Settings is an insertion-ordered mapping from setting key to Setting.
type Settings struct {
	keys []string
	m    map[string]*Setting
}

// NewSettings creates an empty settings table.
func NewSettings() *Settings {
	return &Settings{m: make(map[string]*Setting)}
}

// Set inserts or replaces a setting, preserving first-insert order.
func (s *Settings) Set(key string, st *Setting) {
	if _, exists := s.m[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.m[key] = st
}

// Get returns the setting for key.
func (s *Settings) Get(key string) (*Setting, bool) {
	st, ok := s.m[key]
	return st, ok
}

// Keys returns the setting keys in declaration order.
func (s *Settings) Keys() []string {
	return append([]string{}, s.keys...)
}

// Len returns the number of settings.
func (s *Settings) Len() int {
	return len(s.keys)
}

// FrameProcessFunc is the mandatory plugin entry point: it receives the
// current frame and the fixed (width, height, frame number) context and
// returns the processed frame, whose shape must equal its input's.
type FrameProcessFunc func(f *frame.Frame, width, height, frameNum int) (*frame.Frame, error)

// Callbacks is the fixed record of a plugin's function handles, probed once
// at load time. Optional hooks are nil when the plugin does not implement
// them; absence is a permanent no-op, never re-checked per frame.
type Callbacks struct {
	// OnFrameProcess is mandatory.
	OnFrameProcess FrameProcessFunc

	// OnLoad initializes plugin state before its first frame.
	OnLoad func() error

	// OnUnload releases plugin state after its last frame.
	OnUnload func() error

	// BeforeChangeSettings observes an impending settings change with the
	// old value still in effect.
	BeforeChangeSettings func(key string, value float64) error

	// AfterChangeSettings observes a committed settings change.
	AfterChangeSettings func(key string, value float64) error

	// WriteSetting propagates a committed value into the plugin's own
	// settings table. Populated by the loader; nil when the plugin declares
	// no settings.
	WriteSetting func(key string, value any) error
}

// Descriptor is the runtime's in-memory representation of a loaded plugin.
type Descriptor struct {
	// Path is the absolute location of the plugin source; File is its base
	// filename, the stable identity key across runs.
	Path string
	File string

	// Display metadata, empty string when the plugin omits them.
	Name    string
	Version string
	Desc    string

	Callbacks Callbacks

	// Settings is nil when the plugin declares no settings. Mappings is
	// always non-nil so type lookups never need a nil check.
	Settings *Settings
	Mappings map[string]TypeCode

	// closer releases the plugin's interpreter; nil for descriptors built
	// outside the loader.
	closer io.Closer
}

// HasSettings reports whether the plugin declares any settings.
func (d *Descriptor) HasSettings() bool {
	return d.Settings != nil && d.Settings.Len() > 0
}

// ChangeSettings applies a settings change for key with the transported
// value. When enabled (the pipeline is active), before_change_settings runs
// with the old value still stored, then the decoded value is committed, then
// after_change_settings runs. Settings changes and frame processing are
// never concurrent for the same plugin; the session enforces that.
func (d *Descriptor) ChangeSettings(enabled bool, key string, value float64) error {
	code, ok := d.Mappings[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	st, ok := d.Settings.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	if enabled && d.Callbacks.BeforeChangeSettings != nil {
		if err := d.Callbacks.BeforeChangeSettings(key, value); err != nil {
			return fmt.Errorf("before_change_settings %q: %w", key, err)
		}
	}

	decoded := Decode(code, value)
	st.Value = decoded
	if d.Callbacks.WriteSetting != nil {
		if err := d.Callbacks.WriteSetting(key, decoded); err != nil {
			return fmt.Errorf("write setting %q: %w", key, err)
		}
	}

	if enabled && d.Callbacks.AfterChangeSettings != nil {
		if err := d.Callbacks.AfterChangeSettings(key, value); err != nil {
			return fmt.Errorf("after_change_settings %q: %w", key, err)
		}
	}
	return nil
}

// Load invokes on_load when the plugin implements it.
func (d *Descriptor) Load() error {
	if d.Callbacks.OnLoad == nil {
		return nil
	}
	return d.Callbacks.OnLoad()
}

// Unload invokes on_unload when the plugin implements it.
func (d *Descriptor) Unload() error {
	if d.Callbacks.OnUnload == nil {
		return nil
	}
	return d.Callbacks.OnUnload()
}

// Close releases the plugin's interpreter state.
func (d *Descriptor) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
