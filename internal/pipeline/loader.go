package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/framepipe/framepipe/internal/frame"
	plua "github.com/framepipe/framepipe/internal/pipeline/lua"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// pluginExt is the extension of pipeline plugin source files.
const pluginExt = ".lua"

// DefaultPipelineDirs returns the default candidate directories, checked in
// priority order; the first existing one wins.
func DefaultPipelineDirs() []string {
	return []string{
		"pipelines",
		filepath.Join("framepipe", "pipelines"),
	}
}

// Loader discovers and loads pipeline plugins from the filesystem.
type Loader struct {
	dirs   []string
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDirs sets the candidate pipeline directories.
func WithDirs(dirs ...string) LoaderOption {
	return func(l *Loader) {
		l.dirs = dirs
	}
}

// NewLoader creates a new plugin loader.
func NewLoader(logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		dirs:   DefaultPipelineDirs(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dirs returns the configured candidate directories.
func (l *Loader) Dirs() []string {
	return l.dirs
}

// Load scans the first existing candidate directory for plugin source files
// and loads each one into an isolated interpreter.
//
// A failure in a single file is logged and skips only that file; the scan of
// the remaining files continues. An empty result is not an error. The only
// error condition is that no candidate directory exists at all.
func (l *Loader) Load() (map[string]*Descriptor, error) {
	dir, err := l.resolveDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pipelines directory: %w", err)
	}

	descriptors := make(map[string]*Descriptor)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != pluginExt {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		d, err := l.loadFile(path)
		if err != nil {
			l.logger.Error("cannot load pipeline file",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		descriptors[d.File] = d
		l.logger.Info("loaded pipeline", zap.String("path", path))
	}
	return descriptors, nil
}

// resolveDir returns the first existing candidate directory as an absolute
// path, or ErrPipelinesDirNotFound.
func (l *Loader) resolveDir() (string, error) {
	for _, dir := range l.dirs {
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			return filepath.Abs(dir)
		}
	}
	return "", ErrPipelinesDirNotFound
}

// loadFile loads a single plugin source file into its own Lua state,
// validates the mandatory contract, and builds its Descriptor.
func (l *Loader) loadFile(path string) (*Descriptor, error) {
	state := plua.NewState()

	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, err
	}
	if !state.HasFunction("on_frame_process") {
		state.Close()
		return nil, ErrMissingFrameProcess
	}

	d, err := buildDescriptor(state, path)
	if err != nil {
		state.Close()
		return nil, err
	}
	return d, nil
}

// buildDescriptor probes the loaded state once and resolves every optional
// field to an explicit default, so downstream code never special-cases
// absence.
func buildDescriptor(state *plua.State, path string) (*Descriptor, error) {
	file := filepath.Base(path)
	stem := strings.TrimSuffix(file, pluginExt)

	d := &Descriptor{
		Path:     path,
		File:     file,
		Name:     globalString(state, "name", stem),
		Version:  globalString(state, "version", ""),
		Desc:     globalString(state, "desc", ""),
		Mappings: make(map[string]TypeCode),
		closer:   state,
	}

	settings, err := readSettings(state)
	if err != nil {
		return nil, err
	}
	d.Settings = settings
	if settings != nil {
		for _, key := range settings.Keys() {
			st, _ := settings.Get(key)
			d.Mappings[key] = InferType(st.Value, st.Min, st.Max, st.Step, st.Tooltip)
			// Normalize the declared default to its semantic type.
			st.Value = Decode(d.Mappings[key], st.Value)
		}
	}

	d.Callbacks = buildCallbacks(state, d)
	return d, nil
}

// globalString reads a global string, falling back when absent or mistyped.
func globalString(state *plua.State, name, fallback string) string {
	if s, ok := state.GetGlobal(name).(lua.LString); ok {
		return string(s)
	}
	return fallback
}

// readSettings reads the plugin's settings table: key -> {default, min, max,
// step, tooltip}. Returns nil when the plugin declares no settings. Keys are
// ordered lexically; Lua tables have no stable iteration order.
func readSettings(state *plua.State) (*Settings, error) {
	tbl, ok := state.GetGlobal("settings").(*lua.LTable)
	if !ok {
		return nil, nil
	}

	bridge := plua.NewBridge(state.LuaState())

	var keys []string
	tbl.ForEach(func(k, _ lua.LValue) {
		keys = append(keys, k.String())
	})
	sort.Strings(keys)

	settings := NewSettings()
	for _, key := range keys {
		entry, ok := tbl.RawGetString(key).(*lua.LTable)
		if !ok || entry.Len() < 5 {
			return nil, fmt.Errorf("setting %q: want {default, min, max, step, tooltip}", key)
		}
		st := &Setting{
			Value:   bridge.ToGoValue(entry.RawGetInt(1)),
			Tooltip: entry.RawGetInt(5).String(),
		}
		for i, dst := range []*float64{&st.Min, &st.Max, &st.Step} {
			n, ok := entry.RawGetInt(i + 2).(lua.LNumber)
			if !ok {
				return nil, fmt.Errorf("setting %q: bounds and step must be numbers", key)
			}
			*dst = float64(n)
		}
		settings.Set(key, st)
	}
	return settings, nil
}

// buildCallbacks probes the optional hooks once and binds Go closures that
// call into the plugin's state. Absent hooks stay nil permanently.
func buildCallbacks(state *plua.State, d *Descriptor) Callbacks {
	cb := Callbacks{
		OnFrameProcess: frameProcessFunc(state),
	}

	if state.HasFunction("on_load") {
		cb.OnLoad = func() error {
			_, err := state.Call("on_load")
			return err
		}
	}
	if state.HasFunction("on_unload") {
		cb.OnUnload = func() error {
			_, err := state.Call("on_unload")
			return err
		}
	}
	if state.HasFunction("before_change_settings") {
		cb.BeforeChangeSettings = func(key string, value float64) error {
			_, err := state.Call("before_change_settings", lua.LString(key), lua.LNumber(value))
			return err
		}
	}
	if state.HasFunction("after_change_settings") {
		cb.AfterChangeSettings = func(key string, value float64) error {
			_, err := state.Call("after_change_settings", lua.LString(key), lua.LNumber(value))
			return err
		}
	}
	if d.Settings != nil {
		cb.WriteSetting = state.WriteSetting
	}
	return cb
}

// frameProcessFunc binds the mandatory entry point.
func frameProcessFunc(state *plua.State) FrameProcessFunc {
	return func(f *frame.Frame, width, height, frameNum int) (*frame.Frame, error) {
		results, err := state.Call("on_frame_process",
			state.NewFrameValue(f),
			lua.LNumber(width),
			lua.LNumber(height),
			lua.LNumber(frameNum))
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("on_frame_process returned no frame")
		}
		out, err := plua.FrameFromValue(results[0])
		if err != nil {
			return nil, fmt.Errorf("on_frame_process: %w", err)
		}
		return out, nil
	}
}
