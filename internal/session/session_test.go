package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/framepipe/framepipe/internal/frame"
	"github.com/framepipe/framepipe/internal/pipeline"
)

// traceDescriptor records lifecycle and processing calls in order.
func traceDescriptor(file string, trace *[]string) *pipeline.Descriptor {
	settings := pipeline.NewSettings()
	settings.Set("level", &pipeline.Setting{Value: 1.0, Min: 0, Max: 4, Step: 0.05})
	return &pipeline.Descriptor{
		File:     file,
		Name:     file,
		Settings: settings,
		Mappings: map[string]pipeline.TypeCode{"level": pipeline.TypeFloat},
		Callbacks: pipeline.Callbacks{
			OnFrameProcess: func(f *frame.Frame, w, h, n int) (*frame.Frame, error) {
				*trace = append(*trace, file+":process")
				return f, nil
			},
			OnLoad: func() error {
				*trace = append(*trace, file+":load")
				return nil
			},
			OnUnload: func() error {
				*trace = append(*trace, file+":unload")
				return nil
			},
		},
	}
}

func newTestSession(t *testing.T, descriptors map[string]*pipeline.Descriptor, runtime *pipeline.RuntimeData) *Session {
	t.Helper()
	engine := pipeline.NewEngine(descriptors, zap.NewNop())
	return New(engine, runtime, t.TempDir(), zap.NewNop())
}

func TestSessionIDsAreUnique(t *testing.T) {
	runtime := pipeline.NewRuntimeData(nil)
	a := newTestSession(t, map[string]*pipeline.Descriptor{}, runtime)
	b := newTestSession(t, map[string]*pipeline.Descriptor{}, pipeline.NewRuntimeData(nil))
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestOnLoadPrecedesFirstProcess(t *testing.T) {
	var trace []string
	descriptors := map[string]*pipeline.Descriptor{
		"a.lua": traceDescriptor("a.lua", &trace),
	}
	runtime := pipeline.NewRuntimeData([]string{"a.lua"})
	sess := newTestSession(t, descriptors, runtime)

	require.NoError(t, sess.SetActive("a.lua", true))
	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.lua:load", "a.lua:process"}, trace)

	// Deltas are consumed once: no second on_load.
	trace = trace[:0]
	_, err = sess.ProcessFrame(frame.New(2, 2, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua:process"}, trace)
}

func TestDeactivationDrainsUnloadBeforeNextFrame(t *testing.T) {
	var trace []string
	descriptors := map[string]*pipeline.Descriptor{
		"a.lua": traceDescriptor("a.lua", &trace),
	}
	runtime := pipeline.NewRuntimeData([]string{"a.lua"})
	sess := newTestSession(t, descriptors, runtime)

	require.NoError(t, sess.SetActive("a.lua", true))
	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)

	require.NoError(t, sess.SetActive("a.lua", false))
	trace = trace[:0]
	_, err = sess.ProcessFrame(frame.New(2, 2, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua:unload"}, trace, "unload drained, pipeline no longer runs")
}

func TestSetActiveIsIdempotent(t *testing.T) {
	var trace []string
	descriptors := map[string]*pipeline.Descriptor{
		"a.lua": traceDescriptor("a.lua", &trace),
	}
	sess := newTestSession(t, descriptors, pipeline.NewRuntimeData([]string{"a.lua"}))

	require.NoError(t, sess.SetActive("a.lua", true))
	require.NoError(t, sess.SetActive("a.lua", true))
	_, active := sess.Runtime()
	assert.Equal(t, []string{"a.lua"}, active)

	require.NoError(t, sess.SetActive("a.lua", false))
	require.NoError(t, sess.SetActive("a.lua", false))
	_, active = sess.Runtime()
	assert.Empty(t, active)

	assert.ErrorIs(t, sess.SetActive("ghost.lua", true), pipeline.ErrPipelineNotFound)
}

func TestQueuedChangesApplyBeforeFrame(t *testing.T) {
	var trace []string
	d := traceDescriptor("a.lua", &trace)
	var hookOrder []string
	d.Callbacks.BeforeChangeSettings = func(key string, value float64) error {
		hookOrder = append(hookOrder, "before")
		return nil
	}
	d.Callbacks.AfterChangeSettings = func(key string, value float64) error {
		hookOrder = append(hookOrder, "after")
		return nil
	}
	d.Callbacks.OnFrameProcess = func(f *frame.Frame, w, h, n int) (*frame.Frame, error) {
		hookOrder = append(hookOrder, "process")
		return f, nil
	}

	sess := newTestSession(t, map[string]*pipeline.Descriptor{"a.lua": d}, pipeline.NewRuntimeData([]string{"a.lua"}))
	require.NoError(t, sess.SetActive("a.lua", true))
	sess.QueueChange("a.lua", "level", 2.5)

	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"before", "after", "process"}, hookOrder,
		"settings change commits before the frame is admitted")
	st, _ := d.Settings.Get("level")
	assert.Equal(t, 2.5, st.Value)
}

func TestQueuedChangeForInactivePipelineSkipsHooks(t *testing.T) {
	var trace []string
	d := traceDescriptor("a.lua", &trace)
	var hooks int
	d.Callbacks.BeforeChangeSettings = func(string, float64) error { hooks++; return nil }
	d.Callbacks.AfterChangeSettings = func(string, float64) error { hooks++; return nil }

	sess := newTestSession(t, map[string]*pipeline.Descriptor{"a.lua": d}, pipeline.NewRuntimeData([]string{"a.lua"}))
	sess.QueueChange("a.lua", "level", 3.0)

	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)

	assert.Zero(t, hooks)
	st, _ := d.Settings.Get("level")
	assert.Equal(t, 3.0, st.Value)
}

func TestReorder(t *testing.T) {
	var trace []string
	descriptors := map[string]*pipeline.Descriptor{
		"a.lua": traceDescriptor("a.lua", &trace),
		"b.lua": traceDescriptor("b.lua", &trace),
	}
	sess := newTestSession(t, descriptors, pipeline.NewRuntimeData([]string{"a.lua", "b.lua"}))
	require.NoError(t, sess.SetActive("a.lua", true))
	require.NoError(t, sess.SetActive("b.lua", true))

	require.NoError(t, sess.Reorder([]string{"b.lua", "a.lua"}))

	trace = trace[:0]
	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a.lua:load", "b.lua:load",
		"b.lua:process", "a.lua:process",
	}, trace, "active list order drives execution order")

	assert.Error(t, sess.Reorder([]string{"b.lua"}), "must cover every active pipeline")
	assert.Error(t, sess.Reorder([]string{"b.lua", "ghost.lua"}))
}

func TestSaveAndReload(t *testing.T) {
	var trace []string
	d := traceDescriptor("a.lua", &trace)
	dir := t.TempDir()

	engine := pipeline.NewEngine(map[string]*pipeline.Descriptor{"a.lua": d}, zap.NewNop())
	sess := New(engine, pipeline.NewRuntimeData([]string{"a.lua"}), dir, zap.NewNop())

	require.NoError(t, sess.SetActive("a.lua", true))
	sess.QueueChange("a.lua", "level", 2.0)
	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)
	require.NoError(t, sess.Save())

	runtime, persisted := pipeline.LoadSettings(map[string]*pipeline.Descriptor{"a.lua": d}, dir)
	require.True(t, persisted)
	assert.Equal(t, []string{"a.lua"}, runtime.Active)
	st, _ := d.Settings.Get("level")
	assert.Equal(t, 2.0, st.Value)
}

func TestCloseUnloadsActive(t *testing.T) {
	var trace []string
	d := traceDescriptor("a.lua", &trace)
	sess := newTestSession(t, map[string]*pipeline.Descriptor{"a.lua": d}, pipeline.NewRuntimeData([]string{"a.lua"}))

	require.NoError(t, sess.SetActive("a.lua", true))
	_, err := sess.ProcessFrame(frame.New(2, 2, 1), 0)
	require.NoError(t, err)

	trace = trace[:0]
	require.NoError(t, sess.Close())
	assert.Equal(t, []string{"a.lua:unload"}, trace)
}
