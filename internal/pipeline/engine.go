package pipeline

import (
	"fmt"

	"github.com/framepipe/framepipe/internal/frame"
	"go.uber.org/zap"
)

// Engine executes the ordered chain of active pipelines over frames.
type Engine struct {
	descriptors map[string]*Descriptor
	logger      *zap.Logger
}

// NewEngine creates an execution engine over the given descriptor table.
// The table is treated as read-only and may be shared across engines.
func NewEngine(descriptors map[string]*Descriptor, logger *zap.Logger) *Engine {
	return &Engine{
		descriptors: descriptors,
		logger:      logger,
	}
}

// Descriptor returns the descriptor for a pipeline file.
func (e *Engine) Descriptor(file string) (*Descriptor, bool) {
	d, ok := e.descriptors[file]
	return d, ok
}

// Descriptors returns the descriptor table.
func (e *Engine) Descriptors() map[string]*Descriptor {
	return e.descriptors
}

// Process runs the frame through every pipeline in active, in list order,
// feeding each pipeline's output to the next.
//
// The frame's shape must be identical before and after each individual
// invocation; a mismatch aborts the remaining chain with a *ShapeError
// naming the offending pipeline, and no partial result is returned.
func (e *Engine) Process(f *frame.Frame, width, height, frameNum int, active []string) (*frame.Frame, error) {
	for _, file := range active {
		d, ok := e.descriptors[file]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPipelineNotFound, file)
		}
		in := f.Shape()
		out, err := d.Callbacks.OnFrameProcess(f, width, height, frameNum)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", file, err)
		}
		if got := out.Shape(); got != in {
			return nil, &ShapeError{File: file, Want: in, Got: got}
		}
		f = out
	}
	return f, nil
}

// ChangeSettings applies a settings change to a loaded pipeline. The
// enabled flag gates the before/after hooks: only active pipelines get to
// react to the change.
func (e *Engine) ChangeSettings(file string, enabled bool, key string, value float64) error {
	d, ok := e.descriptors[file]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPipelineNotFound, file)
	}
	return d.ChangeSettings(enabled, key, value)
}
