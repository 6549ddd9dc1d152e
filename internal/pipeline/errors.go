package pipeline

import (
	"errors"
	"fmt"

	"github.com/framepipe/framepipe/internal/frame"
)

// Pipeline runtime errors.
var (
	// ErrPipelinesDirNotFound is returned when no candidate pipelines
	// directory exists. This is fatal to startup.
	ErrPipelinesDirNotFound = errors.New("pipelines directory not found")

	// ErrMissingFrameProcess is returned when a plugin file does not define
	// the mandatory on_frame_process function.
	ErrMissingFrameProcess = errors.New("invalid pipeline file: missing on_frame_process(frame, width, height, frame_num) -> frame")

	// ErrFrameShapeChanged is the sentinel matched by errors.Is for shape
	// violations. The concrete error is always a *ShapeError.
	ErrFrameShapeChanged = errors.New("frame shape changed during processing")

	// ErrUnknownSetting is returned when a settings operation names a key
	// the plugin does not declare.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrPipelineNotFound is returned when an operation names a pipeline
	// that is not loaded.
	ErrPipelineNotFound = errors.New("pipeline not found")
)

// ShapeError reports a frame shape violation with attribution to the
// offending pipeline. It aborts the remainder of the chain for that frame.
type ShapeError struct {
	File string
	Want frame.Shape
	Got  frame.Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("pipeline %s: frame shape changed during processing: %s -> %s", e.File, e.Want, e.Got)
}

// Is reports whether target is ErrFrameShapeChanged.
func (e *ShapeError) Is(target error) bool {
	return target == ErrFrameShapeChanged
}
