// Package session serializes frame processing and settings mutation for one
// attached frame source.
//
// The pipeline runtime is logically single-threaded per session: exactly one
// execution path drives the chain for a given session, and settings edits
// against the same session's plugins are serialized with frame processing
// under the session mutex. Independent sessions run fully in parallel,
// sharing only the read-only descriptor table built at load time.
package session

import (
	"fmt"
	"sync"

	"github.com/framepipe/framepipe/internal/frame"
	"github.com/framepipe/framepipe/internal/pipeline"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session drives the execution chain for one frame source.
type Session struct {
	id     uuid.UUID
	logger *zap.Logger

	mu      sync.Mutex
	engine  *pipeline.Engine
	runtime *pipeline.RuntimeData
	dir     string
}

// New creates a session over the given engine and reconciled runtime state.
// dir is where the persisted configuration is saved.
func New(engine *pipeline.Engine, runtime *pipeline.RuntimeData, dir string, logger *zap.Logger) *Session {
	id := uuid.New()
	return &Session{
		id:      id,
		logger:  logger.With(zap.String("session", id.String())),
		engine:  engine,
		runtime: runtime,
		dir:     dir,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// ProcessFrame admits one frame to the execution chain.
//
// Before the chain runs, pending unload and load deltas are fully drained
// and queued settings changes are applied, guaranteeing that a pipeline's
// on_load always precedes its first on_frame_process and that a settings
// change never races its own frame processing.
func (s *Session) ProcessFrame(f *frame.Frame, frameNum int) (*frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drainDeltas()
	s.applyChanges()

	out, err := s.engine.Process(f, f.Width, f.Height, frameNum, s.runtime.Active)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// drainDeltas invokes on_unload then on_load for the pending delta lists
// and clears them. Hook failures are logged; the pipeline stays in its new
// state regardless.
func (s *Session) drainDeltas() {
	for _, file := range s.runtime.ToUnload {
		if d, ok := s.engine.Descriptor(file); ok {
			if err := d.Unload(); err != nil {
				s.logger.Error("on_unload failed", zap.String("pipeline", file), zap.Error(err))
			}
		}
	}
	s.runtime.ToUnload = s.runtime.ToUnload[:0]

	for _, file := range s.runtime.ToLoad {
		if d, ok := s.engine.Descriptor(file); ok {
			if err := d.Load(); err != nil {
				s.logger.Error("on_load failed", zap.String("pipeline", file), zap.Error(err))
			}
		}
	}
	s.runtime.ToLoad = s.runtime.ToLoad[:0]
}

// applyChanges commits queued settings edits through the engine.
func (s *Session) applyChanges() {
	for file, edits := range s.runtime.Changes {
		enabled := s.runtime.IsActive(file)
		for key, value := range edits {
			if err := s.engine.ChangeSettings(file, enabled, key, value); err != nil {
				s.logger.Error("settings change failed",
					zap.String("pipeline", file),
					zap.String("key", key),
					zap.Error(err))
			}
		}
		delete(s.runtime.Changes, file)
	}
}

// QueueChange records a settings edit to be applied before the next frame.
func (s *Session) QueueChange(file, key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runtime.QueueChange(file, key, value)
}

// SetActive activates or deactivates a pipeline. Activation appends to the
// end of the active list and schedules on_load; deactivation removes it and
// schedules on_unload. Takes effect on the next frame, never on an in-flight
// one.
func (s *Session) SetActive(file string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.engine.Descriptor(file); !ok {
		return fmt.Errorf("%w: %s", pipeline.ErrPipelineNotFound, file)
	}

	if active {
		if s.runtime.IsActive(file) {
			return nil
		}
		s.runtime.Active = append(s.runtime.Active, file)
		s.runtime.ToLoad = append(s.runtime.ToLoad, file)
		return nil
	}

	if !s.runtime.IsActive(file) {
		return nil
	}
	s.runtime.Active = remove(s.runtime.Active, file)
	s.runtime.ToUnload = append(s.runtime.ToUnload, file)
	return nil
}

// Reorder replaces the active execution order. Every entry must be active
// already; activation state is not changed by reordering.
func (s *Session) Reorder(active []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(active) != len(s.runtime.Active) {
		return fmt.Errorf("reorder: want %d pipelines, got %d", len(s.runtime.Active), len(active))
	}
	for _, file := range active {
		if !s.runtime.IsActive(file) {
			return fmt.Errorf("reorder: %w: %s", pipeline.ErrPipelineNotFound, file)
		}
	}
	s.runtime.Active = append([]string{}, active...)
	return nil
}

// Runtime returns a snapshot of order and active list for display.
func (s *Session) Runtime() (order, active []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.runtime.Order...), append([]string{}, s.runtime.Active...)
}

// Save persists the current order, active set, and settings values.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pipeline.SaveSettings(s.engine.Descriptors(), s.runtime.Order, s.runtime.Active, s.dir)
}

// Close deactivates every active pipeline, drains the resulting unload
// deltas, and persists state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.runtime.Active {
		if d, ok := s.engine.Descriptor(file); ok {
			if err := d.Unload(); err != nil {
				s.logger.Error("on_unload failed", zap.String("pipeline", file), zap.Error(err))
			}
		}
	}
	return pipeline.SaveSettings(s.engine.Descriptors(), s.runtime.Order, s.runtime.Active, s.dir)
}

func remove(list []string, file string) []string {
	out := list[:0]
	for _, f := range list {
		if f != file {
			out = append(out, f)
		}
	}
	return out
}
