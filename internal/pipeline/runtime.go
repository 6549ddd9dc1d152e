package pipeline

import "sort"

// RuntimeData holds a session's pipeline runtime state.
//
// Order is the total processing order over every loaded pipeline, active or
// not; it is used for display and deterministic re-derivation. Active is the
// subsequence actually invoked per frame — its own ordering, not Order's, is
// authoritative for execution order.
//
// ToLoad and ToUnload are deltas: pipelines whose on_load/on_unload must run
// before the next frame is admitted. They are consumed once and cleared by
// the caller. Changes maps pipeline file to pending setting edits (key ->
// transported value) not yet applied.
type RuntimeData struct {
	Order    []string
	Active   []string
	ToLoad   []string
	ToUnload []string
	Changes  map[string]map[string]float64
}

// NewRuntimeData returns runtime state for the given discovery order with
// nothing active and no pending deltas.
func NewRuntimeData(order []string) *RuntimeData {
	return &RuntimeData{
		Order:    order,
		Active:   []string{},
		ToLoad:   []string{},
		ToUnload: []string{},
		Changes:  make(map[string]map[string]float64),
	}
}

// IsActive reports whether the pipeline file is in the active list.
func (r *RuntimeData) IsActive(file string) bool {
	for _, f := range r.Active {
		if f == file {
			return true
		}
	}
	return false
}

// QueueChange records a pending settings edit for a pipeline.
func (r *RuntimeData) QueueChange(file, key string, value float64) {
	if r.Changes == nil {
		r.Changes = make(map[string]map[string]float64)
	}
	if r.Changes[file] == nil {
		r.Changes[file] = make(map[string]float64)
	}
	r.Changes[file][key] = value
}

// discoveryOrder derives a deterministic discovery order from a descriptor
// set. Plugin files are loaded in directory-listing order, so sorted keys
// reproduce it.
func discoveryOrder(descriptors map[string]*Descriptor) []string {
	order := make([]string, 0, len(descriptors))
	for file := range descriptors {
		order = append(order, file)
	}
	sort.Strings(order)
	return order
}
