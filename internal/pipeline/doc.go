// Package pipeline implements the frame-processing plugin runtime: plugin
// discovery and loading, the descriptor and settings model, the settings
// type codec, reconciliation of persisted configuration against freshly
// discovered plugins, and the ordered execution engine with its shape
// invariant.
//
// # Plugins
//
// A pipeline plugin is a single Lua file exposing, at minimum:
//
//	function on_frame_process(frame, width, height, frame_num)
//	    return frame
//	end
//
// and optionally the globals name, version, desc, a settings table of
//
//	settings = {
//	    Level = {1.0, 0.0, 4.0, 0.05, "Gamma correction level."},
//	}
//
// entries ({default, min, max, step, tooltip}), plus the hooks on_load,
// on_unload, before_change_settings and after_change_settings. Every plugin
// runs in its own interpreter state, so same-named top-level symbols in two
// plugins never collide.
//
// # Data flow
//
// Loader -> Descriptors -> LoadSettings (merging the persisted
// configuration) -> Engine (per frame) -> SaveSettings (on settings change
// or shutdown).
//
// The base filename of a plugin is its identity everywhere: processing
// order, active-set membership, and the persisted configuration all key on
// it. The shape invariant is the one propagated per-frame condition: a
// plugin returning a buffer of a different shape aborts that frame's chain
// with a *ShapeError naming the plugin.
package pipeline
