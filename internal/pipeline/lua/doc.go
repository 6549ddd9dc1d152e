// Package lua wraps gopher-lua for the pipeline runtime.
//
// Every pipeline plugin runs in its own State: a separate Lua interpreter
// with its own global table, so two plugins never collide even when they
// define same-named top-level symbols. Plugins are trusted user code, so the
// standard libraries are available, with the exception of the package
// machinery (module loading must not escape the isolated state).
//
// The package also registers the frame userdata type and the global "fp"
// helper module that plugins use to allocate frames and read settings:
//
//	function on_frame_process(frame, width, height, frame_num)
//	    local amount = fp.read_value(settings, "Amount")
//	    for i = 1, frame:len() do
//	        frame:set(i, math.min(255, frame:get(i) + amount))
//	    end
//	    return frame
//	end
//
// All indices in the Lua frame API are 1-based.
package lua
