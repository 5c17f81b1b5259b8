// Package visualizer tracks CNC job progress on a toolpath color buffer.
//
// # Overview
//
// A toolpath producer (see internal/toolpath) turns a G-code program into a
// flat vertex buffer, an initial per-vertex color buffer and a frame index
// mapping every G-code line to the vertex where its segment starts. The
// Tracker owns the color buffer for the duration of a job and repaints it as
// the controller reports progress:
//
//   - lines received by the controller are highlighted ahead of the machine
//   - lines the machine has executed fade to the cut color
//   - rewinding (restarting a job) restores the original colors exactly
//
// Every update returns a DirtyRange so the renderer re-uploads only the
// components that changed; toolpaths of 10^5 to 10^6 vertices are common.
//
// # Quick Start
//
//	tr := visualizer.NewTracker()
//	if err := tr.Render(geom, nil); err != nil {
//	    return err
//	}
//
//	// controller acknowledged 120 lines, machine is executing line 97
//	d1 := tr.SetFrameIndex(120)
//	d2 := tr.GreyOutLines(97)
//	upload(tr.Colors().Slice(d1.Union(d2)))
//
// # Rotary jobs
//
// Jobs that drive an A axis are tracked with a rolling window of recent
// steps instead of a per-line trail, so the grey boundary advances smoothly
// with continuous rotary motion. See WithWindowSize.
//
// # Concurrency
//
// A Tracker is single-threaded. The session package runs one on its own
// goroutine and feeds it status events over a channel.
package visualizer
