// Package viz replays a computed trajectory in the terminal.
//
// The playback model is a Bubble Tea program: a header with the scenario
// name and simulated time, a line chart of every species up to the
// playhead, and a sparkline per species.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	+/-   - Change playback speed
//	[/]   - Step one frame back/forward
//	R     - Restart from the first sample
//	Q     - Quit
package viz
