// Package viz draws a running simulation in the terminal with Bubble Tea.
//
//   - [Model]: live view that steps a [sim.Engine] on every tick
//   - [Menu]: preset picker that launches a live view
//   - [Canvas]: braille dot canvas used for the agent view
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Reset to the seeded state
//	Tab/S-Tab  - Select next/previous parameter
//	+/-        - Nudge the selected parameter
//	[/]        - Fewer/more steps per frame
//	V          - Toggle colour and agent views
//	T          - Cycle colour themes
//	G          - Toggle GIF recording
//	?          - Help overlay
//	Q          - Quit
package viz
