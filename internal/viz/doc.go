// Package viz renders a running ensemble in the terminal with Bubble Tea.
//
//   - [Model]: steps an ensemble every frame and draws a rotatable braille
//     projection next to an energy drift chart.
//   - [App]: preset picker that builds an ensemble and hands it to Model.
//   - [Canvas]: braille sub-pixel canvas.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial bodies
//	. ,   - Double/halve steps per frame
//	x y z - Rotate (shift reverses)
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[ ]   - Time travel (rewind/forward)
//
// # Recording
//
// G toggles recording; frames are written to gravsim.gif in the current
// directory when recording stops.
package viz
