// Package viz draws chaos maps in the terminal.
//
// [Canvas] renders scan samples as colored half-block cells, two pixels
// per cell. [Preview] is a Bubble Tea program that scans the terminal
// surface at low resolution in the background and repaints as batches
// land.
//
// # Key Bindings
//
//	Space - Start/stop the live preview
//	Tab   - Select the next parameter
//	Up/K  - Increase the selected parameter by 5%
//	Down/J - Decrease it by 5%
//	R     - Restore default parameters
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Any parameter change or terminal resize discards the running scan and
// starts again from the first sample.
package viz
