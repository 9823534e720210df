// Package view provides the enclosing rendering context block helpers run in.
//
// A Context owns the live output stream of a single render pass together
// with a stack of capture buffers. Concat emits into whatever sink is on top
// of the stack and Capture pushes a fresh buffer for the duration of a
// callback, so nested captures compose without touching the real output.
// Ambient helper functions (ContentTag, LabelTag, Truncate, Sanitize and any
// function registered with WithHelperFunc) are reachable from the context and,
// through blockhelper.Base, from every helper object.
package view
