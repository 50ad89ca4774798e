// Package text is the small host-editor model the completion engine runs
// against: a buffer producing immutable, versioned snapshots, edge-inclusive
// tracking spans that follow edits across versions, and a caret.
//
// Offsets are byte offsets into the snapshot text. A Span is half open,
// [Start, End).
package text
