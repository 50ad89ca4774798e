package completion

import "errors"

var (
	// ErrFilterCountMismatch is reported when an ItemManager returns a
	// different number of filters than it was given.
	ErrFilterCountMismatch = errors.New("item manager changed the number of filters")
	// ErrNotOwner is reported when a UI-only operation runs elsewhere.
	ErrNotOwner = errors.New("called off the UI goroutine")
)
