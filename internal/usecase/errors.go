package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrSourceMissing marks an input collection that is entirely absent
	// or unreadable. It is fatal for a pipeline run: no partial unified
	// output is emitted. Gaps inside a present collection are not this
	// error; they degrade per player instead.
	ErrSourceMissing = errors.New("input source missing")
)
