package model

import "errors"

var (
	// ErrInvalidArgument indicates bad caller input. It is never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidTransition indicates an attempt to move a task along a
	// forbidden edge of the status graph.
	ErrInvalidTransition = errors.New("invalid status transition")
)
