package errors

import (
	"errors"
)

// Core error values shared by the store, executor and protocol layers.
// Callers wrap these with %w and classify via errors.Is.
var (
	// ErrFormat is returned when command text is malformed
	ErrFormat = errors.New("incorrect command format")

	// ErrNotFound is returned when a database, table or column reference is unknown
	ErrNotFound = errors.New("object not found")

	// ErrConflict is returned when a create collides with an existing qualified name
	ErrConflict = errors.New("object already exists")

	// ErrCapacity is returned when a registry or column-count limit is exceeded
	ErrCapacity = errors.New("capacity exceeded")

	// ErrIO is returned when a CSV read or write fails
	ErrIO = errors.New("i/o failure")

	// ErrUnsupported is returned for operators the executor does not recognize
	ErrUnsupported = errors.New("unsupported command")

	// ErrFrameTooLarge is returned when a framed message exceeds maximum size
	ErrFrameTooLarge = errors.New("frame size exceeds maximum")

	// ErrNoHandle is returned when a fetch references a handle the session never stored
	ErrNoHandle = errors.New("handle not found in session")
)
