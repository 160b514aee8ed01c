package domain

import "errors"

// Sentinel errors shared across layers. Wrap them with fmt.Errorf and
// test with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput covers caller mistakes: bad offsets or ranges,
	// chunker settings that cannot work, malformed files.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage marks a persistence failure. A mutation that returns it
	// has been rolled back.
	ErrStorage = errors.New("storage error")

	// ErrUnsupportedType is returned for files no normaliser accepts.
	ErrUnsupportedType = errors.New("unsupported type")
)
