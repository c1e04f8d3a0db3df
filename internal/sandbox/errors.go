package sandbox

import "errors"

var (
	// ErrInvalidDimensions indicates a non-positive or non-finite size.
	ErrInvalidDimensions = errors.New("sandbox: dimensions must be positive and finite")

	// ErrInvalidPosition indicates a position with NaN or Inf components.
	ErrInvalidPosition = errors.New("sandbox: position must be finite")

	// ErrAlreadyTracked indicates a mesh or body that the registry already holds.
	ErrAlreadyTracked = errors.New("sandbox: object already tracked")

	// ErrInvalidConfig indicates settings the frame loop cannot run with.
	ErrInvalidConfig = errors.New("sandbox: invalid config")
)
