package physics

import "errors"

var (
	// ErrNoShape indicates a body constructed without a collision shape.
	ErrNoShape = errors.New("physics: body has no shape")

	// ErrInvalidMass indicates a negative or non-finite mass.
	ErrInvalidMass = errors.New("physics: invalid mass")
)
