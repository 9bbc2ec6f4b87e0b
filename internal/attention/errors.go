package attention

import "github.com/pkg/errors"

var (
	// ErrUnsupportedVariant is returned for an unknown score type or layer kind.
	ErrUnsupportedVariant = errors.New("unsupported attention variant")

	// ErrDimensionMismatch is returned when tensor ranks, widths or lengths
	// do not fit together, or when an injected parameter set was built for
	// different dimensions.
	ErrDimensionMismatch = errors.New("attention dimension mismatch")

	// ErrNotRegistered is returned by a Registry for an unknown ID.
	ErrNotRegistered = errors.New("parameter set not registered")
)
