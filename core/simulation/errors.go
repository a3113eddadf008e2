package simulation

import "errors"

var (
	// ErrInvalidInterval is returned when the interval is not a positive
	// divisor of 60.
	ErrInvalidInterval = errors.New("interval must be a positive divisor of 60")
	// ErrInvalidTimezone is returned when the timezone cannot be loaded.
	ErrInvalidTimezone = errors.New("unknown timezone")
	// ErrInvalidParameters is returned when run parameters are unusable.
	ErrInvalidParameters = errors.New("invalid simulation parameters")
)
