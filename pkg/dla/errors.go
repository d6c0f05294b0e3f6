package dla

import "errors"

var (
	// ErrInvalidArgument reports a non-positive radius, a degenerate spawner or
	// an out-of-range tunable.
	ErrInvalidArgument = errors.New("dla: invalid argument")
	// ErrAlreadyStuck reports a second StickTo on the same particle.
	ErrAlreadyStuck = errors.New("dla: particle already stuck")
)
