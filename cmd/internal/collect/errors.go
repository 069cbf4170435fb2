package collect

import "errors"

var (
	// ErrInconsistentPage is returned when a page asserts more history but
	// carries no usable bounds to advance from. Aborting beats looping.
	ErrInconsistentPage = errors.New("page asserts more history without usable bounds")

	// ErrCursorStuck is returned when advancing would not strictly decrease
	// the cursor, which would re-fetch messages forever.
	ErrCursorStuck = errors.New("cursor did not strictly decrease")
)
