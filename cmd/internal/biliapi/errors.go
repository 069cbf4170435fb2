package biliapi

import "errors"

// ErrDecode is returned when the outer response envelope is malformed.
// Unlike a single bad payload, this is fatal to the whole run.
var ErrDecode = errors.New("malformed response envelope")
