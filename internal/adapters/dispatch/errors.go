package dispatch

import "errors"

// Sentinel kinds for argument errors.
var (
	ErrMissingArgument = errors.New("missing argument")
	ErrBadArgument     = errors.New("bad argument")
)
