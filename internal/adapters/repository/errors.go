package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("item not found")
	ErrBadExpression = errors.New("bad update expression")
)
