package scoring

import "errors"

// Sentinel kinds for rating engine errors.
var (
	ErrNoUsableInput   = errors.New("no usable input")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoCategories    = errors.New("no ratable categories")
)
