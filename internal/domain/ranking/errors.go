package ranking

import "errors"

// Sentinel kinds for index lookups.
var (
	ErrNotFound     = errors.New("athlete not in index")
	ErrInvalidLimit = errors.New("invalid index limit")
)
