package feed

import "errors"

var (
	// ErrMissingColumn is returned when a mandatory column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadRow marks a row that could not be parsed. Such rows are skipped.
	ErrBadRow = errors.New("bad row")
)
