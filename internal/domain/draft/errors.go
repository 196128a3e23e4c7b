package draft

import "errors"

// Sentinel kinds for draft order errors. All of them are returned before any
// write reaches the store.
var (
	ErrPositionOutOfRange  = errors.New("target position out of range")
	ErrAthleteNotInOrder   = errors.New("athlete not in draft order")
	ErrConstraintViolation = errors.New("draft order constraint violation")
	ErrEmptyTeam           = errors.New("team has no draft order")
	ErrUnknownStatus       = errors.New("unknown athlete status")
)
