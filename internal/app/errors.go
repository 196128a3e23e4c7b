package service

import "errors"

// Sentinel errors returned by Service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoFeeds    = errors.New("no feeds configured")
)
