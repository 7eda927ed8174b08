package feed

import "errors"

var (
	ErrFeedNotFound     = errors.New("feed not found")
	ErrForbidden        = errors.New("feed belongs to another user")
	ErrInvalidFeed      = errors.New("invalid feed")
	ErrMaxDepthExceeded = errors.New("maximum folder depth exceeded")
)
