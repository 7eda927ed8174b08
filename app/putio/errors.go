package putio

import "errors"

var (
	// ErrUnauthorized is returned when no usable access token is available or
	// put.io rejects the one supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when put.io reports that a file or folder does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream covers transport failures, unexpected statuses and malformed responses.
	ErrUpstream = errors.New("upstream error")
)
