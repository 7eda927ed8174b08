package api

import (
	"errors"
	"net/http"

	"github.com/lysyi3m/putcast/app/feed"
	"github.com/lysyi3m/putcast/app/putio"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, putio.ErrUnauthorized), errors.Is(err, feed.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, feed.ErrFeedNotFound), errors.Is(err, putio.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, feed.ErrInvalidFeed):
		return http.StatusBadRequest
	case errors.Is(err, putio.ErrUpstream), errors.Is(err, feed.ErrMaxDepthExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
