// Package vision provides the HTTP client for the slip vision/analytics service.
package vision

import "errors"

var (
	// ErrServiceUnavailable indicates the vision service is unreachable
	ErrServiceUnavailable = errors.New("vision service unavailable")

	// ErrExtractionFailed indicates the service could not read the slip
	ErrExtractionFailed = errors.New("slip extraction failed")

	// ErrMalformedResponse indicates the service returned a payload that
	// failed boundary validation. Kept distinct from transport errors so
	// callers never propagate undefined-field access.
	ErrMalformedResponse = errors.New("malformed response from vision service")

	// ErrUnauthorized indicates the API key was rejected
	ErrUnauthorized = errors.New("vision service rejected credentials")

	// ErrNoFramesProvided indicates an extraction request with no images
	ErrNoFramesProvided = errors.New("at least one frame is required")
)
