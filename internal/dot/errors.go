package dot

import "errors"

var (
	// ErrAuthFailure is raised when a connection presents no usable client
	// identity; the connection is closed silently (spec section 7).
	ErrAuthFailure = errors.New("dot: client identity not recognised")

	// ErrMalformedQuery is raised when a DNS message cannot be unpacked.
	ErrMalformedQuery = errors.New("dot: malformed dns message")

	// ErrUpstreamFailure is raised when the DoH fallback errors or times out.
	ErrUpstreamFailure = errors.New("dot: upstream doh exchange failed")

	// ErrEmptyQuery is raised when a message carries no question section.
	ErrEmptyQuery = errors.New("dot: query has no question")
)
