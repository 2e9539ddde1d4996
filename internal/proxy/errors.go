package proxy

import "errors"

var (
	// ErrNoHostHeader is raised when the peek buffer never yields an
	// HTTP-style Host header within the peek window.
	ErrNoHostHeader = errors.New("proxy: no host header found in peek buffer")

	// ErrBackendDial is raised when connecting to the resolved backend
	// fails or times out.
	ErrBackendDial = errors.New("proxy: backend dial failed")
)
