package proxy

import "time"

// Logger is the same black-hole-default logging seam used by the dot
// package.
type Logger func(string)

var (
	Debug Logger = func(string) {}
	Info  Logger = func(string) {}
	Warn  Logger = func(string) {}
)

const (
	// PeekMaxBytes bounds how much cleartext the proxy buffers before it
	// knows the destination (spec section 4.3/9: "a deliberate limit").
	PeekMaxBytes = 8 * 1024

	// PeekTimeout is the hard deadline on the peek phase.
	PeekTimeout = 5 * time.Second

	// DialTimeout is the hard deadline on the backend connect.
	DialTimeout = 5 * time.Second

	// SpliceBufferSize is the buffer size used in each direction of the
	// splice phase.
	SpliceBufferSize = 8 * 1024
)

// BadGatewayResponse is the single fixed application-layer error this
// proxy ever emits (spec section 6/7): no protocol rewriting, no detail
// leakage.
const BadGatewayResponse = "HTTP/1.1 502 Bad Gateway\r\n\r\nNo route to service\r\n"
