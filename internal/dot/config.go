package dot

import "time"

// Logger is a black-hole-default logging seam: callers assign a real
// backend into Query/Debug/Info/Warn below, and until they do, log lines
// are silently dropped.
type Logger func(string)

var (
	Query Logger = func(string) {}
	Debug Logger = func(string) {}
	Info  Logger = func(string) {}
	Warn  Logger = func(string) {}
)

const (
	// DefaultAnswerTTL is the TTL spec section 4.2 mandates for every
	// authoritative answer this resolver emits.
	DefaultAnswerTTL = uint32(60)

	// DefaultDoHTimeout bounds the single upstream DoH exchange, per
	// spec section 5.
	DefaultDoHTimeout = 5 * time.Second
)
