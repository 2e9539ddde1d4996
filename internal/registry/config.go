package registry

// Logger is a black-hole-default logging seam: package consumers assign
// these to wire in a real backend (see internal/zlog).
type Logger func(string)

var (
	Debug Logger = func(string) {}
	Info  Logger = func(string) {}
	Warn  Logger = func(string) {}
)
