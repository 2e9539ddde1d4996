// Package zlog builds the zap logger used to back the package-level
// Logger hook variables (registry.Debug/Info/Warn, dot.Query/Debug/Info/
// Warn, proxy.Debug/Info/Warn) with a real structured sink instead of
// their black-hole defaults.
package zlog

import "go.uber.org/zap"

// New builds a zap logger; development=true gets human-readable console
// output, false gets JSON suited to log aggregation.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Func returns a func(string) bound to the named component at the given
// level, suitable for assigning directly into a package's Logger hook
// variable.
func Func(logger *zap.Logger, component, level string) func(string) {
	named := logger.Named(component).Sugar()
	switch level {
	case "debug":
		return func(msg string) { named.Debug(msg) }
	case "warn":
		return func(msg string) { named.Warn(msg) }
	default:
		return func(msg string) { named.Info(msg) }
	}
}
