package registry

import (
	"fmt"
	"sync/atomic"
)

// Registry owns the current Snapshot and publishes new ones atomically,
// per spec section 9's explicit-value, snapshot-swap model: the program
// entry point owns a *Registry and passes it by reference into handlers;
// handlers take Current() once and keep it for their lifetime.
type Registry struct {
	paths   Paths
	current atomic.Pointer[Snapshot]
}

// New loads an initial snapshot from paths and returns a ready Registry.
func New(paths Paths) (*Registry, error) {
	snap, err := Load(paths)
	if err != nil {
		return nil, err
	}
	r := &Registry{paths: paths}
	r.current.Store(snap)
	return r, nil
}

// Current returns the registry's current snapshot. Safe for concurrent use.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Reload re-reads the backing files and swaps in the new snapshot. On a
// malformed reload the previous snapshot is retained and the error is
// returned for the caller to log (spec section 3's ConfigError policy).
func (r *Registry) Reload() error {
	snap, err := Load(r.paths)
	if err != nil {
		Warn(fmt.Sprintf("registry: reload failed, retaining previous snapshot: %v", err))
		return err
	}
	r.current.Store(snap)
	Info("registry: reloaded snapshot")
	return nil
}
