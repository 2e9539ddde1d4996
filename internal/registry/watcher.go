package registry

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the registry's backing files and reloads on change,
// satisfying spec section 3's "file-watch or next lookup — either is
// conformant" by choosing file-watch. It blocks until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("registry: creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range []string{r.paths.Endpoints, r.paths.Zones, r.paths.Routes} {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("registry: watching %s: %w", p, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			Debug(fmt.Sprintf("registry: change detected on %s", event.Name))
			_ = r.Reload()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			Warn(fmt.Sprintf("registry: watcher error: %v", watchErr))
		}
	}
}
