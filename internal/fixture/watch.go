package fixture

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the source whenever its file changes until ctx is done.
// onReload receives the result of each reload. The parent directory is
// watched so editors that replace the file by rename are picked up.
func (s *Source) Watch(ctx context.Context, debounce time.Duration, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	debouncer := NewDebouncer(debounce)
	target := filepath.Clean(s.path)

	go func() {
		defer watcher.Close()
		defer debouncer.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				debouncer.Trigger(func() {
					err := s.Reload()
					if onReload != nil {
						onReload(err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onReload != nil {
					onReload(err)
				}
			}
		}
	}()
	return nil
}
