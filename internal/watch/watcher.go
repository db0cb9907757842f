package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"schemasync/internal/metadata"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange after entity definition files in Dir change.
// Editors often emit several events per save, so events are coalesced until
// Debounce has passed without a new one.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	OnChange func(ctx context.Context)
}

// Run blocks until ctx is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	log.Printf("Watching %s for definition changes", w.Dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARN: watch %s: %v", w.Dir, err)
		case <-timer.C:
			if w.OnChange != nil {
				w.OnChange(ctx)
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !metadata.IsDefinitionFile(filepath.Base(ev.Name)) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
