// Package watcher records backup files that appear in a profile's
// backup directory outside of koggi itself (cron jobs, other hosts
// syncing dumps, manual pg_dump runs) into the operation history.
package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/koggi-dev/koggi/internal/backup"
	"github.com/koggi-dev/koggi/internal/store"
)

// settleDelay is how long the watcher waits after a create event
// before stat'ing the file, so an in-flight write can land first.
const settleDelay = 200 * time.Millisecond

// Watcher observes one backup directory and records new backup files
// into the store with kind "external".
type Watcher struct {
	store   *store.Store
	profile string
	dir     string

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// New creates a watcher for the profile's backup directory. The
// directory is created when missing so fsnotify has something to
// attach to.
func New(st *store.Store, profile, dir string) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &Watcher{store: st, profile: profile, dir: dir}, nil
}

// Start begins watching. It returns once the fsnotify watch is
// registered; events are handled on a background goroutine until Stop.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to drain.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.record(ev.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: %v\n", err)
		}
	}
}

// record stats the new path and inserts a history row when it turns
// out to be a backup file.
func (w *Watcher) record(path string) {
	if !backup.IsBackupFile(path) {
		return
	}

	time.Sleep(settleDelay)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	op := store.Operation{
		Profile:   w.profile,
		Kind:      store.KindExternal,
		File:      path,
		SizeBytes: info.Size(),
		Status:    store.StatusOK,
	}
	if _, err := w.store.RecordOperation(op); err != nil {
		fmt.Fprintf(os.Stderr, "watcher: failed to record %s: %v\n", path, err)
	}
}
