package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sitproject/sit/internal/debug"
)

// watchDebounceDefault applies when watch.debounce is unset or not positive.
const watchDebounceDefault = 500 * time.Millisecond

// watchItem calls refresh each time the item directory changes, once per
// burst of events. A sync writer creates a record directory and then fills
// it, so events are coalesced for debounce before refreshing. Returns when
// ctx is done or refresh fails.
func watchItem(ctx context.Context, dir string, debounce time.Duration, refresh func() error) error {
	if debounce <= 0 {
		debounce = watchDebounceDefault
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			debug.Logf("watch: %s %s\n", event.Op, event.Name)
			// New record directories are filled after they are created;
			// watch them too so their files reset the debounce.
			if event.Has(fsnotify.Create) {
				_ = watcher.Add(event.Name)
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Logf("watch: %v\n", err)

		case <-timer.C:
			pending = false
			if err := refresh(); err != nil {
				return err
			}
		}
	}
}
