package client

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unchanged before Watch uploads it.
const DefaultSettle = 500 * time.Millisecond

// WatchResult reports one upload made by Watch.
type WatchResult struct {
	Path    string
	Dataset Dataset
	Err     error
}

// Watch uploads every CSV file created or rewritten in dir until ctx ends.
// Events for the same file are coalesced until it has been quiet for settle.
// It stops early when the session is no longer valid.
func (c *Client) Watch(ctx context.Context, dir string, settle time.Duration, report func(WatchResult)) error {
	if settle <= 0 {
		settle = DefaultSettle
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	tick := time.NewTicker(max(settle/5, 10*time.Millisecond))
	defer tick.Stop()

	pending := map[string]time.Time{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[ev.Name] = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", dir, err)

		case now := <-tick.C:
			for path, at := range pending {
				if now.Sub(at) < settle {
					continue
				}
				delete(pending, path)

				ds, err := c.Upload(ctx, path)
				report(WatchResult{Path: path, Dataset: ds, Err: err})
				if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotLoggedIn) {
					return err
				}
			}
		}
	}
}
