package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/depot/internal/apperr"
)

const settleDelay = 200 * time.Millisecond

// ChangeCallback is called with the relative name of a watched resource
// whose content changed.
type ChangeCallback func(resource string)

// Watch watches the given resources (paths relative to the site root) until
// ctx is cancelled. Events are debounced and a callback only fires when the
// content checksum differs from the last one seen, so touches and editor
// save dances that leave the content unchanged are ignored. A resource that
// disappears counts as a change.
func Watch(ctx context.Context, site *FS, resources []string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	byPath := make(map[string]string, len(resources))
	dirs := make(map[string]struct{})
	for _, res := range resources {
		abs, err := site.safePath(res)
		if err != nil {
			return err
		}
		byPath[abs] = res
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	// Watch parent directories so atomic replace-by-rename is seen.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	seen := make(map[string]string, len(resources))
	for _, res := range resources {
		seen[res] = sum(site, res)
	}

	logger.Info("watcher: started", slog.String("root", site.Root()), slog.Any("resources", resources))

	pending := make(map[string]struct{})
	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			for res := range pending {
				cs := sum(site, res)
				if cs == seen[res] {
					continue
				}
				seen[res] = cs
				logger.Debug("watcher: resource changed", slog.String("resource", res))
				if cb != nil {
					cb(res)
				}
			}
			pending = make(map[string]struct{})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			res, watched := byPath[filepath.Clean(ev.Name)]
			if !watched || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[res] = struct{}{}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleCh = settle.C
			} else {
				settle.Reset(settleDelay)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// sum returns the hex SHA-256 digest of a resource, or "" when it does not
// exist.
func sum(site *FS, res string) string {
	data, err := site.Read(res)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return "unreadable"
		}
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
