package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mbreeze/inkwell/internal/docstore"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the store root and processes record
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation. The store layout is flat, so only the
// root directory is watched.
//
// Rename events fire on the old path only; the watcher deletes the old
// entry immediately and schedules a short reconciliation pass to catch
// the record's new identity.
func Watch(ctx context.Context, db *DB, store *docstore.Store, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			id, ok := docIDFromPath(ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				doc, ok := store.LoadDocument(id)
				if !ok {
					// Unreadable or malformed: make sure the index agrees.
					_ = db.DeleteDocument(id)
					continue
				}
				cs := storedChecksum(store, id)
				if err := IndexDocument(db, doc, cs); err != nil {
					logger.Warn("watcher: index failed", slog.String("id", id), slog.String("error", err.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("id", id), slog.String("op", kind))
				if cb != nil {
					cb(kind, id)
				}

			case ev.Op&fsnotify.Remove != 0:
				if err := db.DeleteDocument(id); err != nil {
					logger.Warn("watcher: delete failed", slog.String("id", id), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("id", id))
				if cb != nil {
					cb("deleted", id)
				}

			case ev.Op&fsnotify.Rename != 0:
				if err := db.DeleteDocument(id); err == nil {
					logger.Debug("watcher: rename old deleted", slog.String("id", id))
					if cb != nil {
						cb("deleted", id)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// docIDFromPath maps a store file path to a document id.
func docIDFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return docstore.IsDocKey(strings.TrimSuffix(name, ".json"))
}

// storedChecksum looks up the on-disk checksum for id from store metadata.
func storedChecksum(store *docstore.Store, id string) string {
	metas, err := store.Provider().List()
	if err != nil {
		return ""
	}
	key := docstore.DocKey(id)
	for _, m := range metas {
		if m.Key == key {
			return m.Checksum
		}
	}
	return ""
}

// reconcile does a lightweight sync using batch lookups: index entries
// without a backing record are removed, and records missing from or stale
// in the index are (re)indexed.
func reconcile(db *DB, store *docstore.Store, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.Provider().List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		if id, ok := docstore.IsDocKey(m.Key); ok {
			disk[id] = m.Checksum
		}
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteDocument(id); err == nil {
				logger.Debug("reconcile: removed stale", slog.String("id", id))
				if cb != nil {
					cb("deleted", id)
				}
			}
		}
	}

	for id, cs := range disk {
		if checksums[id] == cs {
			continue
		}
		doc, ok := store.LoadDocument(id)
		if !ok {
			continue
		}
		if err := IndexDocument(db, doc, cs); err == nil {
			logger.Debug("reconcile: indexed", slog.String("id", id))
			if cb != nil {
				cb("created", id)
			}
		}
	}
}
