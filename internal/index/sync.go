package index

import (
	"log/slog"

	"github.com/mbreeze/inkwell/internal/docstore"
	"github.com/mbreeze/inkwell/internal/models"
	"github.com/mbreeze/inkwell/internal/plaintext"
)

// previewLen is how much tag-stripped text the document list shows.
const previewLen = 160

// Sync walks the store and brings the index up to date:
//   - new/changed records are decoded and upserted
//   - records removed from the store are deleted from the index
func Sync(db *DB, store *docstore.Store, logger *slog.Logger) error {
	metas, err := store.Provider().List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		id, ok := docstore.IsDocKey(m.Key)
		if !ok {
			continue
		}
		present[id] = struct{}{}

		if checksums[id] == m.Checksum {
			continue
		}

		doc, ok := store.LoadDocument(id)
		if !ok {
			// Malformed records are invisible; drop any stale row.
			_ = db.DeleteDocument(id)
			continue
		}
		if err := IndexDocument(db, doc, m.Checksum); err != nil {
			logger.Warn("sync: index failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", id))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := present[id]; !ok {
			if err := db.DeleteDocument(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// IndexDocument derives the searchable projection of doc and upserts it.
func IndexDocument(db *DB, doc *models.Document, cs string) error {
	body := plaintext.Strip(doc.Body)
	row := DocumentRow{
		ID:        doc.ID,
		Title:     doc.Title,
		Category:  doc.Category,
		Preview:   plaintext.Preview(doc.Body, previewLen),
		Checksum:  cs,
		WordCount: plaintext.CountWords(doc.Body),
		UpdatedAt: doc.LastModified,
	}
	return db.UpsertDocument(row, body)
}
