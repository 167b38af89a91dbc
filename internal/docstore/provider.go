// Package docstore is the key-value storage collaborator for documents.
// Records are JSON blobs under flat keys; a per-document key carries the
// persisted record and small auxiliary keys carry the recent-documents
// list and the editor settings.
package docstore

import "github.com/mbreeze/inkwell/internal/models"

// Key scheme shared with every consumer of the store.
const (
	DocKeyPrefix = "doc_"
	RecentKey    = "recent_documents"
	SettingsKey  = "editor_settings"
)

// RecentLimit bounds the recent-documents history; the oldest entry is
// evicted beyond this.
const RecentLimit = 10

// Provider is the raw key-value interface. Implementations own durability;
// callers own record encoding.
type Provider interface {
	// Get returns the value stored under key. Missing keys return an error
	// wrapping fs.ErrNotExist.
	Get(key string) ([]byte, error)
	// Set durably stores value under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is an error.
	Delete(key string) error
	// List returns metadata for every stored key.
	List() ([]models.DocumentMetadata, error)
}
