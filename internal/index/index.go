package index

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with fakes.
type DocumentIndex interface {
	UpsertDocument(row DocumentRow, body string) error
	DeleteDocument(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDocuments(limit, offset int, category, sort string) ([]DocumentRow, int, error)
	Categories() (map[string]int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
