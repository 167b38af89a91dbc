// Package docservice coordinates the document store, the search index and
// the event broker behind one service facade.
package docservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mbreeze/inkwell/internal/apperr"
	"github.com/mbreeze/inkwell/internal/checksum"
	"github.com/mbreeze/inkwell/internal/docstore"
	"github.com/mbreeze/inkwell/internal/htmlmd"
	"github.com/mbreeze/inkwell/internal/ids"
	"github.com/mbreeze/inkwell/internal/index"
	"github.com/mbreeze/inkwell/internal/models"
	"github.com/mbreeze/inkwell/internal/plaintext"
)

// statsPreviewLen bounds the preview returned with document stats.
const statsPreviewLen = 160

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Checksum     string    `json:"checksum"`
	Category     string    `json:"category"`
	Language     string    `json:"language,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	WordCount    int       `json:"wordCount"`
	CharCount    int       `json:"charCount"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Preview   string    `json:"preview"`
	WordCount int       `json:"wordCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats is the plain-text projection of one document.
type Stats struct {
	ID        string `json:"id"`
	WordCount int    `json:"wordCount"`
	CharCount int    `json:"charCount"`
	Preview   string `json:"preview"`
}

// Publisher receives document change notifications.
type Publisher interface {
	PublishDocumentEvent(kind, id string)
}

// Service coordinates store, index and event operations.
type Service struct {
	store  *docstore.Store
	db     *index.DB
	events Publisher
}

// NewService creates a document service. events may be nil.
func NewService(store *docstore.Store, db *index.DB, events Publisher) *Service {
	return &Service{store: store, db: db, events: events}
}

// GetDocument loads a document and marks it recently used.
func (s *Service) GetDocument(_ context.Context, id string) (*DocumentDetail, error) {
	doc, ok := s.store.LoadDocument(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.store.TouchRecent(id)
	return s.detail(doc), nil
}

// CreateDocument mints an id, persists the document and indexes it.
func (s *Service) CreateDocument(_ context.Context, title, content, category, language string) (*DocumentDetail, error) {
	if category == "" {
		category = models.DefaultCategory
	}
	now := time.Now()
	doc := &models.Document{
		ID:           ids.New(),
		Title:        title,
		Body:         content,
		Category:     category,
		Language:     language,
		CreatedAt:    now,
		LastModified: now,
	}
	if err := s.persist(doc); err != nil {
		return nil, err
	}
	s.publish("created", doc.ID)
	return s.detail(doc), nil
}

// UpdateDocument overwrites an existing document with optimistic
// concurrency: a non-empty ifMatch must equal the stored record's checksum.
func (s *Service) UpdateDocument(_ context.Context, id string, apply func(*models.Document), ifMatch string) (*DocumentDetail, error) {
	doc, ok := s.store.LoadDocument(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != s.recordChecksum(doc) {
		return nil, apperr.ErrConflict
	}

	apply(doc)
	doc.ID = id
	doc.LastModified = time.Now()
	if err := s.persist(doc); err != nil {
		return nil, err
	}
	s.publish("updated", id)
	return s.detail(doc), nil
}

// SaveDocument persists an already-built record, reindexes it and marks it
// recent. This is the save path editing sessions use.
func (s *Service) SaveDocument(doc *models.Document) error {
	if err := s.persist(doc); err != nil {
		return err
	}
	s.publish("updated", doc.ID)
	return nil
}

// DeleteDocument removes a document from store and index. Deleting a
// missing document is a no-op.
func (s *Service) DeleteDocument(_ context.Context, id string) error {
	if _, ok := s.store.LoadDocument(id); !ok {
		return nil
	}
	if err := s.store.DeleteDocument(id); err != nil {
		return err
	}
	if err := s.db.DeleteDocument(id); err != nil {
		return err
	}
	s.publish("deleted", id)
	return nil
}

// ListDocuments returns paginated documents with optional category filter.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, category, sort string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, category, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			ID:        r.ID,
			Title:     r.Title,
			Category:  r.Category,
			Preview:   r.Preview,
			WordCount: r.WordCount,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Categories returns category names with document counts.
func (s *Service) Categories(_ context.Context) (map[string]int, error) {
	return s.db.Categories()
}

// Recent returns the most-recently-touched documents, newest first. Ids
// whose records have since vanished are skipped.
func (s *Service) Recent(_ context.Context) []DocumentListItem {
	var items []DocumentListItem
	for _, id := range s.store.Recent() {
		doc, ok := s.store.LoadDocument(id)
		if !ok {
			continue
		}
		items = append(items, DocumentListItem{
			ID:        doc.ID,
			Title:     doc.Title,
			Category:  doc.Category,
			Preview:   plaintext.Preview(doc.Body, statsPreviewLen),
			WordCount: plaintext.CountWords(doc.Body),
			UpdatedAt: doc.LastModified,
		})
	}
	return items
}

// ExportMarkdown converts a document body to its markdown form.
func (s *Service) ExportMarkdown(_ context.Context, id string) (string, error) {
	doc, ok := s.store.LoadDocument(id)
	if !ok {
		return "", apperr.ErrNotFound
	}
	return htmlmd.ToMarkdown(doc.Body), nil
}

// DocumentStats returns the plain-text projection of a document.
func (s *Service) DocumentStats(_ context.Context, id string) (*Stats, error) {
	doc, ok := s.store.LoadDocument(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &Stats{
		ID:        id,
		WordCount: plaintext.CountWords(doc.Body),
		CharCount: plaintext.CountChars(doc.Body),
		Preview:   plaintext.Preview(doc.Body, statsPreviewLen),
	}, nil
}

// Settings returns the stored editor settings.
func (s *Service) Settings(_ context.Context) models.EditorSettings {
	return s.store.LoadSettings()
}

// SaveSettings validates and stores editor settings.
func (s *Service) SaveSettings(_ context.Context, st models.EditorSettings) error {
	return s.store.SaveSettings(st)
}

// Store exposes the underlying record store.
func (s *Service) Store() *docstore.Store { return s.store }

func (s *Service) persist(doc *models.Document) error {
	if err := s.store.SaveDocument(doc); err != nil {
		return err
	}
	if err := index.IndexDocument(s.db, doc, s.recordChecksum(doc)); err != nil {
		return err
	}
	s.store.TouchRecent(doc.ID)
	return nil
}

// recordChecksum hashes the encoded record, matching what the provider
// reports for the stored bytes.
func (s *Service) recordChecksum(doc *models.Document) string {
	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishDocumentEvent(kind, id)
	}
}

func (s *Service) detail(doc *models.Document) *DocumentDetail {
	return &DocumentDetail{
		ID:           doc.ID,
		Title:        doc.Title,
		Content:      doc.Body,
		Checksum:     s.recordChecksum(doc),
		Category:     doc.Category,
		Language:     doc.Language,
		Mode:         doc.Mode,
		WordCount:    plaintext.CountWords(doc.Body),
		CharCount:    plaintext.CountChars(doc.Body),
		CreatedAt:    doc.CreatedAt,
		LastModified: doc.LastModified,
	}
}
