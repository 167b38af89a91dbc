package docstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/mbreeze/inkwell/internal/models"
)

// Store layers typed record access over a raw Provider. Every read failure
// degrades to "record absent": a missing key, an unreadable value, and
// malformed JSON all look the same to callers, and none of them propagate.
type Store struct {
	p Provider
}

// NewStore wraps a provider.
func NewStore(p Provider) *Store {
	return &Store{p: p}
}

// Provider exposes the underlying key-value provider.
func (s *Store) Provider() Provider { return s.p }

// DocKey returns the storage key for a document id.
func DocKey(id string) string { return DocKeyPrefix + id }

// IsDocKey reports whether key names a document record, returning its id.
func IsDocKey(key string) (id string, ok bool) {
	if strings.HasPrefix(key, DocKeyPrefix) {
		return strings.TrimPrefix(key, DocKeyPrefix), true
	}
	return "", false
}

// LoadDocument reads and decodes a document record. The boolean is false
// when the record is missing or malformed; malformed records are logged
// and treated as absent, never surfaced as parse errors.
func (s *Store) LoadDocument(id string) (*models.Document, bool) {
	data, err := s.p.Get(DocKey(id))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("docstore: read failed", slog.String("id", id), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("docstore: malformed record treated as absent",
			slog.String("id", id), slog.String("error", err.Error()))
		return nil, false
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.Category == "" {
		doc.Category = models.DefaultCategory
	}
	return &doc, true
}

// SaveDocument encodes and stores a document record.
func (s *Store) SaveDocument(doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.p.Set(DocKey(doc.ID), data)
}

// DeleteDocument removes a document record and its recent-list entry.
func (s *Store) DeleteDocument(id string) error {
	if err := s.p.Delete(DocKey(id)); err != nil {
		return err
	}
	recent := s.Recent()
	kept := recent[:0]
	for _, r := range recent {
		if r != id {
			kept = append(kept, r)
		}
	}
	s.saveRecent(kept)
	return nil
}

// ListDocuments decodes every document record, skipping malformed ones.
func (s *Store) ListDocuments() ([]*models.Document, error) {
	metas, err := s.p.List()
	if err != nil {
		return nil, err
	}
	var out []*models.Document
	for _, m := range metas {
		id, ok := IsDocKey(m.Key)
		if !ok {
			continue
		}
		if doc, ok := s.LoadDocument(id); ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Recent returns the most-recently-touched document ids, newest first.
// Missing or malformed history yields an empty list.
func (s *Store) Recent() []string {
	data, err := s.p.Get(RecentKey)
	if err != nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("docstore: malformed recent list discarded", slog.String("error", err.Error()))
		return nil
	}
	return ids
}

// TouchRecent moves id to the front of the recent list, evicting the
// oldest entry beyond RecentLimit.
func (s *Store) TouchRecent(id string) {
	recent := s.Recent()
	out := make([]string, 0, len(recent)+1)
	out = append(out, id)
	for _, r := range recent {
		if r != id {
			out = append(out, r)
		}
	}
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	s.saveRecent(out)
}

func (s *Store) saveRecent(ids []string) {
	data, _ := json.Marshal(ids)
	if err := s.p.Set(RecentKey, data); err != nil {
		slog.Warn("docstore: recent list write failed", slog.String("error", err.Error()))
	}
}

// LoadSettings returns the stored editor settings, falling back to the
// defaults when the record is missing, malformed, or out of range.
func (s *Store) LoadSettings() models.EditorSettings {
	def := models.DefaultEditorSettings()
	data, err := s.p.Get(SettingsKey)
	if err != nil {
		return def
	}
	var st models.EditorSettings
	if err := json.Unmarshal(data, &st); err != nil {
		slog.Warn("docstore: malformed settings discarded", slog.String("error", err.Error()))
		return def
	}
	if err := st.Validate(); err != nil {
		slog.Warn("docstore: stored settings invalid, using defaults", slog.String("error", err.Error()))
		return def
	}
	return st
}

// SaveSettings validates and stores editor settings.
func (s *Store) SaveSettings(st models.EditorSettings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.p.Set(SettingsKey, data)
}
