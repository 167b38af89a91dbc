// Package models defines the domain types for Inkwell.
package models

import "time"

// Editing modes a document can be opened in.
const (
	ModeCode    = "code"
	ModeWysiwyg = "wysiwyg"
)

// DefaultCategory is assigned to documents created without an explicit category.
const DefaultCategory = "general"

// Document is a stored rich-text document. Body is always the canonical HTML
// representation; every other textual form (markdown, plain text) is derived.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"content"`
	Category     string    `json:"category,omitempty"`
	Language     string    `json:"language,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Key       string    `json:"key"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewMode identifies which presentation of a document is active in an
// editing session. Exactly one mode is active at a time.
type ViewMode string

const (
	ViewRich     ViewMode = "rich"
	ViewHTML     ViewMode = "html"
	ViewMarkdown ViewMode = "markdown"
	ViewPreview  ViewMode = "preview"
)

// Valid reports whether m is one of the four known view modes.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewRich, ViewHTML, ViewMarkdown, ViewPreview:
		return true
	}
	return false
}
