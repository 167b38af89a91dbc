package api

import (
	"github.com/mbreeze/inkwell/internal/docservice"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	Language string `json:"language,omitempty"`
}

// UpdateDocumentRequest is the request body for updating a document. Nil
// fields are left unchanged.
type UpdateDocumentRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
	Language *string `json:"language,omitempty"`
	Mode     *string `json:"mode,omitempty"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// ConvertRequest asks for a one-off conversion between the two source forms.
type ConvertRequest struct {
	From    string `json:"from"` // "html" or "markdown"
	Content string `json:"content"`
}

// ConvertResponse carries the converted text.
type ConvertResponse struct {
	Content string `json:"content"`
}

// TerminalRequest is one line typed into the terminal panel.
type TerminalRequest struct {
	Input string `json:"input"`
}
