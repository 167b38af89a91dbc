// Package session owns the editing state for one open document: which view
// mode is active, the live edit buffers for the source views, and the
// canonical HTML body they reconcile into.
package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mbreeze/inkwell/internal/apperr"
	"github.com/mbreeze/inkwell/internal/htmlmd"
	"github.com/mbreeze/inkwell/internal/models"
	"github.com/mbreeze/inkwell/internal/plaintext"
)

// Surface is the slice of the render adapter the session drives.
type Surface interface {
	SetContent(html string)
	ClearContent()
	GetContent(ctx context.Context) (string, error)
}

// Saver persists the document record when the session saves.
type Saver interface {
	SaveDocument(doc *models.Document) error
}

// ChangeFunc is notified after every edit with the current buffer and its
// plain-text form.
type ChangeFunc func(html, text string)

// Session reconciles edits from four views (rich, html source, markdown
// source, preview) into one canonical HTML body.
//
// All state lives on a single goroutine; public methods enqueue operations
// that run strictly in call order. A view switch that has to fetch the live
// rich content blocks the loop until the adapter answers, so any switch or
// save issued meanwhile queues behind it rather than racing.
type Session struct {
	ops     chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	// Owned by the ops goroutine.
	doc      *models.Document
	mode     models.ViewMode
	authMode models.ViewMode // last non-preview mode
	htmlBuf  string
	mdBuf    string
	words    int
	chars    int
	settings models.EditorSettings

	surf     Surface
	saver    Saver
	onChange ChangeFunc
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithOnChange installs the edit notification callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Session) { s.onChange = fn }
}

// NewSession opens an editing session in rich mode and pushes the document
// body to the render surface. doc is owned by the session until Close.
func NewSession(doc *models.Document, settings models.EditorSettings, surf Surface, saver Saver, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ops:      make(chan func(), 64),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		doc:      doc,
		mode:     models.ViewRich,
		authMode: models.ViewRich,
		settings: settings,
		surf:     surf,
		saver:    saver,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.recountFrom(doc.Body)
	go s.run()
	surf.SetContent(doc.Body)
	return s
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case op := <-s.ops:
			op()
		}
	}
}

func (s *Session) do(op func()) error {
	if s.closed.Load() {
		return apperr.ErrClosed
	}
	done := make(chan struct{})
	select {
	case s.ops <- func() { op(); close(done) }:
	case <-s.stopped:
		return apperr.ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return apperr.ErrClosed
	}
}

// SwitchView moves to the given view mode, promoting the buffer of the view
// being left into the canonical body and deriving the target view's buffer.
func (s *Session) SwitchView(target models.ViewMode) error {
	if !target.Valid() {
		return apperr.ErrInvalidMode
	}
	return s.do(func() { s.switchTo(target) })
}

func (s *Session) switchTo(target models.ViewMode) {
	if target == s.mode {
		return
	}

	s.promote()
	prev := s.mode

	switch target {
	case models.ViewRich:
		s.surf.SetContent(s.doc.Body)
	case models.ViewHTML:
		// Returning from preview restores the untouched edit buffer.
		if !(prev == models.ViewPreview && s.authMode == models.ViewHTML) {
			s.htmlBuf = s.doc.Body
		}
	case models.ViewMarkdown:
		if !(prev == models.ViewPreview && s.authMode == models.ViewMarkdown) {
			s.mdBuf = htmlmd.ToMarkdown(s.doc.Body)
		}
	case models.ViewPreview:
		// Read-only projection, computed on demand from the canonical body.
	}

	if target != models.ViewPreview {
		s.authMode = target
	}
	s.mode = target
	s.recountFrom(s.doc.Body)
}

// promote folds the active view's buffer into the canonical body. Preview
// never holds edits, so leaving it promotes nothing; its source buffer was
// already promoted on the way in.
func (s *Session) promote() {
	switch s.mode {
	case models.ViewRich:
		html, err := s.surf.GetContent(s.ctx)
		if err != nil {
			// Keep the last known body; the surface is gone or not ready.
			s.logger.Warn("rich content fetch failed, keeping prior body", "err", err)
			return
		}
		s.doc.Body = htmlmd.StripPlaceholder(html)
	case models.ViewHTML:
		s.doc.Body = s.htmlBuf
	case models.ViewMarkdown:
		s.doc.Body = htmlmd.ToHTML(s.mdBuf)
	}
}

// Edit records a keystroke-level change to the html or markdown source
// buffer. Edits in rich mode arrive via HandleContentChanged instead; an
// Edit in rich or preview mode is dropped.
func (s *Session) Edit(text string) error {
	return s.do(func() {
		switch s.mode {
		case models.ViewHTML:
			s.htmlBuf = text
			s.recountFrom(text)
			s.emit(text, plaintext.Strip(text))
		case models.ViewMarkdown:
			s.mdBuf = text
			s.recountFrom(text)
			// The markdown source doubles as its own plain text.
			s.emit(text, text)
		default:
			s.logger.Warn("source edit ignored", "mode", string(s.mode))
		}
	})
}

// HandleContentChanged accepts a host-initiated edit notification from the
// render surface. The html is treated as canonical when rich mode is
// active; notifications arriving in other modes are stale echoes and are
// dropped.
//
// The enqueue never blocks: the adapter loop calls this while the session
// loop may itself be waiting on the adapter, so waiting here could
// deadlock. Under a pathological backlog the notification is dropped.
func (s *Session) HandleContentChanged(html, text string) {
	if s.closed.Load() {
		return
	}
	op := func() {
		if s.mode != models.ViewRich {
			return
		}
		s.doc.Body = html
		s.recountFrom(html)
		s.emit(html, text)
	}
	select {
	case s.ops <- op:
	default:
		s.logger.Warn("content change dropped, session backlog full")
	}
}

func (s *Session) emit(html, text string) {
	if s.onChange != nil {
		s.onChange(html, text)
	}
}

func (s *Session) recountFrom(src string) {
	s.words = plaintext.CountWords(src)
	s.chars = plaintext.CountChars(src)
}

// Save promotes the active buffer and persists the record. lastModified is
// set to the current time and never moves backwards; createdAt is
// initialized once and preserved afterwards.
func (s *Session) Save() error {
	var saveErr error
	err := s.do(func() {
		s.promote()

		now := s.now()
		if s.doc.CreatedAt.IsZero() {
			s.doc.CreatedAt = now
		}
		if now.Before(s.doc.LastModified) {
			now = s.doc.LastModified
		}
		s.doc.LastModified = now

		snapshot := *s.doc
		saveErr = s.saver.SaveDocument(&snapshot)
	})
	if err != nil {
		return err
	}
	return saveErr
}

// Document returns a snapshot of the session's document.
func (s *Session) Document() models.Document {
	var snapshot models.Document
	_ = s.do(func() { snapshot = *s.doc })
	return snapshot
}

// Mode returns the active view mode.
func (s *Session) Mode() models.ViewMode {
	mode := models.ViewRich
	_ = s.do(func() { mode = s.mode })
	return mode
}

// Counts returns the current word and character counts.
func (s *Session) Counts() (words, chars int) {
	_ = s.do(func() { words, chars = s.words, s.chars })
	return words, chars
}

// Preview returns the plain-text preview of the canonical body, truncated
// to maxLen characters.
func (s *Session) Preview(maxLen int) string {
	var p string
	_ = s.do(func() { p = plaintext.Preview(s.doc.Body, maxLen) })
	return p
}

// Buffer returns the live source buffer for the html or markdown view, or
// the canonical body otherwise.
func (s *Session) Buffer() string {
	var buf string
	_ = s.do(func() {
		switch s.mode {
		case models.ViewHTML:
			buf = s.htmlBuf
		case models.ViewMarkdown:
			buf = s.mdBuf
		default:
			buf = s.doc.Body
		}
	})
	return buf
}

// Settings returns the session's editor settings.
func (s *Session) Settings() models.EditorSettings {
	var st models.EditorSettings
	_ = s.do(func() { st = s.settings })
	return st
}

// UpdateSettings validates and applies new editor settings.
func (s *Session) UpdateSettings(st models.EditorSettings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	return s.do(func() { s.settings = st })
}

// Close tears the session down. An in-flight adapter request is abandoned
// and its eventual response discarded.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel()
		close(s.stopCh)
	}
	<-s.stopped
}
