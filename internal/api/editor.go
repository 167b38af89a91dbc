package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mbreeze/inkwell/internal/apperr"
	"github.com/mbreeze/inkwell/internal/docservice"
	"github.com/mbreeze/inkwell/internal/models"
	"github.com/mbreeze/inkwell/internal/session"
	"github.com/mbreeze/inkwell/internal/surface"
)

// commandPollTimeout bounds the long poll on the command channel.
const commandPollTimeout = 25 * time.Second

const editorPreviewLen = 160

// EditorManager holds the open editing sessions, one per document. The
// render host drives its session over two endpoints: it long-polls
// /commands for adapter-to-host messages and posts host events to /events.
type EditorManager struct {
	svc    *docservice.Service
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*editorSession
}

type editorSession struct {
	adapter *surface.Adapter
	sess    *session.Session
}

// NewEditorManager creates an editor session manager over the service.
func NewEditorManager(svc *docservice.Service, logger *slog.Logger) *EditorManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditorManager{
		svc:      svc,
		logger:   logger,
		sessions: make(map[string]*editorSession),
	}
}

type editorState struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	WordCount int    `json:"wordCount"`
	CharCount int    `json:"charCount"`
	Buffer    string `json:"buffer"`
	Preview   string `json:"preview"`
}

func (m *EditorManager) state(id string, es *editorSession) editorState {
	words, chars := es.sess.Counts()
	return editorState{
		ID:        id,
		Mode:      string(es.sess.Mode()),
		WordCount: words,
		CharCount: chars,
		Buffer:    es.sess.Buffer(),
		Preview:   es.sess.Preview(editorPreviewLen),
	}
}

func (m *EditorManager) lookup(w http.ResponseWriter, r *http.Request) (string, *editorSession, bool) {
	id := chi.URLParam(r, "id")
	m.mu.Lock()
	es, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no editor session for document"))
		return "", nil, false
	}
	return id, es, true
}

// Open starts an editing session for a stored document. Only one session
// per document may be open at a time.
func (m *EditorManager) Open(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		writeJSON(w, http.StatusConflict, errorBody("document already open"))
		return
	}

	doc, ok := m.svc.Store().LoadDocument(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("document not found"))
		return
	}

	es := &editorSession{}
	es.adapter = surface.NewAdapter(m.logger, func(html, text string) {
		// Events only arrive once the host starts posting, which is
		// after Open has returned and es.sess is set.
		if s := es.sess; s != nil {
			s.HandleContentChanged(html, text)
		}
	})
	es.sess = session.NewSession(doc, m.svc.Settings(r.Context()), es.adapter, m.svc, m.logger)
	m.sessions[id] = es

	writeJSON(w, http.StatusOK, m.state(id, es))
}

// State reports the session's mode, counts and active buffer.
func (m *EditorManager) State(w http.ResponseWriter, r *http.Request) {
	id, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.state(id, es))
}

// NextCommand long-polls for the next adapter-to-host command. Responds
// 204 when nothing arrives within the poll window and 410 once the
// session is torn down.
func (m *EditorManager) NextCommand(w http.ResponseWriter, r *http.Request) {
	_, es, ok := m.lookup(w, r)
	if !ok {
		return
	}

	timer := time.NewTimer(commandPollTimeout)
	defer timer.Stop()

	select {
	case cmd, open := <-es.adapter.Commands():
		if !open {
			writeJSON(w, http.StatusGone, errorBody("editor session closed"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]surface.Command{"command": cmd})
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}

// DeliverEvent accepts one host event (ready, content, text,
// contentChanged, commandFailed) and feeds it to the adapter.
func (m *EditorManager) DeliverEvent(w http.ResponseWriter, r *http.Request) {
	_, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	var ev surface.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if ev.Type == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("event type is required"))
		return
	}
	es.adapter.Deliver(ev)
	w.WriteHeader(http.StatusAccepted)
}

// SwitchView changes the session's view mode.
func (m *EditorManager) SwitchView(w http.ResponseWriter, r *http.Request) {
	id, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := es.sess.SwitchView(models.ViewMode(req.Mode)); err != nil {
		m.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.state(id, es))
}

// Edit applies a source-view edit to the session buffer.
func (m *EditorManager) Edit(w http.ResponseWriter, r *http.Request) {
	id, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := es.sess.Edit(req.Text); err != nil {
		m.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.state(id, es))
}

// Format forwards a rich-text format command to the render surface.
func (m *EditorManager) Format(w http.ResponseWriter, r *http.Request) {
	_, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Format string `json:"format"`
		Value  string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Format == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("format is required"))
		return
	}
	es.adapter.FormatText(req.Format, req.Value)
	w.WriteHeader(http.StatusAccepted)
}

// Insert places an object fragment (image, link, table, code block) at the
// rich view's cursor.
func (m *EditorManager) Insert(w http.ResponseWriter, r *http.Request) {
	_, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind     string `json:"kind"`
		URL      string `json:"url"`
		Alt      string `json:"alt"`
		Text     string `json:"text"`
		Rows     int    `json:"rows"`
		Cols     int    `json:"cols"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	switch req.Kind {
	case "image":
		es.adapter.InsertImage(req.URL, req.Alt)
	case "link":
		es.adapter.CreateLink(req.URL, req.Text)
	case "table":
		es.adapter.InsertTable(req.Rows, req.Cols)
	case "code":
		es.adapter.InsertCodeBlock(req.Language)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be image, link, table or code"))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Save promotes the active buffer and persists the document.
func (m *EditorManager) Save(w http.ResponseWriter, r *http.Request) {
	id, es, ok := m.lookup(w, r)
	if !ok {
		return
	}
	if err := es.sess.Save(); err != nil {
		m.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.state(id, es))
}

// Close tears the session down and frees the document for reopening.
func (m *EditorManager) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m.mu.Lock()
	es, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no editor session for document"))
		return
	}

	es.sess.Close()
	es.adapter.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (m *EditorManager) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidMode):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrClosed):
		writeJSON(w, http.StatusGone, errorBody("editor session closed"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}
