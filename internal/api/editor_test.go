package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbreeze/inkwell/internal/surface"
)

func editorURL(srv *httptest.Server, id, tail string) string {
	u := srv.URL + "/api/editor/" + id
	if tail != "" {
		u += "/" + tail
	}
	return u
}

func openEditor(t *testing.T, srv *httptest.Server, id string) editorState {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, editorURL(srv, id, "open"), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open status = %d: %s", resp.StatusCode, data)
	}
	var st editorState
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func deliverEvent(t *testing.T, srv *httptest.Server, id string, ev surface.Event) {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, editorURL(srv, id, "events"), ev, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("event status = %d: %s", resp.StatusCode, data)
	}
}

func pollCommand(t *testing.T, srv *httptest.Server, id string) surface.Command {
	t.Helper()
	resp, data := doJSON(t, http.MethodGet, editorURL(srv, id, "commands"), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("poll status = %d: %s", resp.StatusCode, data)
	}
	var body struct {
		Command surface.Command `json:"command"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	return body.Command
}

func getEditorState(t *testing.T, srv *httptest.Server, id string) editorState {
	t.Helper()
	resp, data := doJSON(t, http.MethodGet, editorURL(srv, id, ""), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d: %s", resp.StatusCode, data)
	}
	var st editorState
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestEditorOpenAndCommands(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Note", "<p>Hello <strong>World</strong></p>", "")

	st := openEditor(t, srv, doc.ID)
	if st.Mode != "rich" || st.WordCount != 2 {
		t.Fatalf("state = %+v", st)
	}

	// Opening twice is rejected until the first session closes.
	resp, _ := doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "open"), nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second open status = %d", resp.StatusCode)
	}

	// The initial setContent is held until the host reports ready.
	deliverEvent(t, srv, doc.ID, surface.Event{Type: surface.EventReady})
	cmd := pollCommand(t, srv, doc.ID)
	if cmd.Name != surface.CmdSetContent || cmd.Value != "<p>Hello <strong>World</strong></p>" {
		t.Fatalf("command = %+v", cmd)
	}
}

func TestEditorOpenMissing(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	resp, _ := doJSON(t, http.MethodPost, editorURL(srv, "nope", "open"), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestEditorEditFlow(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Note", "<p>start</p>", "")

	openEditor(t, srv, doc.ID)
	deliverEvent(t, srv, doc.ID, surface.Event{Type: surface.EventReady})
	if cmd := pollCommand(t, srv, doc.ID); cmd.Name != surface.CmdSetContent {
		t.Fatalf("command = %+v", cmd)
	}

	// A host edit in rich mode updates the canonical body.
	deliverEvent(t, srv, doc.ID, surface.Event{
		Type: surface.EventContentChanged,
		HTML: "<p>edited body</p>",
		Text: "edited body",
	})
	deadline := time.Now().Add(2 * time.Second)
	for {
		if st := getEditorState(t, srv, doc.ID); st.Buffer == "<p>edited body</p>" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("content change never applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Switching to markdown fetches the live rich content first; answer
	// the getContent request from a second goroutine playing the host.
	done := make(chan editorState, 1)
	go func() {
		resp, data := doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "view"),
			map[string]string{"mode": "markdown"}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("view status = %d: %s", resp.StatusCode, data)
			done <- editorState{}
			return
		}
		var st editorState
		if err := json.Unmarshal(data, &st); err != nil {
			t.Error(err)
		}
		done <- st
	}()

	if cmd := pollCommand(t, srv, doc.ID); cmd.Name != surface.CmdGetContent {
		t.Fatalf("command = %+v", cmd)
	}
	deliverEvent(t, srv, doc.ID, surface.Event{
		Type: surface.EventContent,
		HTML: "<p>edited body</p>",
	})

	st := <-done
	if st.Mode != "markdown" || st.Buffer != "edited body" {
		t.Fatalf("state after switch = %+v", st)
	}

	// Source edits land in the markdown buffer; save persists the
	// promoted body.
	resp, _ := doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "edit"),
		map[string]string{"text": "# Final"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "save"), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/documents/"+doc.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var saved DocumentDetail
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Content != "<h1>Final</h1>" {
		t.Errorf("saved content = %q", saved.Content)
	}
}

func TestEditorInvalidMode(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Note", "<p>x</p>", "")
	openEditor(t, srv, doc.ID)

	resp, _ := doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "view"),
		map[string]string{"mode": "sideways"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestEditorFormatAndInsert(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Note", "<p>x</p>", "")
	openEditor(t, srv, doc.ID)
	deliverEvent(t, srv, doc.ID, surface.Event{Type: surface.EventReady})
	if cmd := pollCommand(t, srv, doc.ID); cmd.Name != surface.CmdSetContent {
		t.Fatalf("command = %+v", cmd)
	}

	resp, _ := doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "format"),
		map[string]string{"format": surface.FormatBold}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("format status = %d", resp.StatusCode)
	}
	cmd := pollCommand(t, srv, doc.ID)
	if cmd.Name != surface.CmdFormat || cmd.Format != surface.FormatBold {
		t.Errorf("command = %+v", cmd)
	}

	resp, _ = doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "insert"),
		map[string]any{"kind": "image", "url": "/attachments/a.png", "alt": "pic"}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("insert status = %d", resp.StatusCode)
	}
	cmd = pollCommand(t, srv, doc.ID)
	if cmd.Name != surface.CmdInsertHTML || cmd.Value != `<img src="/attachments/a.png" alt="pic">` {
		t.Errorf("command = %+v", cmd)
	}

	resp, _ = doJSON(t, http.MethodPost, editorURL(srv, doc.ID, "insert"),
		map[string]any{"kind": "hologram"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad kind status = %d", resp.StatusCode)
	}
}

func TestEditorClose(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Note", "<p>x</p>", "")
	openEditor(t, srv, doc.ID)

	req, err := http.NewRequest(http.MethodDelete, editorURL(srv, doc.ID, ""), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close status = %d", resp.StatusCode)
	}

	// The slot frees up for a new session.
	resp2, _ := doJSON(t, http.MethodGet, editorURL(srv, doc.ID, ""), nil, nil)
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("state after close = %d", resp2.StatusCode)
	}
	openEditor(t, srv, doc.ID)
}
