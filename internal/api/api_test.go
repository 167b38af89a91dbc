package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mbreeze/inkwell/internal/docservice"
	"github.com/mbreeze/inkwell/internal/testutil"
)

func newTestServer(t *testing.T, authEnabled bool, token string) (*httptest.Server, *docservice.Service) {
	t.Helper()

	dataRoot, store := testutil.TestStore(t)
	svc := docservice.NewService(store, testutil.TestDB(t), nil)

	root := chi.NewRouter()
	root.Mount("/api", NewRouter(svc, authEnabled, token, nil, dataRoot))
	root.Get("/attachments/{filename}", NewAttachmentHandler(dataRoot).ServeFile)

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func createDoc(t *testing.T, srv *httptest.Server, title, content, category string) DocumentDetail {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/documents", CreateDocumentRequest{
		Title: title, Content: content, Category: category,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, data)
	}
	var doc DocumentDetail
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestDocumentCRUD(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	doc := createDoc(t, srv, "Groceries", "<p>buy milk</p>", "home")
	if doc.ID == "" || doc.Category != "home" || doc.WordCount != 2 {
		t.Fatalf("created = %+v", doc)
	}

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/documents/"+doc.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var got DocumentDetail
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Content != "<p>buy milk</p>" {
		t.Errorf("content = %q", got.Content)
	}

	// Stale If-Match is rejected.
	title := "Groceries v2"
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/documents/"+doc.ID,
		UpdateDocumentRequest{Title: &title}, map[string]string{"If-Match": `"bogus"`})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("stale update status = %d", resp.StatusCode)
	}

	resp, data = doJSON(t, http.MethodPut, srv.URL+"/api/documents/"+doc.ID,
		UpdateDocumentRequest{Title: &title}, map[string]string{"If-Match": doc.Checksum})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d: %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Groceries v2" || got.Content != "<p>buy milk</p>" {
		t.Errorf("updated = %+v", got)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/documents/"+doc.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/documents/"+doc.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
	// Repeat delete stays a no-op.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/documents/"+doc.ID, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
}

func TestCreateDocument_Validation(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/documents", CreateDocumentRequest{Content: "<p>x</p>"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing title status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/documents", strings.NewReader("{not json"))
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json status = %d", resp2.StatusCode)
	}
}

func TestListSearchRecentCategories(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	createDoc(t, srv, "Groceries", "<p>buy milk</p>", "home")
	createDoc(t, srv, "Agenda", "<p>quarterly planning</p>", "work")

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/documents?category=work", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list DocumentListResponse
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || len(list.Documents) != 1 || list.Documents[0].Title != "Agenda" {
		t.Errorf("list = %+v", list)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/search?q=milk", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "Groceries") {
		t.Errorf("search = %s", data)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/search", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d", resp.StatusCode)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/recent", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recent status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "Agenda") || !strings.Contains(string(data), "Groceries") {
		t.Errorf("recent = %s", data)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/categories", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("categories status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"home":1`) || !strings.Contains(string(data), `"work":1`) {
		t.Errorf("categories = %s", data)
	}
}

func TestMarkdownAndStatsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false, "")
	doc := createDoc(t, srv, "Doc", "<h1>Title</h1>", "")

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/documents/"+doc.ID+"/markdown", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("markdown status = %d", resp.StatusCode)
	}
	if string(data) != "# Title" {
		t.Errorf("markdown = %q", data)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/documents/"+doc.ID+"/stats", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"wordCount":1`) {
		t.Errorf("stats = %s", data)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/settings", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get settings status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"fontSize":14`) {
		t.Errorf("settings = %s", data)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/settings",
		map[string]any{"fontSize": 18, "theme": "dark"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put settings status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/settings",
		map[string]any{"fontSize": 99, "theme": "dark"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid settings status = %d", resp.StatusCode)
	}
}

func TestConvertEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/convert",
		ConvertRequest{From: "markdown", Content: "# Title"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("convert status = %d", resp.StatusCode)
	}
	var out ConvertResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Content != "<h1>Title</h1>" {
		t.Errorf("converted = %q", out.Content)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/convert",
		ConvertRequest{From: "html", Content: "<p>Hello <strong>World</strong></p>"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("convert status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Content != "Hello **World**" {
		t.Errorf("converted = %q", out.Content)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/convert",
		ConvertRequest{From: "rtf", Content: "x"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad from status = %d", resp.StatusCode)
	}
}

func TestTerminalEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/terminal",
		TerminalRequest{Input: "echo hi"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("terminal status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"output":"hi"`) {
		t.Errorf("terminal = %s", data)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/api/terminal",
		TerminalRequest{Input: "nope"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("terminal status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "command not found") {
		t.Errorf("terminal = %s", data)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, true, "secret")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/documents", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/documents", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/documents", nil,
		map[string]string{"Authorization": "Bearer secret"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d", resp.StatusCode)
	}
}

func TestAttachmentUploadAndServe(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "png-bytes")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", resp.StatusCode, data)
	}
	if !strings.Contains(string(data), `"url":"/attachments/pic.png"`) {
		t.Errorf("upload = %s", data)
	}

	resp2, err := http.Get(srv.URL + "/attachments/pic.png")
	if err != nil {
		t.Fatal(err)
	}
	served, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK || string(served) != "png-bytes" {
		t.Errorf("serve status = %d, body = %q", resp2.StatusCode, served)
	}
}
