package docstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/mbreeze/inkwell/internal/models"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(tempFS(t))
}

func TestSaveAndLoadDocument(t *testing.T) {
	s := tempStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	doc := &models.Document{
		ID:           "01TEST",
		Title:        "Hello",
		Body:         "<p>Hello <strong>World</strong></p>",
		Category:     "notes",
		CreatedAt:    now,
		LastModified: now,
	}
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	got, ok := s.LoadDocument("01TEST")
	if !ok {
		t.Fatal("document not found after save")
	}
	if got.Title != "Hello" || got.Body != doc.Body || got.Category != "notes" {
		t.Errorf("loaded = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestLoadDocument_MissingIsAbsent(t *testing.T) {
	s := tempStore(t)
	if _, ok := s.LoadDocument("nope"); ok {
		t.Error("missing document should be absent, not an error")
	}
}

func TestLoadDocument_MalformedIsAbsent(t *testing.T) {
	s := tempStore(t)
	_ = s.p.Set(DocKey("bad"), []byte("{not json"))
	if _, ok := s.LoadDocument("bad"); ok {
		t.Error("malformed record should be treated as absent")
	}
}

func TestLoadDocument_DefaultsCategory(t *testing.T) {
	s := tempStore(t)
	_ = s.p.Set(DocKey("x"), []byte(`{"id":"x","title":"t","content":"<p>b</p>"}`))
	doc, ok := s.LoadDocument("x")
	if !ok {
		t.Fatal("expected document")
	}
	if doc.Category != models.DefaultCategory {
		t.Errorf("category = %q, want %q", doc.Category, models.DefaultCategory)
	}
}

func TestListDocuments_SkipsMalformedAndAuxKeys(t *testing.T) {
	s := tempStore(t)
	_ = s.SaveDocument(&models.Document{ID: "a", Title: "A"})
	_ = s.SaveDocument(&models.Document{ID: "b", Title: "B"})
	_ = s.p.Set(DocKey("bad"), []byte("broken"))
	_ = s.p.Set(RecentKey, []byte(`["a"]`))

	docs, err := s.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len = %d, want 2", len(docs))
	}
}

func TestRecent_TouchOrderAndDedup(t *testing.T) {
	s := tempStore(t)
	s.TouchRecent("a")
	s.TouchRecent("b")
	s.TouchRecent("a")

	got := s.Recent()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("recent = %v, want [a b]", got)
	}
}

func TestRecent_EvictsBeyondLimit(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < RecentLimit+3; i++ {
		s.TouchRecent(fmt.Sprintf("doc%02d", i))
	}
	got := s.Recent()
	if len(got) != RecentLimit {
		t.Fatalf("len = %d, want %d", len(got), RecentLimit)
	}
	if got[0] != fmt.Sprintf("doc%02d", RecentLimit+2) {
		t.Errorf("newest = %s", got[0])
	}
	for _, id := range got {
		if id == "doc00" || id == "doc01" || id == "doc02" {
			t.Errorf("oldest entries should be evicted, found %s", id)
		}
	}
}

func TestDeleteDocument_RemovesRecentEntry(t *testing.T) {
	s := tempStore(t)
	_ = s.SaveDocument(&models.Document{ID: "a"})
	s.TouchRecent("a")
	s.TouchRecent("b")
	if err := s.DeleteDocument("a"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	for _, id := range s.Recent() {
		if id == "a" {
			t.Error("deleted document still in recent list")
		}
	}
}

func TestSettings_DefaultWhenMissing(t *testing.T) {
	s := tempStore(t)
	got := s.LoadSettings()
	if got != models.DefaultEditorSettings() {
		t.Errorf("settings = %+v", got)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s := tempStore(t)
	want := models.EditorSettings{WordWrap: false, ShowLineNumbers: true, FontSize: 18, Theme: models.ThemeDark}
	if err := s.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := s.LoadSettings(); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestSettings_InvalidRejectedOnSaveAndLoad(t *testing.T) {
	s := tempStore(t)
	bad := models.EditorSettings{FontSize: 99, Theme: "neon"}
	if err := s.SaveSettings(bad); err == nil {
		t.Error("expected validation error on save")
	}
	// A record written behind our back with bad values falls back to defaults.
	_ = s.p.Set(SettingsKey, []byte(`{"fontSize":99,"theme":"neon"}`))
	if got := s.LoadSettings(); got != models.DefaultEditorSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
}
