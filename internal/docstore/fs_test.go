package docstore

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	p, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return p
}

func TestSetAndGet(t *testing.T) {
	p := tempFS(t)
	if err := p.Set("doc_01ABC", []byte(`{"id":"01ABC"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := p.Get("doc_01ABC")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"id":"01ABC"}` {
		t.Errorf("value mismatch: %q", got)
	}
}

func TestGetMissingIsNotExist(t *testing.T) {
	p := tempFS(t)
	_, err := p.Get("doc_nope")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	p := tempFS(t)
	_ = p.Set("doc_x", []byte("{}"))
	if err := p.Delete("doc_x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Get("doc_x"); err == nil {
		t.Error("expected error reading deleted key")
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	p := tempFS(t)
	cases := []string{"", "a/b", `a\b`, "..", "x..y"}
	for _, k := range cases {
		if _, err := p.Get(k); err == nil {
			t.Errorf("Get(%q): expected error", k)
		}
		if err := p.Set(k, []byte("x")); err == nil {
			t.Errorf("Set(%q): expected error", k)
		}
	}
}

func TestList(t *testing.T) {
	p := tempFS(t)
	_ = p.Set("doc_a", []byte("{}"))
	_ = p.Set("doc_b", []byte("{}"))
	_ = p.Set(RecentKey, []byte("[]"))

	metas, err := p.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 3 {
		t.Errorf("len = %d, want 3", len(metas))
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("missing checksum for %s", m.Key)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	p := tempFS(t)
	_ = p.Set("doc_a", []byte("first"))
	if err := p.Set("doc_a", []byte("second")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := p.Get("doc_a")
	if string(got) != "second" {
		t.Errorf("value = %q, want %q", got, "second")
	}
	matches, _ := filepath.Glob(filepath.Join(p.root, ".inkwell-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}
