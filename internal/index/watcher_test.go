package index

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mbreeze/inkwell/internal/docstore"
	"github.com/mbreeze/inkwell/internal/models"
)

func watcherTestEnv(t *testing.T) (string, *docstore.Store, *DB) {
	t.Helper()
	root := t.TempDir()
	p, err := docstore.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, docstore.NewStore(p), testDB(t)
}

func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatal(msg)
}

func startWatcher(t *testing.T, root string, store *docstore.Store, db *DB) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, root, slog.New(slog.NewTextHandler(os.Stderr, nil)), nil)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher time to register before mutating the directory.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewRecordIndexed(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	startWatcher(t, root, store, db)

	doc := &models.Document{ID: "01A", Title: "Watched", Body: "<p>hello</p>", Category: "general", LastModified: time.Now()}
	if err := store.SaveDocument(doc); err != nil {
		t.Fatal(err)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("01A")
		return cs != ""
	}, "document was not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	doc := &models.Document{ID: "01B", Title: "Doomed", Body: "<p>x</p>", Category: "general", LastModified: time.Now()}
	if err := store.SaveDocument(doc); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, slog.New(slog.NewTextHandler(os.Stderr, nil))); err != nil {
		t.Fatal(err)
	}

	startWatcher(t, root, store, db)
	if err := store.DeleteDocument("01B"); err != nil {
		t.Fatal(err)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("01B")
		return cs == ""
	}, "deleted document still indexed")
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	_, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	_ = store.SaveDocument(&models.Document{ID: "keep", Title: "Keep", Body: "<p>keep me</p>", Category: "general", LastModified: time.Now()})
	// Stale index row with no backing record.
	_ = db.UpsertDocument(DocumentRow{ID: "ghost", Title: "Ghost", Checksum: "x", UpdatedAt: time.Now()}, "")

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if cs, _ := db.GetChecksum("keep"); cs == "" {
		t.Error("keep not indexed")
	}
	if cs, _ := db.GetChecksum("ghost"); cs != "" {
		t.Error("ghost not removed")
	}
}

func TestSync_SkipsUnchangedByChecksum(t *testing.T) {
	_, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	doc := &models.Document{ID: "a", Title: "One", Body: "<p>one</p>", Category: "general", LastModified: time.Now()}
	_ = store.SaveDocument(doc)
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetChecksum("a")

	// Second sync with no record change leaves the checksum alone.
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	after, _ := db.GetChecksum("a")
	if before != after || before == "" {
		t.Errorf("checksum changed: %q -> %q", before, after)
	}
}

func TestSync_IndexedRowCarriesProjection(t *testing.T) {
	_, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	_ = store.SaveDocument(&models.Document{
		ID: "p", Title: "Projected", Body: "<p>alpha beta gamma</p>",
		Category: "general", LastModified: time.Now(),
	})
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	rows, _, err := db.ListDocuments(10, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("len = %d", len(rows))
	}
	if rows[0].WordCount != 3 {
		t.Errorf("word count = %d, want 3", rows[0].WordCount)
	}
	if rows[0].Preview != "alpha beta gamma" {
		t.Errorf("preview = %q", rows[0].Preview)
	}
}
