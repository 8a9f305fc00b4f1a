package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/cache"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/storage"
	"github.com/starford/notesift/internal/testutil"
)

const miscBody = `preamble
21/06/2024
Who is Mike?
22/06/2024
Plan trip to Europe.
`

type env struct {
	root  string
	store storage.Provider
	cache *cache.Store
}

func newEnv(t *testing.T) env {
	t.Helper()
	root, store := testutil.TestStore(t)
	if err := os.Mkdir(filepath.Join(root, "inbox"), 0o755); err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewStore(filepath.Join(t.TempDir(), "notes.json"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return env{root: root, store: store, cache: c}
}

func (e env) driver(cfg Config) *Driver {
	cfg.FolderID = "inbox"
	return NewDriver(e.store, e.cache, cfg, testutil.Quiet(), nil)
}

func TestBootstrapRun(t *testing.T) {
	e := newEnv(t)
	old := time.Now().Add(-48 * time.Hour)
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", old)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", miscBody, old)

	stats, err := e.driver(Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Bootstrap || !stats.Saved {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Processed != 2 || stats.NewRecords != 3 || stats.Total != 3 {
		t.Errorf("stats = %+v", stats)
	}

	snap, err := e.cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Records) != 3 {
		t.Fatalf("records = %+v", snap.Records)
	}
	// Sorted by timestamp: segmented 2024 dates come before the document's modtime.
	if snap.Records[0].Content != "Who is Mike?" || !snap.Records[0].Segmented() {
		t.Errorf("records[0] = %+v", snap.Records[0])
	}
	if snap.Records[2].Filename != "todo" || snap.Records[2].Content != "buy milk" {
		t.Errorf("records[2] = %+v", snap.Records[2])
	}
}

func TestSecondRunSkipsFreshDocuments(t *testing.T) {
	e := newEnv(t)
	old := time.Now().Add(-48 * time.Hour)
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", old)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", miscBody, old)

	d := e.driver(Config{})
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	before, _ := e.cache.WrittenAt()

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Saved || stats.Skipped != 2 || stats.NewRecords != 0 {
		t.Errorf("stats = %+v", stats)
	}
	after, _ := e.cache.WrittenAt()
	if !after.Equal(before) {
		t.Errorf("snapshot rewritten: %v -> %v", before, after)
	}
}

func TestStaleDocumentMerged(t *testing.T) {
	e := newEnv(t)
	old := time.Now().Add(-48 * time.Hour)
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", old)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", "", old)

	d := e.driver(Config{})
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	testutil.WriteDoc(t, e.root, "inbox/idea.md", "new idea", time.Now().Add(time.Hour))

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Processed != 1 || stats.Total != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestForceRefetchesWithoutDuplicates(t *testing.T) {
	e := newEnv(t)
	old := time.Now().Add(-48 * time.Hour)
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", old)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", miscBody, old)

	if _, err := e.driver(Config{}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats, err := e.driver(Config{Force: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if stats.Processed != 2 || stats.Total != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMissingMiscDocumentCreated(t *testing.T) {
	e := newEnv(t)
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", time.Now())

	stats, err := e.driver(Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.NewRecords != 1 {
		t.Errorf("placeholder must contribute no records: %+v", stats)
	}
	data, err := os.ReadFile(filepath.Join(e.root, "inbox", models.MiscNotesName+".txt"))
	if err != nil {
		t.Fatalf("placeholder not created: %v", err)
	}
	if string(data) != MiscPlaceholder {
		t.Errorf("placeholder = %q", data)
	}
}

func TestDocumentLimitDefersNewestUntilNextRun(t *testing.T) {
	e := newEnv(t)
	base := time.Now().Add(-72 * time.Hour)
	testutil.WriteDoc(t, e.root, "inbox/a.txt", "a", base.Add(time.Hour))
	testutil.WriteDoc(t, e.root, "inbox/b.txt", "b", base.Add(2*time.Hour))
	testutil.WriteDoc(t, e.root, "inbox/c.txt", "c", base.Add(3*time.Hour))
	// Sorts after the limit by id and must still be ingested.
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", miscBody, base)

	d := e.driver(Config{DocumentLimit: 2})

	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if stats.Listed != 4 || stats.Processed != 3 || stats.Deferred != 1 || !stats.Saved {
		t.Errorf("first run stats = %+v", stats)
	}

	stats, err = d.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Processed != 1 || stats.Skipped != 3 || stats.Deferred != 0 {
		t.Errorf("second run stats = %+v", stats)
	}

	stats, err = d.Run(context.Background())
	if err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if stats.Processed != 0 || stats.Saved {
		t.Errorf("third run stats = %+v", stats)
	}

	snap, err := e.cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	files := map[string]bool{}
	segmented := 0
	for _, r := range snap.Records {
		if r.Segmented() {
			segmented++
		} else {
			files[r.Filename] = true
		}
	}
	if !files["a"] || !files["b"] || !files["c"] || len(files) != 3 {
		t.Errorf("filenames = %v", files)
	}
	if segmented != 2 {
		t.Errorf("segmented records = %d, want 2", segmented)
	}
}

func TestInvalidDateSkipsMiscDocument(t *testing.T) {
	e := newEnv(t)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", "32/01/2024 bad", time.Now())
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "ok", time.Now())

	stats, err := e.driver(Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.NewRecords != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// flaky fails reads for one document id.
type flaky struct {
	storage.Provider
	failID string
}

func (f flaky) Read(ctx context.Context, id string) (string, error) {
	if id == f.failID {
		return "", &apperr.FetchError{Op: "read", ID: id, Err: errors.New("503")}
	}
	return f.Provider.Read(ctx, id)
}

func TestFetchFailureSkipsDocument(t *testing.T) {
	e := newEnv(t)
	testutil.WriteDoc(t, e.root, "inbox/a.txt", "a", time.Now())
	testutil.WriteDoc(t, e.root, "inbox/b.txt", "b", time.Now())
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", "", time.Now())

	d := NewDriver(flaky{Provider: e.store, failID: "inbox/a.txt"}, e.cache, Config{FolderID: "inbox"}, testutil.Quiet(), nil)
	stats, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.NewRecords != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestListFailureFailsRun(t *testing.T) {
	e := newEnv(t)
	d := NewDriver(e.store, e.cache, Config{FolderID: "missing"}, testutil.Quiet(), nil)
	if _, err := d.Run(context.Background()); !errors.Is(err, apperr.ErrFetch) {
		t.Errorf("err = %v, want ErrFetch", err)
	}
}

func TestCorruptSnapshotRebuilt(t *testing.T) {
	e := newEnv(t)
	if err := os.WriteFile(e.cache.Path(), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	testutil.WriteDoc(t, e.root, "inbox/todo.txt", "buy milk", time.Now().Add(-time.Hour))
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", "", time.Now().Add(-time.Hour))

	stats, err := e.driver(Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Bootstrap || stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDue(t *testing.T) {
	e := newEnv(t)
	d := e.driver(Config{})
	if !d.Due(time.Now()) {
		t.Error("empty snapshot must be due")
	}
	if _, err := e.cache.Save([]models.NoteRecord{{Timestamp: "2024-06-21T00:00:00Z", Content: "x"}}); err != nil {
		t.Fatal(err)
	}
	if d.Due(time.Now()) {
		t.Error("fresh snapshot must not be due")
	}
	if !d.Due(time.Now().Add(25 * time.Hour)) {
		t.Error("day-old snapshot must be due")
	}
}

func TestMarkdownFrontMatterStripped(t *testing.T) {
	e := newEnv(t)
	testutil.WriteDoc(t, e.root, "inbox/misc_inputs.txt", "", time.Now())
	testutil.WriteDoc(t, e.root, "inbox/standup.md",
		"---\ntitle: Standup\ncreated: 2024-03-01\n---\n- ship the release\n", time.Now())

	if _, err := e.driver(Config{}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap, err := e.cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Records) != 1 {
		t.Fatalf("records = %+v", snap.Records)
	}
	got := snap.Records[0]
	if got.Content != "- ship the release\n" || got.Filename != "standup" {
		t.Errorf("record = %+v", got)
	}
	if got.Timestamp != "2024-03-01T00:00:00Z" {
		t.Errorf("timestamp = %q, want created date", got.Timestamp)
	}
}
