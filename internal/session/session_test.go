package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/models"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpenFileReadsContent(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "list.txt", "a-\nb")
	s := New(storage.NewDisk())

	idx, created := s.OpenFile(p)
	if idx != 0 || !created {
		t.Fatalf("OpenFile = %d, %v", idx, created)
	}
	doc := s.ActiveDocument()
	if doc.Buffer != "a-\nb" {
		t.Errorf("buffer = %q", doc.Buffer)
	}
	if doc.Title != "list.txt" {
		t.Errorf("title = %q", doc.Title)
	}
	if !doc.Bound() {
		t.Error("opened document should be bound")
	}
}

func TestOpenFileDedup(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "dup.txt", "x")
	s := New(storage.NewDisk())
	s.NewFile()

	first, _ := s.OpenFile(p)
	s.Activate(0)
	second, created := s.OpenFile(filepath.Join(dir, ".", "sub", "..", "dup.txt"))
	if first != second {
		t.Errorf("indexes differ: %d vs %d", first, second)
	}
	if created {
		t.Error("second open should not create a document")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
	if s.Active() != first {
		t.Errorf("active = %d, want %d", s.Active(), first)
	}
}

func TestOpenMissingFileYieldsEmptyBuffer(t *testing.T) {
	s := New(storage.NewDisk())
	p := filepath.Join(t.TempDir(), "nope.txt")
	idx, created := s.OpenFile(p)
	if !created {
		t.Fatal("expected a new document")
	}
	if got := s.Buffer(idx); got != "" {
		t.Errorf("buffer = %q", got)
	}
	if s.Document(idx).Path != p {
		t.Errorf("path = %q, want %q", s.Document(idx).Path, p)
	}
}

func TestNewFile(t *testing.T) {
	s := New(storage.NewDisk())
	a := s.NewFile()
	b := s.NewFile()
	if a != 0 || b != 1 || s.Active() != 1 {
		t.Fatalf("indexes %d %d active %d", a, b, s.Active())
	}
	doc := s.Document(b)
	if doc.Bound() || doc.Buffer != "" || doc.Title != models.UntitledTitle {
		t.Errorf("unexpected new document: %+v", doc)
	}
	if s.Document(a).ID == doc.ID {
		t.Error("IDs must be unique")
	}
}

func TestSetBuffer(t *testing.T) {
	s := New(storage.NewDisk())
	s.NewFile()
	s.NewFile()

	s.SetBuffer("active", ActiveIndex)
	s.SetBuffer("first", 0)
	s.SetBuffer("ignored", 5)

	if s.Buffer(0) != "first" || s.Buffer(1) != "active" {
		t.Errorf("buffers = %q, %q", s.Buffer(0), s.Buffer(1))
	}
}

func TestSaveFileWithoutPath(t *testing.T) {
	s := New(storage.NewDisk())
	s.NewFile()
	_, err := s.SaveFile("", ActiveIndex)
	if !errors.Is(err, apperr.ErrNoTargetPath) {
		t.Errorf("err = %v, want ErrNoTargetPath", err)
	}
}

func TestSaveFileOutOfRange(t *testing.T) {
	s := New(storage.NewDisk())
	if _, err := s.SaveFile("/tmp/x", ActiveIndex); !errors.Is(err, apperr.ErrNoActiveDocument) {
		t.Errorf("empty session: err = %v", err)
	}
	s.NewFile()
	if _, err := s.SaveFile("/tmp/x", 3); !errors.Is(err, apperr.ErrNoActiveDocument) {
		t.Errorf("out of range: err = %v", err)
	}
}

func TestSaveFileRebindsAndWrites(t *testing.T) {
	dir := t.TempDir()
	s := New(storage.NewDisk())
	s.NewFile()
	s.SetBuffer("body+", ActiveIndex)

	target := filepath.Join(dir, "out.txt")
	got, err := s.SaveFile(target, ActiveIndex)
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if got != target {
		t.Errorf("path = %q", got)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "body+" {
		t.Errorf("disk = %q", data)
	}
	if s.ActiveDocument().Path != target {
		t.Error("document was not rebound")
	}

	s.SetBuffer("changed", ActiveIndex)
	if _, err := s.SaveFile("", ActiveIndex); err != nil {
		t.Fatalf("second save: %v", err)
	}
	data, _ = os.ReadFile(target)
	if string(data) != "changed" {
		t.Errorf("disk = %q", data)
	}
}

func TestSaveFileToDirectory(t *testing.T) {
	dir := t.TempDir()
	s := New(storage.NewDisk())
	s.NewFile()
	_, err := s.SaveFile(dir, ActiveIndex)
	if !errors.Is(err, apperr.ErrTargetIsDirectory) {
		t.Fatalf("err = %v, want ErrTargetIsDirectory", err)
	}
	if s.ActiveDocument().Bound() {
		t.Error("document must stay unbound after a rejected target")
	}
}

func TestSaveFileWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := writeFile(t, dir, "blocker", "")
	s := New(storage.NewDisk())
	s.NewFile()
	// Parent "directory" is a regular file, so MkdirAll fails.
	_, err := s.SaveFile(filepath.Join(blocker, "child.txt"), ActiveIndex)
	if !errors.Is(err, apperr.ErrFileWrite) {
		t.Errorf("err = %v, want ErrFileWrite", err)
	}
}

func TestCloseFileActiveIndex(t *testing.T) {
	s := New(storage.NewDisk())
	for i := 0; i < 3; i++ {
		s.NewFile()
	}

	if _, ok := s.CloseFile(2); !ok {
		t.Fatal("close failed")
	}
	if s.Active() != 1 {
		t.Errorf("active = %d, want 1", s.Active())
	}
	s.CloseFile(0)
	if s.Active() != 0 || s.Len() != 1 {
		t.Errorf("active = %d len = %d", s.Active(), s.Len())
	}
	s.CloseFile(ActiveIndex)
	if s.Active() != 0 || s.Len() != 0 {
		t.Errorf("active = %d len = %d", s.Active(), s.Len())
	}
	if _, ok := s.CloseFile(ActiveIndex); ok {
		t.Error("closing in an empty session should fail")
	}
	if s.ActiveDocument() != nil {
		t.Error("empty session has no active document")
	}
}

func TestLookupByID(t *testing.T) {
	s := New(storage.NewDisk())
	s.NewFile()
	s.NewFile()
	id := s.Document(1).ID
	s.CloseFile(0)

	doc, idx := s.Lookup(id)
	if doc == nil || idx != 0 {
		t.Fatalf("Lookup = %v, %d", doc, idx)
	}
	if d, i := s.Lookup(9999); d != nil || i != -1 {
		t.Error("unknown ID should not resolve")
	}
}

func TestSetTitle(t *testing.T) {
	s := New(storage.NewDisk())
	s.NewFile()
	if !s.SetTitle(ActiveIndex, "  groceries  ") {
		t.Fatal("SetTitle failed")
	}
	if s.ActiveDocument().Title != "groceries" {
		t.Errorf("title = %q", s.ActiveDocument().Title)
	}
	if s.SetTitle(ActiveIndex, "   ") {
		t.Error("blank title should be ignored")
	}
	if s.ActiveDocument().Title != "groceries" {
		t.Errorf("title changed to %q", s.ActiveDocument().Title)
	}
	s.ResetTitle(ActiveIndex)
	if s.ActiveDocument().Title != models.UntitledTitle {
		t.Errorf("reset title = %q", s.ActiveDocument().Title)
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "r.txt", "v1")
	s := New(storage.NewDisk())
	idx, _ := s.OpenFile(p)
	s.SetBuffer("edited", idx)

	_ = os.WriteFile(p, []byte("v2"), 0o644)
	if err := s.Reload(idx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Buffer(idx) != "v2" {
		t.Errorf("buffer = %q", s.Buffer(idx))
	}

	_ = os.Remove(p)
	if err := s.Reload(idx); !errors.Is(err, apperr.ErrFileRead) {
		t.Errorf("err = %v, want ErrFileRead", err)
	}
	if s.Buffer(idx) != "v2" {
		t.Errorf("failed reload must keep buffer, got %q", s.Buffer(idx))
	}
}

func TestRestorePrefersDisk(t *testing.T) {
	dir := t.TempDir()
	fresh := writeFile(t, dir, "fresh.txt", "from disk")
	missing := filepath.Join(dir, "gone.txt")

	s := New(storage.NewDisk())
	err := s.Restore(snapshot.Snapshot{
		LastFiles:   []string{fresh, missing, ""},
		ActiveIndex: 2,
		Titles:      []string{"", "Renamed ", "  "},
		Buffers:     []string{"stale", "kept", "scratch"},
		FontSize:    12,
	})
	if err == nil {
		t.Error("expected informational error for the missing file")
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	docs := s.Documents()
	if docs[0].Buffer != "from disk" || docs[0].Title != "fresh.txt" {
		t.Errorf("doc0 = %+v", docs[0])
	}
	if docs[1].Buffer != "kept" || docs[1].Title != "Renamed" {
		t.Errorf("doc1 = %+v", docs[1])
	}
	if docs[2].Buffer != "scratch" || docs[2].Title != models.UntitledTitle || docs[2].Path != "" {
		t.Errorf("doc2 = %+v", docs[2])
	}
	if s.Active() != 2 {
		t.Errorf("active = %d", s.Active())
	}
}

func TestRestoreUnevenLists(t *testing.T) {
	s := New(storage.NewDisk())
	_ = s.Restore(snapshot.Snapshot{
		LastFiles:   []string{},
		Buffers:     []string{"one", "two"},
		ActiveIndex: 7,
	})
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if s.Active() != 0 {
		t.Errorf("out-of-range active index should fall back to 0, got %d", s.Active())
	}
}

func TestRestoreEmptySnapshotCreatesOneDocument(t *testing.T) {
	s := New(storage.NewDisk())
	s.NewFile()
	s.CloseFile(ActiveIndex)

	if err := s.Restore(snapshot.Default()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	doc := s.ActiveDocument()
	if doc.Bound() || doc.Buffer != "" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestSnapshotRoundTripThroughRestore(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "a")
	s := New(storage.NewDisk())
	s.OpenFile(p)
	s.NewFile()
	s.SetBuffer("draft", ActiveIndex)
	s.SetTitle(ActiveIndex, "Draft")

	snap := s.Snapshot(18)
	if snap.FontSize != 18 || snap.ActiveIndex != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	r := New(storage.NewDisk())
	if err := r.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := r.Snapshot(18); !equalSnap(got, snap) {
		t.Errorf("restored snapshot = %+v, want %+v", got, snap)
	}
}

func equalSnap(a, b snapshot.Snapshot) bool {
	if a.ActiveIndex != b.ActiveIndex || a.FontSize != b.FontSize || len(a.LastFiles) != len(b.LastFiles) {
		return false
	}
	for i := range a.LastFiles {
		if a.LastFiles[i] != b.LastFiles[i] || a.Titles[i] != b.Titles[i] || a.Buffers[i] != b.Buffers[i] {
			return false
		}
	}
	return true
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	s := New(storage.NewDisk())
	s.OpenFile(writeFile(t, dir, "groceries.txt", ""))
	s.OpenFile(writeFile(t, dir, "roadmap.md", ""))
	s.NewFile()
	s.SetTitle(ActiveIndex, "Weekly plan")

	matches := s.Search("road")
	if len(matches) != 1 || matches[0].Document.Title != "roadmap.md" {
		t.Fatalf("matches = %+v", matches)
	}

	matches = s.Search("WEEKLY")
	if len(matches) != 1 || matches[0].Index != 2 {
		t.Errorf("case-insensitive match failed: %+v", matches)
	}

	if all := s.Search(" "); len(all) != 3 {
		t.Errorf("blank query should list all, got %d", len(all))
	}
	if none := s.Search("zzzz"); len(none) != 0 {
		t.Errorf("unexpected matches %+v", none)
	}
}
