package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/rewind"
	"github.com/dshills/rewind/textedit"
)

// waitEvent drains the watcher until an event carrying one of the
// wanted ops arrives.
func waitEvent(t *testing.T, w *Watcher, want Op) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatal("event channel closed while waiting")
			}
			if ev.Op.Has(want) {
				return ev
			}
		case err := <-w.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatalf("no %v event within deadline", want)
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	if _, err := Watch(filepath.Join(t.TempDir(), "absent", "doc.journal")); err == nil {
		t.Error("Watch() on a missing directory: error = nil, want non-nil")
	}
}

func TestWatcherReportsJournalEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.journal")
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w, OpCreate)
	if ev.Path != w.Path() {
		t.Errorf("event path = %q, want %q", ev.Path, w.Path())
	}
	if ev.Timestamp.IsZero() {
		t.Error("event timestamp is zero")
	}

	if err := os.WriteFile(path, []byte(`{"version": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, OpWrite)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, OpRemove)
}

func TestWatcherSeesAtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.journal")
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	codec := textCodec()
	rec := rewind.NewRecord(textedit.NewDocument(""))
	if err := Save(path, rec.Snapshot(), codec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// The rename into place lands as a create of the watched path.
	ev := waitEvent(t, w, OpCreate)
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}

	if err := MarkSaved(path, 0); err != nil {
		t.Fatalf("MarkSaved() error = %v", err)
	}
	waitEvent(t, w, OpCreate)
}

func TestWatcherFiltersSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.journal")
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The sibling's events were queued first; the first event that
	// survives the filter must still be the journal's.
	ev := waitEvent(t, w, OpCreate|OpWrite)
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := Watch(filepath.Join(t.TempDir(), "doc.journal"))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() channel still open after Close")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "create"},
		{OpWrite, "write"},
		{OpCreate | OpWrite, "create|write"},
		{Op(0), "none"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%b).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
