package watcher

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// pathRecorder collects callback paths safely across goroutines.
type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *pathRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *pathRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// waitFor polls cond until it holds or timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
}

func TestWatcher_IngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := NewWatcher([]string{dir}, []string{".yaml"}, rec.record, nil, WithDebounce(30*time.Millisecond))
	startWatcher(t, w)

	fPath := filepath.Join(dir, "faq.yaml")
	if err := os.WriteFile(fPath, []byte("- question: q\n  answer: a\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("no ingest callback arrived")
	}
	if got := rec.snapshot(); !strings.HasSuffix(got[0], "faq.yaml") {
		t.Errorf("ingested path = %q, want faq.yaml", got[0])
	}
}

func TestWatcher_SkipsUnlistedExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := NewWatcher([]string{dir}, []string{".yaml"}, rec.record, nil, WithDebounce(30*time.Millisecond))
	startWatcher(t, w)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected no callbacks for .txt, got %v", got)
	}
}

func TestWatcher_RemoveReportsFile(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "faq.yaml")
	if err := os.WriteFile(fPath, []byte("- question: q\n  answer: a\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &pathRecorder{}
	w := NewWatcher([]string{dir}, []string{".yaml"}, nil, rec.record, WithDebounce(30*time.Millisecond))
	startWatcher(t, w)

	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("no remove callback arrived")
	}
	if got := rec.snapshot(); !strings.HasSuffix(got[0], "faq.yaml") {
		t.Errorf("removed path = %q, want faq.yaml", got[0])
	}
}

func TestWatcher_RenameAwayReportsRemove(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	fPath := filepath.Join(dir, "faq.yaml")
	if err := os.WriteFile(fPath, []byte("- question: q\n  answer: a\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec := &pathRecorder{}
	w := NewWatcher([]string{dir}, []string{".yaml"}, nil, rec.record, WithDebounce(30*time.Millisecond))
	startWatcher(t, w)

	if err := os.Rename(fPath, filepath.Join(outside, "faq.yaml")); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("no remove callback for renamed-away file")
	}
}

func TestWatcher_BurstWritesCollapse(t *testing.T) {
	dir := t.TempDir()
	rec := &pathRecorder{}

	w := NewWatcher([]string{dir}, []string{".yaml"}, rec.record, nil, WithDebounce(80*time.Millisecond))
	startWatcher(t, w)

	fPath := filepath.Join(dir, "faq.yaml")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(fPath, []byte("- question: q\n  answer: a\n"), 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(15 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(rec.snapshot()) > 0 }) {
		t.Fatal("no ingest callback arrived")
	}
	// Give a straggler timer the chance to fire before counting.
	time.Sleep(200 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("burst of writes should collapse to one ingest, got %d", len(got))
	}
}

func TestWatcher_CreatesMissingRoots(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "contracts")

	w := NewWatcher([]string{root}, []string{".yaml"}, nil, nil)
	startWatcher(t, w)

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root should exist after Start: %v", err)
	}
}

func TestNormalizeExts(t *testing.T) {
	got := normalizeExts([]string{".yaml", "YML", " json ", "", ".XLSX"})
	want := []string{".yaml", ".yml", ".json", ".xlsx"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeExts = %v, want %v", got, want)
	}
}

func TestWatcher_Owns(t *testing.T) {
	w := NewWatcher([]string{"/data/answers"}, nil, nil, nil)
	cases := []struct {
		path string
		want bool
	}{
		{"/data/answers", true},
		{"/data/answers/faq.yaml", true},
		{"/data/other/faq.yaml", false},
		{"/data/answers/../other", false},
	}
	for _, c := range cases {
		if got := w.owns(filepath.Clean(c.path)); got != c.want {
			t.Errorf("owns(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestWatcher_WantsExt(t *testing.T) {
	w := NewWatcher(nil, []string{"yaml", ".JSON"}, nil, nil)
	if !w.wantsExt("/a/b.yaml") || !w.wantsExt("/a/b.YAML") || !w.wantsExt("/a/b.json") {
		t.Error("listed extensions should match case-insensitively")
	}
	if w.wantsExt("/a/b.csv") {
		t.Error(".csv is not listed and should not match")
	}
	open := NewWatcher(nil, nil, nil, nil)
	if !open.wantsExt("/a/b.anything") {
		t.Error("empty extension list should accept every file")
	}
}
