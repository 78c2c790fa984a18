package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewStore_RequiresDir(t *testing.T) {
	if _, err := NewStore(""); err != ErrNoCacheDir {
		t.Errorf("Expected ErrNoCacheDir, got %v", err)
	}
}

func TestNewStore_CreatesFolderLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audio")

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	info, err := os.Stat(store.Dir())
	if err != nil {
		t.Fatalf("Cache folder not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Cache folder path is not a directory")
	}
}

func TestStore_WriteThenExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := "Robert_3e25960a79dbc69b674cd4ec67a72c62"
	if store.Exists(key, "mp3") {
		t.Fatal("Entry should not exist before write")
	}

	path, err := store.Write(key, "MP3", "Hello world", strings.NewReader("fake-mp3-bytes"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Extension is lowercased regardless of caller input.
	if filepath.Base(path) != key+".mp3" {
		t.Errorf("Unexpected audio filename: %s", filepath.Base(path))
	}
	if !store.Exists(key, "mp3") || !store.Exists(key, "MP3") {
		t.Error("Entry should exist after write, case-insensitive on format")
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Could not read audio file: %v", err)
	}
	if string(audio) != "fake-mp3-bytes" {
		t.Errorf("Audio content mismatch: %q", audio)
	}

	sidecar, err := os.ReadFile(filepath.Join(store.Dir(), key+".txt"))
	if err != nil {
		t.Fatalf("Could not read sidecar: %v", err)
	}
	if string(sidecar) != "Hello world" {
		t.Errorf("Sidecar content mismatch: %q", sidecar)
	}
}

func TestStore_WriteLeavesNoPartialFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := "Amy_0123456789abcdef0123456789abcdef"
	boom := errors.New("stream broke")
	_, err = store.Write(key, "mp3", "text", &failingReader{after: 3, err: boom})
	if err == nil {
		t.Fatal("Expected write error from failing stream")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Error should wrap the stream failure, got %v", err)
	}

	if store.Exists(key, "mp3") {
		t.Error("Failed write must not leave the entry visible")
	}
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty folder after failed write, found %d files", len(entries))
	}
}

func TestStore_TouchRefreshesBothFiles(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := "Joanna_aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	path, err := store.Write(key, "ogg", "old words", strings.NewReader("ogg-data"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sidecar := filepath.Join(store.Dir(), key+".txt")

	old := time.Now().Add(-72 * time.Hour)
	for _, p := range []string{path, sidecar} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	store.Touch(key, "ogg")

	for _, p := range []string{path, sidecar} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if time.Since(info.ModTime()) > time.Minute {
			t.Errorf("Touch did not refresh %s: mtime %v", p, info.ModTime())
		}
	}
}

func TestStore_TouchToleratesMissingSidecar(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := "Amy_bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	path, err := store.Write(key, "mp3", "words", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := os.Remove(filepath.Join(store.Dir(), key+".txt")); err != nil {
		t.Fatalf("Could not remove sidecar: %v", err)
	}

	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	// Must not panic or error, and must still refresh the audio file.
	store.Touch(key, "mp3")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Error("Audio mtime not refreshed when sidecar missing")
	}
}

func TestStore_ListReportsAllFiles(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := store.Write("Amy_11111111111111111111111111111111", "mp3", "one", strings.NewReader("a")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Write("Amy_22222222222222222222222222222222", "ogg", "two", strings.NewReader("bb")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// Two audio files plus two sidecars.
	if len(entries) != 4 {
		t.Fatalf("Expected 4 files, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ModTime.IsZero() {
			t.Errorf("Entry %s has zero mtime", e.Path)
		}
	}
}

func TestStore_RemoveMissingFileIsNoError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Remove(filepath.Join(store.Dir(), "gone.mp3")); err != nil {
		t.Errorf("Remove of missing file should succeed, got %v", err)
	}
}

// failingReader errors after yielding a few bytes.
type failingReader struct {
	after int
	err   error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, r.err
	}
	n := r.after
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = 'x'
	}
	r.after -= n
	return n, nil
}
