package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Entry describes one file in the cache folder, audio or sidecar.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Store manages the on-disk representation of cache entries inside a
// single flat folder. Each entry is an audio file named
// "<key>.<format>" plus a "<key>.txt" sidecar holding the source text
// for auditability. File modification times double as last-access
// times for the janitor.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the folder lazily
// if it does not exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, ErrNoCacheDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache folder: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache folder path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the audio file path for a key and format. The format
// extension is always lowercased.
func (s *Store) Path(key, format string) string {
	return filepath.Join(s.dir, key+"."+strings.ToLower(format))
}

func (s *Store) sidecarPath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

// Exists reports whether the audio file for a key and format is cached.
// The audio file is the sole source of truth for hit/miss decisions;
// a missing sidecar does not invalidate an entry.
func (s *Store) Exists(key, format string) bool {
	info, err := os.Stat(s.Path(key, format))
	return err == nil && !info.IsDir()
}

// Touch refreshes the last-access time of an entry's audio file and
// sidecar to now. A missing sidecar is tolerated.
func (s *Store) Touch(key, format string) {
	now := time.Now()
	for _, p := range []string{s.Path(key, format), s.sidecarPath(key)} {
		if err := os.Chtimes(p, now, now); err != nil && !os.IsNotExist(err) {
			log.Debug("Could not refresh entry timestamp", "path", p, "error", err)
		}
	}
}

// Write streams audio to the entry's audio file and records the source
// text in the sidecar. Both files are written to a temporary name and
// renamed into place after a sync, so a crash mid-write never leaves a
// partially written file under the final name. The audio file is
// renamed first; the sidecar follows.
//
// Returns the audio file path. On error the entry must be treated as
// not cached.
func (s *Store) Write(key, format, text string, audio io.Reader) (string, error) {
	dst := s.Path(key, format)
	if err := s.writeAtomic(dst, audio); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := s.writeAtomic(s.sidecarPath(key), strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return dst, nil
}

// writeAtomic drains r to a temp file in the cache folder, syncs it,
// and renames it over path. The temp file is removed on failure.
func (s *Store) writeAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	_, err = io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()

	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// List enumerates every file directly in the cache folder, audio and
// sidecar alike, with its size and last-modified time.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache folder: %w", err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// Deleted by a racing process between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(s.dir, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Remove deletes one file. A file already gone is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
