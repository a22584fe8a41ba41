package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// Store reads and writes per-subreddit record documents under one
// directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created lazily on
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Filename returns the document name for a subreddit, e.g. r_python.json.
func Filename(subreddit string) string {
	return "r_" + strings.ToLower(subreddit) + ".json"
}

// Path returns the absolute document path for a subreddit.
func (s *Store) Path(subreddit string) string {
	return filepath.Join(s.dir, Filename(subreddit))
}

// Load reads a subreddit's records, newest first. A missing document is an
// empty store, not an error.
func (s *Store) Load(subreddit string) ([]Record, error) {
	data, err := os.ReadFile(s.Path(subreddit))
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records for r/%s: %w", subreddit, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records for r/%s: %w", subreddit, err)
	}

	return records, nil
}

// Save writes a subreddit's records atomically: encode to a temporary file
// in the same directory, then rename over the destination.
func (s *Store) Save(subreddit string, records []Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", s.dir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records for r/%s: %w", subreddit, err)
	}

	path := s.Path(subreddit)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)

		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
