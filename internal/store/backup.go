package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// backupStamp names backup directories so they sort chronologically.
const backupStamp = "2006-01-02-15-04-05"

// Backup copies every JSON document in the store into a fresh timestamped
// directory under backupDir and returns that directory's path. An empty
// store backs up nothing and returns "".
func (s *Store) Backup(backupDir string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read data dir %s: %w", s.dir, err)
	}

	dest := filepath.Join(backupDir, time.Now().Format(backupStamp))
	copied := false

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		if !copied {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return "", fmt.Errorf("failed to create backup dir %s: %w", dest, err)
			}
			copied = true
		}

		src := filepath.Join(s.dir, entry.Name())
		if err := copyFile(src, filepath.Join(dest, entry.Name())); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", src, err)
		}
	}

	if !copied {
		return "", nil
	}

	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return err
	}

	return out.Close()
}
