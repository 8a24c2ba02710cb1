//go:build windows

package prefs

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic on Windows uses a sibling temp file and os.Rename, which
// replaces the target with MoveFileEx semantics.
func (s *Store) writeAtomic() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := encode(tmp, s.file); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp preferences file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
