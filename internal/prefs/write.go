package prefs

import (
	"fmt"
	"os"
)

// save serializes every section to disk. Callers hold s.mu.
func (s *Store) save() error {
	var err error
	if s.atomic {
		err = s.writeAtomic()
	} else {
		err = s.writeInPlace()
	}
	if err != nil {
		s.logger.Error("writing preferences failed", "path", s.path, "error", err)
		return err
	}
	s.logger.Debug("wrote preferences", "path", s.path, "atomic", s.atomic)
	return nil
}

// writeInPlace truncates the target and writes into it. A crash mid-write
// leaves a partial file.
func (s *Store) writeInPlace() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening preferences for write: %w", err)
	}
	if _, err := encode(f, s.file); err != nil {
		f.Close()
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing preferences: %w", err)
	}
	return nil
}
