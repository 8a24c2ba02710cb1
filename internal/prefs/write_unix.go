//go:build !windows

package prefs

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// writeAtomic writes to a pending file in the same directory, then fsyncs
// and renames it over the target.
func (s *Store) writeAtomic() error {
	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending preferences file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug("cleanup pending preferences file", "error", err)
		}
	}()

	if _, err := encode(pending, s.file); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace preferences: %w", err)
	}
	return nil
}
