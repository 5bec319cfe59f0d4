// Package backup persists and restores the replicated SystemState to
// and from a local file, giving a freshly elected master a durable
// seed across process restarts.
package backup

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/slavakukuyev/elevator-fleet/internal/state"
)

// Load reads and parses the SystemState at path. A missing file or one
// that fails to parse yields a fresh empty state rather than an error,
// matching the crash-recovery contract: the backup is best-effort and
// never blocks boot.
func Load(path string, ownerName string, floorCount int) *state.SystemState {
	data, err := os.ReadFile(path)
	if err != nil {
		return state.New(ownerName, floorCount)
	}

	var s state.SystemState
	if err := json.Unmarshal(data, &s); err != nil {
		return state.New(ownerName, floorCount)
	}
	return &s
}

// Save serialises s to path using a write-to-temp-file-then-rename
// sequence, so a crash mid-write never leaves a truncated backup
// behind. Writes are best-effort: a failure is returned for the
// caller to log, never to block the live merge loop on.
func Save(path string, s *state.SystemState) error {
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".backup-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
