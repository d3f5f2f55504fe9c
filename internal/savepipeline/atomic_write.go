package savepipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlvalidate"
)

// WriteAtomic stages data to "<path>.tmp", verifies it round-trips through
// OpenContainer, then renames it over path. An advisory lock on
// "<path>.lock" is held for the duration of staging+rename so two
// processes racing a save on the same path fail fast rather than
// corrupting each other's temp file (spec §4.6's external transactional
// writer contract; the lock is this core's contribution to that
// contract).
//
// If verification fails, the temp file is removed and a
// SaveVerificationFailedError is returned; BackupPreserved reports whether
// the original file at path was left untouched (always true here, since
// the rename only happens after verification succeeds).
func WriteAtomic(path string, data []byte) error {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("savepipeline: acquire lock %s: %w", lockPath, err)
	}
	if !locked {
		return &hwpxerr.SaveVerificationFailedError{
			Reason:          fmt.Sprintf("another process holds the save lock for %s", path),
			BackupPreserved: true,
		}
	}
	defer fl.Unlock()

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("savepipeline: write staging file: %w", err)
	}

	if err := verifyContainer(tmpPath); err != nil {
		os.Remove(tmpPath)
		return &hwpxerr.SaveVerificationFailedError{
			Reason:          err.Error(),
			BackupPreserved: true,
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("savepipeline: rename staging file into place: %w", err)
	}
	return nil
}

// verifyContainer reopens the staged file and confirms every required
// part is present and every section part is tag-balanced, the minimal
// post-write check spec §6/§7 require before a rename is allowed.
func verifyContainer(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	c, err := OpenContainer(f, info.Size())
	if err != nil {
		return err
	}
	for _, name := range c.SectionNames() {
		content, ok := c.Get(name)
		if !ok {
			return fmt.Errorf("staged container is missing section part %s", name)
		}
		if report := xmlvalidate.CheckTagBalance(string(content)); !report.Balanced {
			return fmt.Errorf("staged section part %s failed tag-balance verification", name)
		}
	}
	return nil
}

// StagingPath returns the path WriteAtomic uses for its temp file, for
// callers that want to predict or clean it up out of band.
func StagingPath(path string) string { return filepath.Clean(path) + ".tmp" }
