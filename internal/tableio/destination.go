package tableio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang-ledger-validator/pkg/errors"
)

// OutputPath derives the output file name: the input base name plus suffix,
// keeping the input extension.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

// OwnerFilePath returns the lock file an office suite creates next to a
// document it holds open.
func OwnerFilePath(path string) string {
	return filepath.Join(filepath.Dir(path), "~$"+filepath.Base(path))
}

// PrepareDestination makes sure path can be written: it fails when another
// program holds the file open, and removes an existing file otherwise.
func PrepareDestination(path string) error {
	owner := OwnerFilePath(path)
	if _, err := os.Stat(owner); err == nil {
		return errors.DestinationLocked(path, fmt.Errorf("lock file %s exists", owner)).
			WithContext("lock_file", owner)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.DestinationLocked(path, err)
	}
	return nil
}
