package notify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
)

// InputTypes are the extensions offered by the file picker.
var InputTypes = []string{".xlsx", ".xlsm", ".csv"}

// SelectInput asks the user to pick the ledger to validate, starting in dir.
// An aborted prompt yields an empty path and no error.
func SelectInput(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		dir = wd
	}

	var path string
	picker := huh.NewFilePicker().
		Title("Select the ledger you want to validate").
		Description("Excel workbooks and CSV files are supported").
		CurrentDirectory(dir).
		AllowedTypes(InputTypes).
		FileAllowed(true).
		DirAllowed(false).
		Picking(true).
		Value(&path)

	if err := huh.NewForm(huh.NewGroup(picker)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("file selection failed: %w", err)
	}

	if path == "" {
		return "", nil
	}
	return filepath.Clean(path), nil
}
