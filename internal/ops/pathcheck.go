package ops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/pannote/internal/errors"
)

// ValidateOutputPath checks that path can receive an output file:
// it is non-empty, its parent directory exists and is a real directory,
// and the path itself is neither a directory nor a symlink.
func ValidateOutputPath(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("output path is required")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	parentDir := filepath.Dir(absPath)
	info, err := os.Lstat(parentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(parentDir)
		}
		return errors.NewInvalidRequest(fmt.Sprintf("cannot inspect output directory: %v", err))
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("output directory must not be a symlink")
	}
	if !info.IsDir() {
		return errors.NewInvalidRequest(fmt.Sprintf("not a directory: %s", parentDir))
	}

	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("output path must not be a symlink")
		}
		if info.IsDir() {
			return errors.NewInvalidRequest("output path is a directory")
		}
	}
	return nil
}

// ValidateInputFile checks that path names an existing regular file.
func ValidateInputFile(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("input path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
		return errors.NewInvalidRequest(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if info.IsDir() {
		return errors.NewInvalidRequest(fmt.Sprintf("%s is a directory", path))
	}
	return nil
}
