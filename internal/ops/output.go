package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/pannote/internal/errors"
)

// WriteOutputInput contains parameters for the WriteOutput operation.
type WriteOutputInput struct {
	Path    string // required
	Content string
}

// WriteOutputOutput contains the result of the WriteOutput operation.
type WriteOutputOutput struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// WriteOutput writes rendered output to a file. The content goes to a temp
// file first and is renamed into place, so an existing file survives a
// failed write.
func WriteOutput(input WriteOutputInput) (*WriteOutputOutput, error) {
	if err := ValidateOutputPath(input.Path); err != nil {
		return nil, err
	}
	outPath := filepath.Clean(input.Path)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := outPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create output file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	n, err := file.WriteString(input.Content)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close output file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink swapped in since validation
	if info, err := os.Lstat(outPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("output path must not be a symlink")
	}

	// On Windows os.Rename fails if the destination exists; the existing file
	// is kept rather than risking a non-atomic delete+rename.
	if err := os.Rename(tempPath, outPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(outPath); statErr == nil {
				return nil, errors.NewInvalidRequest("output destination already exists; overwriting is not supported on Windows")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize output: %w", err))
	}

	success = true
	return &WriteOutputOutput{Path: outPath, Bytes: n}, nil
}
