package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/pannote/internal/errors"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "refs.bib")
	if err := os.WriteFile(file, []byte("@article{a,}"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantCode errors.ErrorCode
	}{
		{name: "regular file", path: file},
		{name: "empty", path: "", wantCode: errors.ErrInvalidRequest},
		{name: "missing", path: filepath.Join(dir, "nope.bib"), wantCode: errors.ErrFileNotFound},
		{name: "directory", path: dir, wantCode: errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateInputFile() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("ValidateInputFile() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
