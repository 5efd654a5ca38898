// Package ops implements the pannote operations shared by the CLI, the web
// UI and the MCP server: collecting annotated works from a bibliography or
// from bare PDFs, converting saved record sets, and writing output.
package ops

import (
	"strings"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/record"
)

// FindWork returns the work whose citation key equals key.
func FindWork(works []record.AnnotatedWork, key string) (*record.AnnotatedWork, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.NewInvalidRequest("citation key is required")
	}
	for i := range works {
		if works[i].Key() == key {
			return &works[i], nil
		}
	}
	return nil, errors.NewNotFound(key)
}
