package ops

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/record"
	"github.com/hpungsan/pannote/internal/render"
)

// ConvertInput contains parameters for the Convert operation.
type ConvertInput struct {
	Path string // saved record set; .yaml/.yml is read as YAML, anything else as JSON
}

// ConvertOutput contains the result of the Convert operation.
type ConvertOutput struct {
	Works []record.AnnotatedWork `json:"works"`
}

// Convert loads a record set previously written by the JSON or YAML
// renderer so it can be rendered again in another format.
func Convert(input ConvertInput) (*ConvertOutput, error) {
	if err := ValidateInputFile(input.Path); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.AnnoteError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	defer f.Close()

	var works []record.AnnotatedWork
	switch strings.ToLower(filepath.Ext(input.Path)) {
	case ".yaml", ".yml":
		data, rerr := io.ReadAll(f)
		if rerr != nil {
			return nil, errors.NewInternal(rerr)
		}
		works, err = render.ParseYAML(data)
	default:
		works, err = render.ParseJSON(f)
	}
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s is not a saved record set: %v", input.Path, err))
	}
	if works == nil {
		works = []record.AnnotatedWork{}
	}
	return &ConvertOutput{Works: works}, nil
}
