package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a pannote error code.
type ErrorCode string

const (
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"         // 400
	ErrInvalidFilter          ErrorCode = "INVALID_FILTER"          // 400
	ErrInvalidTemplate        ErrorCode = "INVALID_TEMPLATE"        // 400
	ErrFileNotFound           ErrorCode = "FILE_NOT_FOUND"          // 404
	ErrNotFound               ErrorCode = "NOT_FOUND"               // 404
	ErrDocumentUnavailable    ErrorCode = "DOCUMENT_UNAVAILABLE"    // 422
	ErrBibliographyUnreadable ErrorCode = "BIBLIOGRAPHY_UNREADABLE" // 422
	ErrCancelled              ErrorCode = "CANCELLED"               // 499
	ErrInternal               ErrorCode = "INTERNAL"                // 500
)

// AnnoteError represents a structured error with code, status, and details.
type AnnoteError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *AnnoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AnnoteError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidFilter creates a 400 error for a malformed KEY=PATTERN filter.
func NewInvalidFilter(filter, reason string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrInvalidFilter,
		Status:  400,
		Message: fmt.Sprintf("invalid filter %q: %s", filter, reason),
		Details: map[string]any{"filter": filter},
	}
}

// NewInvalidTemplate creates a 400 error for a citation template without exactly one %s slot.
func NewInvalidTemplate(template string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrInvalidTemplate,
		Status:  400,
		Message: fmt.Sprintf("citation template must contain exactly one %%s slot: %q", template),
		Details: map[string]any{"template": template},
	}
}

// NewFileNotFound creates a 404 error for a missing input or output file.
func NewFileNotFound(path string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNotFound creates a 404 error for a record that is not in the result set.
func NewNotFound(identifier string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("work not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDocumentUnavailable creates a 422 error for a PDF that is missing, corrupt or unsupported.
// Callers in the extraction pipeline recover from it by treating the document as unannotated.
func NewDocumentUnavailable(path string, cause error) *AnnoteError {
	msg := fmt.Sprintf("document unavailable: %s", path)
	if cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, cause)
	}
	return &AnnoteError{
		Code:    ErrDocumentUnavailable,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   cause,
	}
}

// NewBibliographyUnreadable creates a 422 error for a bibliography that cannot be read or parsed.
func NewBibliographyUnreadable(path string, cause error) *AnnoteError {
	msg := fmt.Sprintf("cannot read bibliography: %s", path)
	if cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, cause)
	}
	return &AnnoteError{
		Code:    ErrBibliographyUnreadable,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   cause,
	}
}

// NewCancelled creates a 499 error when an operation is abandoned because its context ended.
func NewCancelled(operation string) *AnnoteError {
	return &AnnoteError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *AnnoteError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &AnnoteError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) an AnnoteError with the given code.
func Is(err error, code ErrorCode) bool {
	var aErr *AnnoteError
	if stderrors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}
