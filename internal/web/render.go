package web

import (
	"bytes"
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/hpungsan/pannote/internal/errors"
)

//go:embed templates/error.html
var templateFS embed.FS

var errorTemplate = template.Must(template.ParseFS(templateFS, "templates/error.html"))

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	Title      string
	StatusCode int
	Code       string
	Message    string
}

// renderError renders an error response with content negotiation.
func (h *Handlers) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var aErr *errors.AnnoteError
	if !stderrors.As(err, &aErr) {
		aErr = errors.NewInternal(err)
	}

	status := aErr.Status
	message := aErr.Message
	if status >= 500 {
		h.logger.Error("request failed", "path", req.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "path", req.URL.Path, "code", aErr.Code, "message", message)
	}

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    string(aErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	var buf bytes.Buffer
	data := ErrorPageData{
		Title:      fmt.Sprintf("Error %d", status),
		StatusCode: status,
		Code:       string(aErr.Code),
		Message:    message,
	}
	if err := errorTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("template execution error", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeBody(w, status, "text/html; charset=utf-8", buf.String())
}

func writeBody(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
