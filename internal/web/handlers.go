package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/extract"
	"github.com/hpungsan/pannote/internal/ops"
	"github.com/hpungsan/pannote/internal/record"
	"github.com/hpungsan/pannote/internal/render"
)

// Handlers contains HTTP route handlers for the notes UI.
type Handlers struct {
	ex     *extract.Extractor
	parser bib.Parser
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
}

// NewHandlers returns handlers serving the bibliography named in opts.
func NewHandlers(ex *extract.Extractor, parser bib.Parser, cfg *config.Config, opts Options) *Handlers {
	return &Handlers{ex: ex, parser: parser, cfg: cfg, opts: opts, logger: ex.Log()}
}

// collect runs the bibliography pipeline with the request's
// filter= and all= query parameters.
func (h *Handlers) collect(r *http.Request) ([]record.AnnotatedWork, error) {
	filters, err := ops.ParseFilters(r.URL.Query()["filter"])
	if err != nil {
		return nil, err
	}
	out, err := ops.Collect(r.Context(), h.ex, h.parser, h.cfg, ops.CollectInput{
		BibPath:    h.opts.BibPath,
		PDFDir:     h.opts.PDFDir,
		Filters:    filters,
		IncludeAll: parseBoolParam(r, "all"),
	})
	if err != nil {
		return nil, err
	}
	return out.Works, nil
}

// HandleNotes renders the full notes page for GET /.
func (h *Handlers) HandleNotes(w http.ResponseWriter, r *http.Request) {
	works, err := h.collect(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderNotes(w, r, works)
}

// HandleWorksJSON serves the record set as JSON for GET /works.json.
func (h *Handlers) HandleWorksJSON(w http.ResponseWriter, r *http.Request) {
	works, err := h.collect(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	out, err := render.JSON{}.Render(works)
	if err != nil {
		h.renderError(w, r, errors.NewInternal(err))
		return
	}
	writeBody(w, http.StatusOK, "application/json", out)
}

// HandleWork serves GET /works/{key}: a single record, as HTML or as
// JSON when the client asks for it.
func (h *Handlers) HandleWork(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		h.renderError(w, r, errors.NewInvalidRequest("citation key is required"))
		return
	}

	works, err := h.collect(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	work, err := ops.FindWork(works, key)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		out, err := render.JSON{}.Render([]record.AnnotatedWork{*work})
		if err != nil {
			h.renderError(w, r, errors.NewInternal(err))
			return
		}
		writeBody(w, http.StatusOK, "application/json", out)
		return
	}
	h.renderNotes(w, r, []record.AnnotatedWork{*work})
}

func (h *Handlers) renderNotes(w http.ResponseWriter, r *http.Request, works []record.AnnotatedWork) {
	out, err := render.NewHTML(h.opts.Title).Render(works)
	if err != nil {
		h.renderError(w, r, errors.NewInternal(err))
		return
	}
	writeBody(w, http.StatusOK, "text/html; charset=utf-8", out)
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
