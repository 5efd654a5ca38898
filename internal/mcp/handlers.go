package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/extract"
	"github.com/hpungsan/pannote/internal/ops"
	"github.com/hpungsan/pannote/internal/record"
	"github.com/hpungsan/pannote/internal/render"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	ex     *extract.Extractor
	parser bib.Parser
	cfg    *config.Config

	// Title returns the HTML page title; it defaults to "Notes".
	Title func() string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ex *extract.Extractor, parser bib.Parser, cfg *config.Config) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handlers{ex: ex, parser: parser, cfg: cfg}
}

func (h *Handlers) logger() *slog.Logger {
	return h.ex.Log()
}

// CollectRequest represents the arguments for annotations_collect.
type CollectRequest struct {
	BibPath    string   `json:"bib_path"`
	PDFDir     string   `json:"pdf_dir"`
	Filters    []string `json:"filters,omitempty"`
	IncludeAll bool     `json:"include_all,omitempty"`
	Format     string   `json:"format,omitempty"`
}

// LooseRequest represents the arguments for annotations_loose.
type LooseRequest struct {
	Paths  []string `json:"paths"`
	Format string   `json:"format,omitempty"`
}

// CiteRequest represents the arguments for annotations_cite.
type CiteRequest struct {
	BibPath  string   `json:"bib_path"`
	PDFDir   string   `json:"pdf_dir,omitempty"`
	Template string   `json:"template"`
	Filters  []string `json:"filters,omitempty"`
}

// RenderResult is the payload returned by every tool.
type RenderResult struct {
	Format      string   `json:"format"`
	Count       int      `json:"count"`
	Output      string   `json:"output"`
	Unavailable []string `json:"unavailable,omitempty"`
}

// HandleCollect handles the annotations_collect tool call.
func (h *Handlers) HandleCollect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CollectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.PDFDir == "" {
		return errorResult(errors.NewInvalidRequest("pdf_dir is required")), nil
	}
	format, err := parseFormat(input.Format)
	if err != nil {
		return errorResult(err), nil
	}
	filters, err := ops.ParseFilters(input.Filters)
	if err != nil {
		return errorResult(err), nil
	}

	out, err := ops.Collect(ctx, h.ex, h.parser, h.cfg, ops.CollectInput{
		BibPath:    input.BibPath,
		PDFDir:     input.PDFDir,
		Filters:    filters,
		IncludeAll: input.IncludeAll,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return h.renderResult(format, "", out.Works, out.Unavailable)
}

// HandleLoose handles the annotations_loose tool call.
func (h *Handlers) HandleLoose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LooseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	format, err := parseFormat(input.Format)
	if err != nil {
		return errorResult(err), nil
	}

	out, err := ops.Loose(ctx, h.ex, ops.LooseInput{Paths: input.Paths})
	if err != nil {
		return errorResult(err), nil
	}
	return h.renderResult(format, "", out.Works, out.Unavailable)
}

// HandleCite handles the annotations_cite tool call. Every entry that
// passes the filters is cited, annotated or not.
func (h *Handlers) HandleCite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CiteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	// Validate the template before any document is opened
	if _, err := render.NewCite(input.Template); err != nil {
		return errorResult(err), nil
	}
	filters, err := ops.ParseFilters(input.Filters)
	if err != nil {
		return errorResult(err), nil
	}

	out, err := ops.Collect(ctx, h.ex, h.parser, h.cfg, ops.CollectInput{
		BibPath:    input.BibPath,
		PDFDir:     input.PDFDir,
		Filters:    filters,
		IncludeAll: true,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return h.renderResult(render.FormatCite, input.Template, out.Works, out.Unavailable)
}

func (h *Handlers) renderResult(format render.Format, citeTemplate string, works []record.AnnotatedWork, unavailable []string) (*mcp.CallToolResult, error) {
	title := "Notes"
	if h.Title != nil {
		title = h.Title()
	}
	r, err := render.New(format, render.Options{Title: title, CiteTemplate: citeTemplate})
	if err != nil {
		return errorResult(err), nil
	}
	text, err := r.Render(works)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	return successResult(RenderResult{
		Format:      string(format),
		Count:       len(works),
		Output:      text,
		Unavailable: unavailable,
	})
}

// parseFormat defaults to JSON, which suits tool clients better than text.
// Citation output has its own tool.
func parseFormat(s string) (render.Format, error) {
	if s == "" {
		return render.FormatJSON, nil
	}
	f, err := render.ParseFormat(s)
	if err != nil {
		return "", err
	}
	if f == render.FormatCite {
		return "", errors.NewInvalidRequest("use annotations_cite for citation output")
	}
	return f, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var aErr *errors.AnnoteError
	if stderrors.As(err, &aErr) {
		message := aErr.Message
		// Keep wrapper context such as "items[2]: ..."
		if err != error(aErr) && aErr.Code != errors.ErrInternal {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    aErr.Code,
			"message": message,
			"status":  aErr.Status,
		}
		if aErr.Code != errors.ErrInternal && aErr.Details != nil {
			errorObj["details"] = aErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
