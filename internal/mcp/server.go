// Package mcp exposes annotation collection as MCP tools over stdio.
package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"annotations"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var formatOption = mcp.WithString("format",
	mcp.Description("Output format: text, json, yaml or html (default json)"),
	mcp.Enum("text", "json", "yaml", "html"),
)

var collectToolDef = mcp.NewTool("annotations_collect",
	mcp.WithDescription("Collect highlight annotations for the entries of a BibTeX bibliography whose PDFs live in pdf_dir. Entries without annotations or a review are skipped unless include_all is set."),
	mcp.WithString("bib_path", mcp.Required(), mcp.Description("Path to the .bib file")),
	mcp.WithString("pdf_dir", mcp.Required(), mcp.Description("Directory that file references are resolved against")),
	mcp.WithArray("filters", mcp.Description("KEY=PATTERN regexp filters, all of which must match"), mcp.WithStringItems()),
	mcp.WithBoolean("include_all", mcp.Description("Keep matching entries with no annotations and no review")),
	formatOption,
)

var looseToolDef = mcp.NewTool("annotations_loose",
	mcp.WithDescription("Extract highlight annotations from PDF files without a bibliography. Paths may be doublestar glob patterns."),
	mcp.WithArray("paths", mcp.Required(), mcp.Description("PDF paths or glob patterns"), mcp.WithStringItems()),
	formatOption,
)

var citeToolDef = mcp.NewTool("annotations_cite",
	mcp.WithDescription("Render a citation command for every bibliography entry matching the filters, e.g. template \"\\\\cite{%s}\"."),
	mcp.WithString("bib_path", mcp.Required(), mcp.Description("Path to the .bib file")),
	mcp.WithString("pdf_dir", mcp.Description("Directory that file references are resolved against")),
	mcp.WithString("template", mcp.Required(), mcp.Description("Citation template with exactly one %s slot")),
	mcp.WithArray("filters", mcp.Description("KEY=PATTERN regexp filters, all of which must match"), mcp.WithStringItems()),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"annotations_collect": {
		def:     collectToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCollect },
	},
	"annotations_loose": {
		def:     looseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLoose },
	},
	"annotations_cite": {
		def:     citeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCite },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "annotations_cite" → "annotations").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the annotation tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration; unknown names are logged.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pannote",
		version,
		server.WithToolCapabilities(true),
	)

	cfg := h.cfg
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		h.logger().Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		h.logger().Warn("unknown types in disabled_types", "types", unknown)
	}

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(h *Handlers, version string) error {
	return server.ServeStdio(NewServer(h, version))
}
