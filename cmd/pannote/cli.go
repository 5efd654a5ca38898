package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/db"
	"github.com/hpungsan/pannote/internal/document"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/extract"
	"github.com/hpungsan/pannote/internal/mcp"
	"github.com/hpungsan/pannote/internal/ops"
	"github.com/hpungsan/pannote/internal/record"
	"github.com/hpungsan/pannote/internal/render"
	"github.com/hpungsan/pannote/internal/web"
)

const usage = `usage: pannote [flags] <pdf-file|glob>
       pannote [flags] <bib-file> <pdf-dir>
flags must come before the positional arguments`

// deps are the collaborators the commands run against; tests swap in a
// scripted document service and a fixed title.
type deps struct {
	docs   document.Service
	parser bib.Parser
	cfg    *config.Config
	title  func() string
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d deps) *cli.App {
	if d.cfg == nil {
		d.cfg = config.DefaultConfig()
	}
	if d.title == nil {
		d.title = func() string { return "Notes" }
	}

	app := &cli.App{
		Name:      "pannote",
		Usage:     "Extract PDF highlight annotations and cross-reference them with a BibTeX bibliography",
		UsageText: usage,
		Version:   Version,
		ErrWriter: os.Stderr,
		Flags: append(formatFlags(),
			&cli.StringSliceFlag{Name: "filter", Usage: "Keep entries whose field KEY contains a match for regexp PATTERN (KEY=PATTERN, repeatable)"},
			&cli.BoolFlag{Name: "all", Usage: "Include matching entries with no annotations and no review"},
			&cli.StringFlag{Name: "sqlite", Usage: "Also export the records to this SQLite file"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		),
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			return nil
		},
		Action: func(c *cli.Context) error {
			if arg, ok := trailingFlag(c.Args().Slice()); ok {
				return cli.Exit(fmt.Sprintf("flag %s given after positional arguments\n%s", arg, usage), 2)
			}
			switch c.NArg() {
			case 1:
				return runLoose(c, d, c.Args().First())
			case 2:
				return runBibliography(c, d, c.Args().Get(0), c.Args().Get(1))
			}
			return cli.Exit(usage, 2)
		},
		Commands: []*cli.Command{
			convertCmd(d),
			serveCmd(d),
			mcpCmd(d),
		},
		// Patterns may contain commas, e.g. "a{1,3}"
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// trailingFlag reports the first positional argument that looks like a flag.
// Flag parsing stops at the first positional argument, so `pannote refs.bib
// pdfs --json` would otherwise treat "--json" as a path.
func trailingFlag(args []string) (string, bool) {
	for _, a := range args {
		if len(a) > 1 && a[0] == '-' {
			return a, true
		}
	}
	return "", false
}

// formatFlags returns the output-format flags shared by the root command
// and convert.
func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		&cli.BoolFlag{Name: "yaml", Usage: "Output YAML"},
		&cli.BoolFlag{Name: "html", Usage: "Output a standalone HTML page"},
		&cli.StringFlag{Name: "cite-as", Usage: "Output one citation per entry using TEMPLATE, e.g. '\\cite{%s}' (implies --all)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write output to this file instead of stdout"},
	}
}

// runBibliography handles `pannote <bib-file> <pdf-dir>`.
func runBibliography(c *cli.Context, d deps, bibPath, pdfDir string) error {
	filters, err := ops.ParseFilters(c.StringSlice("filter"))
	if err != nil {
		return outputError(err)
	}
	r, format, err := selectRenderer(c, d)
	if err != nil {
		return outputError(err)
	}
	includeAll := c.Bool("all") || format == render.FormatCite

	out, err := ops.Collect(c.Context, extract.New(d.docs, nil), d.parser, d.cfg, ops.CollectInput{
		BibPath:    bibPath,
		PDFDir:     pdfDir,
		Filters:    filters,
		IncludeAll: includeAll,
	})
	if err != nil {
		return outputError(err)
	}
	slog.Debug("collected", "entries", out.Entries, "matched", out.Matched, "scanned", out.Scanned, "works", len(out.Works))

	if err := emit(c, r, out.Works); err != nil {
		return err
	}
	return exportSQLite(c, out.Works, db.RunMeta{
		Mode:       db.ModeBibliography,
		BibPath:    bibPath,
		PDFDir:     pdfDir,
		Filters:    c.StringSlice("filter"),
		IncludeAll: includeAll,
	})
}

// runLoose handles `pannote <pdf-file|glob>`.
func runLoose(c *cli.Context, d deps, pattern string) error {
	if len(c.StringSlice("filter")) > 0 {
		slog.Warn("--filter is ignored for bare PDF files: they have no bibliographic fields")
	}
	r, _, err := selectRenderer(c, d)
	if err != nil {
		return outputError(err)
	}

	out, err := ops.Loose(c.Context, extract.New(d.docs, nil), ops.LooseInput{Paths: []string{pattern}})
	if err != nil {
		return outputError(err)
	}

	if err := emit(c, r, out.Works); err != nil {
		return err
	}
	return exportSQLite(c, out.Works, db.RunMeta{Mode: db.ModeLoose})
}

// convertCmd creates the convert command.
func convertCmd(d deps) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-render a saved JSON or YAML record set in another format",
		ArgsUsage: "<works.json|works.yaml>",
		Flags:     formatFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: pannote convert [--json|--yaml|--html|--cite-as TEMPLATE] <works.json>", 2)
			}
			r, _, err := selectRenderer(c, d)
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Convert(ops.ConvertInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return emit(c, r, out.Works)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d deps) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Browse the notes for a bibliography in a local web UI",
		ArgsUsage: "<bib-file> <pdf-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: d.cfg.ServeBind, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: d.cfg.ServePort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: pannote serve [--bind ADDR] [--port N] <bib-file> <pdf-dir>", 2)
			}
			bibPath := c.Args().Get(0)
			if err := ops.ValidateInputFile(bibPath); err != nil {
				return outputError(err)
			}

			srv := web.NewServer(extract.New(d.docs, nil), d.parser, d.cfg, web.Options{
				BibPath: bibPath,
				PDFDir:  c.Args().Get(1),
				Title:   d.title(),
				Bind:    c.String("bind"),
				Port:    c.Int("port"),
			})
			if err := web.Run(srv, slog.Default()); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(d deps) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the annotation tools over MCP (stdio)",
		Action: func(c *cli.Context) error {
			h := mcp.NewHandlers(extract.New(d.docs, nil), d.parser, d.cfg)
			h.Title = d.title
			if err := mcp.Run(h, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// selectRenderer picks the renderer from the mutually exclusive format
// flags. A cite template is validated here, before any document is opened.
func selectRenderer(c *cli.Context, d deps) (render.Renderer, render.Format, error) {
	format := render.FormatText
	chosen := 0
	for _, f := range []render.Format{render.FormatJSON, render.FormatYAML, render.FormatHTML} {
		if c.Bool(string(f)) {
			format = f
			chosen++
		}
	}
	citeTemplate := c.String("cite-as")
	if citeTemplate != "" {
		format = render.FormatCite
		chosen++
	}
	if chosen > 1 {
		return nil, "", errors.NewInvalidRequest("--json, --yaml, --html and --cite-as are mutually exclusive")
	}

	opts := render.Options{CiteTemplate: citeTemplate}
	if format == render.FormatHTML {
		opts.Title = d.title()
	}
	r, err := render.New(format, opts)
	if err != nil {
		return nil, "", err
	}
	return r, format, nil
}

// emit renders works and writes them to --output or stdout.
func emit(c *cli.Context, r render.Renderer, works []record.AnnotatedWork) error {
	text, err := r.Render(works)
	if err != nil {
		return outputError(errors.NewInternal(err))
	}

	if path := c.String("output"); path != "" {
		res, err := ops.WriteOutput(ops.WriteOutputInput{Path: path, Content: text})
		if err != nil {
			return outputError(err)
		}
		slog.Debug("wrote output", "path", res.Path, "bytes", res.Bytes)
		return nil
	}

	if _, err := io.WriteString(c.App.Writer, text); err != nil {
		return outputError(errors.NewInternal(err))
	}
	return nil
}

// exportSQLite writes works to the --sqlite file, if one was given.
func exportSQLite(c *cli.Context, works []record.AnnotatedWork, meta db.RunMeta) error {
	path := c.String("sqlite")
	if path == "" {
		return nil
	}
	if err := ops.ValidateOutputPath(path); err != nil {
		return outputError(err)
	}

	database, err := db.Open(path)
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	defer database.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	runID, err := db.Export(ctx, database, works, meta)
	if err != nil {
		return outputError(err)
	}
	slog.Info("exported records", "path", path, "run_id", runID, "works", len(works))
	return nil
}

// outputError formats error for CLI.
func outputError(err error) error {
	var aErr *errors.AnnoteError
	if stderrors.As(err, &aErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", aErr.Code, aErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
