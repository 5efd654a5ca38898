package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/db"
	"github.com/hpungsan/pannote/internal/document"
	"github.com/hpungsan/pannote/internal/document/documenttest"
	"github.com/hpungsan/pannote/internal/geometry"
)

const testBib = `@article{smith2020,
  author = {Smith, J.},
  title = {Quantum Effects},
  year = {2020},
  file = {:smith2020.pdf:PDF}
}

@article{lee2022,
  author = {Lee, C.},
  title = {Unannotated},
  year = {2022}
}
`

const fixedTitle = "Notes 2026-10-19 09:00:00"

var testQuad = geometry.Quad{{X: 0.1, Y: 0.1}, {X: 0.5, Y: 0.1}, {X: 0.5, Y: 0.2}, {X: 0.1, Y: 0.2}}

type testEnv struct {
	dir     string
	bibPath string
	pdfDir  string
	docs    *documenttest.Service
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	bibPath := filepath.Join(dir, "refs.bib")
	require.NoError(t, os.WriteFile(bibPath, []byte(testBib), 0600))
	pdfDir := filepath.Join(dir, "pdfs")

	page := &documenttest.Page{
		Width: 100, Height: 100,
		Annots: []document.Annot{documenttest.Highlight("D:20200101", "key result", testQuad)},
		Texts:  map[geometry.Rect]string{geometry.MapQuad(testQuad, 100, 100): "quantum effects"},
	}
	docs := documenttest.New(map[string]*documenttest.Document{
		filepath.Join(pdfDir, "smith2020.pdf"): {Pages: []*documenttest.Page{page}},
		"paper.pdf":                            {Pages: []*documenttest.Page{page}},
	})

	return &testEnv{dir: dir, bibPath: bibPath, pdfDir: pdfDir, docs: docs}
}

// run executes the CLI with args and returns what it wrote to stdout.
func (env *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(deps{
		docs:   env.docs,
		parser: bib.BibTeX{},
		cfg:    config.DefaultConfig(),
		title:  func() string { return fixedTitle },
	})
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(append([]string{"pannote"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec cli.ExitCoder
	if stderrors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestCLIBibliography_Text(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Equal(t, "Smith, J., 2020, ?, smith2020\nQuantum Effects\np1, quantum effects\n=>  key result\n", out)
}

func TestCLIBibliography_JSON(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "--json", env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Contains(t, out, `"ID": "smith2020"`)
	require.Contains(t, out, `"journal": null`)
	require.NotContains(t, out, "lee2022")
}

func TestCLIBibliography_CiteImpliesAll(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "--cite-as", `\cite{%s}`, env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Equal(t, "\\cite{lee2022}\n\\cite{smith2020}\n", out)
}

func TestCLIBibliography_KeyFieldDoesNotReplaceCitationKey(t *testing.T) {
	env := setupTest(t)
	bibPath := filepath.Join(env.dir, "sorted.bib")
	require.NoError(t, os.WriteFile(bibPath, []byte(`@article{smith2020,
  author = {Smith, J.},
  key = {Smith},
  year = {2020}
}

@article{lee2022,
  author = {Lee, C.},
  key = {Aaa},
  year = {2022}
}
`), 0600))

	for i := 0; i < 20; i++ {
		out, err := env.run(t, "--cite-as", `\cite{%s}`, bibPath, env.pdfDir)
		require.NoError(t, err)
		require.Equal(t, "\\cite{lee2022}\n\\cite{smith2020}\n", out)
	}

	out, err := env.run(t, "--json", "--all", bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Contains(t, out, `"ID": "smith2020"`)
	require.Contains(t, out, `"key": "Smith"`)
}

func TestCLIBibliography_FilterWithComma(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "--all", "--cite-as", `\cite{%s}`, "--filter", "year=^20{1,2}22$", env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Equal(t, "\\cite{lee2022}\n", out)
}

func TestCLIBibliography_EmptyResultExitsZero(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "--filter", "year=^1999$", env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestCLIBibliography_HTML(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "--html", env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Contains(t, out, "<title>"+fixedTitle+"</title>")
	require.Contains(t, out, "#page=1")
}

func TestCLILoose(t *testing.T) {
	env := setupTest(t)

	out, err := env.run(t, "paper.pdf")
	require.NoError(t, err)
	require.Equal(t, "?, ?, ?, ?\n?\np1, quantum effects\n=>  key result\n", out)
}

func TestCLIArity(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "three arguments", args: []string{env.bibPath, env.pdfDir, "extra"}},
		{name: "convert without file", args: []string{"convert"}},
		{name: "serve with one argument", args: []string{"serve", env.bibPath}},
		{name: "flag after positional arguments", args: []string{env.bibPath, env.pdfDir, "--json"}},
		{name: "flag after loose file", args: []string{"paper.pdf", "--json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if got := exitCode(err); got != 2 {
				t.Errorf("exit code = %d, want 2 (err: %v)", got, err)
			}
		})
	}

	_, err := env.run(t, env.bibPath, env.pdfDir, "--json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "flag --json given after positional arguments")
	require.Empty(t, env.docs.Opened())
}

func TestCLIInvocationErrors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "two formats", args: []string{"--json", "--yaml", env.bibPath, env.pdfDir}, code: "[INVALID_REQUEST]"},
		{name: "filter without equals", args: []string{"--filter", "year", env.bibPath, env.pdfDir}, code: "[INVALID_FILTER]"},
		{name: "bad regexp", args: []string{"--filter", "year=(", env.bibPath, env.pdfDir}, code: "[INVALID_FILTER]"},
		{name: "cite template without slot", args: []string{"--cite-as", `\cite{}`, env.bibPath, env.pdfDir}, code: "[INVALID_TEMPLATE]"},
		{name: "missing bibliography", args: []string{env.bibPath + ".missing", env.pdfDir}, code: "[BIBLIOGRAPHY_UNREADABLE]"},
		{name: "glob without matches", args: []string{filepath.Join(env.dir, "*.djvu")}, code: "[FILE_NOT_FOUND]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if got := exitCode(err); got != 1 {
				t.Fatalf("exit code = %d, want 1 (err: %v)", got, err)
			}
			if !strings.Contains(err.Error(), tt.code) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.code)
			}
		})
	}

	if opened := env.docs.Opened(); len(opened) != 0 {
		t.Errorf("invalid invocations opened documents: %v", opened)
	}
}

func TestCLIOutputFile(t *testing.T) {
	env := setupTest(t)
	outPath := filepath.Join(env.dir, "notes.json")

	out, err := env.run(t, "--json", "-o", outPath, env.bibPath, env.pdfDir)
	require.NoError(t, err)
	require.Empty(t, out, "stdout should stay empty with --output")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"ID": "smith2020"`)

	// The saved record set converts to another format
	out, err = env.run(t, "convert", "--cite-as", `\cite{%s}`, outPath)
	require.NoError(t, err)
	require.Equal(t, "\\cite{smith2020}\n", out)
}

func TestCLISQLiteExport(t *testing.T) {
	env := setupTest(t)
	dbPath := filepath.Join(env.dir, "notes.db")

	_, err := env.run(t, "--sqlite", dbPath, env.bibPath, env.pdfDir)
	require.NoError(t, err)
	_, err = env.run(t, "--sqlite", dbPath, "paper.pdf")
	require.NoError(t, err)

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer database.Close()

	var runs, works, annotations int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM works").Scan(&works))
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM annotations").Scan(&annotations))
	require.Equal(t, 2, runs)
	require.Equal(t, 2, works)
	require.Equal(t, 2, annotations)

	var mode string
	require.NoError(t, database.QueryRow("SELECT mode FROM runs r JOIN works w ON w.run_id = r.id WHERE w.cite_key IS NULL").Scan(&mode))
	require.Equal(t, db.ModeLoose, mode)
}
