package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uniplaces/carbon"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/document"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// notesTitle stamps the HTML page title with the local time.
func notesTitle() string {
	return "Notes " + carbon.Now().DateTimeString()
}

func main() {
	d := deps{
		docs:   &document.PDFService{},
		parser: bib.BibTeX{},
		cfg:    config.DefaultConfig(),
		title:  notesTitle,
	}

	// Help and version must work even with a broken config
	if !isHelpOrVersion() {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
			os.Exit(1)
		}
		d.cfg = cfg
	}

	app := newCLIApp(d)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var exitErr cli.ExitCoder
		if stderrors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

// loadConfig merges ~/.pannote/config.json with the nearest repo
// .pannote/config.json, then applies .env and PANNOTE_* overrides.
func loadConfig() (*config.Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithRepo(filepath.Join(homeDir, ".pannote"), cwd)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}
