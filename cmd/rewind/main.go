// Package main is the entry point for the rewind demo editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/rewind/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		journalPath string
		readOnly    bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&journalPath, "journal", "", "Journal file to load and save (overrides config)")
	flag.BoolVar(&readOnly, "readonly", false, "Refuse edits and journal writes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rewind - text editor demo with a branching undo history\n\n")
		fmt.Fprintf(os.Stderr, "Usage: rewind [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: ctrl+z undo, ctrl+y redo, ctrl+t history pane, ctrl+s save, ctrl+q quit.\n")
		fmt.Fprintf(os.Stderr, "In the pane: arrows select, enter jumps, p prunes, esc closes.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  rewind                            Edit with an in-memory history\n")
		fmt.Fprintf(os.Stderr, "  rewind -journal notes.journal     Persist the history across sessions\n")
		fmt.Fprintf(os.Stderr, "  rewind -readonly -journal notes.journal  Browse a journal without editing\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("rewind %s (%s)\n", version, commit)
		return 0
	}

	if configPath == "" {
		configPath = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	a, err := app.New(cfg, app.Options{Journal: journalPath, ReadOnly: readOnly})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Exit cleanly on SIGINT/SIGTERM so the terminal is restored.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		a.Quit()
	}()

	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
