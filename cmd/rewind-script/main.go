// Package main runs Lua edit scripts against an in-memory document and
// prints the history they build.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/rewind"
	"github.com/dshills/rewind/internal/script"
	"github.com/dshills/rewind/journal"
	"github.com/dshills/rewind/textedit"
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
		initialText string
		asJSON      bool
		showTimes   bool
		showDoc     bool
		showVersion bool
	)

	flag.StringVar(&initialText, "text", "", "Initial document text")
	flag.BoolVar(&asJSON, "json", false, "Dump the history in journal form instead of the timeline")
	flag.BoolVar(&showTimes, "times", false, "Show entry timestamps in the timeline")
	flag.BoolVar(&showDoc, "doc", false, "Print the final document text before the timeline")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rewind-script - run a Lua edit script and print the history\n\n")
		fmt.Fprintf(os.Stderr, "Usage: rewind-script [options] script.lua\n\n")
		fmt.Fprintf(os.Stderr, "The script drives a text document through the global doc table:\n")
		fmt.Fprintf(os.Stderr, "  doc.insert(at, text)   doc.undo()    doc.jump(branch, index)\n")
		fmt.Fprintf(os.Stderr, "  doc.delete(at, count)  doc.redo()    doc.checkpoint() / commit / cancel\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("rewind-script %s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	eng := script.NewEngine(initialText)
	runner, err := script.NewRunner(eng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer runner.Close()

	if err := runner.RunFile(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if asJSON {
		data, err := journal.EncodeHistory(eng.History().Snapshot(), newCodec())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if showDoc {
		fmt.Println(eng.Document().Text())
	}
	opts := &rewind.DisplayOptions{Times: showTimes}
	if err := rewind.FormatHistory(os.Stdout, eng.History(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newCodec registers the textedit command set for the journal dump.
func newCodec() *journal.TypeCodec[*textedit.Document] {
	c := journal.NewTypeCodec[*textedit.Document]()
	c.Register("insert", func() rewind.Command[*textedit.Document] { return &textedit.Insert{} })
	c.Register("delete", func() rewind.Command[*textedit.Document] { return &textedit.Delete{} })
	c.Register("replace", func() rewind.Command[*textedit.Document] { return &textedit.Replace{} })
	return c
}
