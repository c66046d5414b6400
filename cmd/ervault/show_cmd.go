package main

import (
	"flag"
	"fmt"
	"os"

	"ervault/internal/domain"
	"ervault/internal/render"
)

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	fs.StringVar(&inPath, "in", "", "record file")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "show requires --in")
		return 1
	}

	var record domain.EvidenceRecord
	if err := readJSONFile(inPath, &record); err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		return 1
	}
	if err := render.Fprint(os.Stdout, render.Record(record, render.Options{})); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		return 1
	}
	return 0
}
