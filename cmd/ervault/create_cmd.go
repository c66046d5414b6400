package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"ervault/internal/digest"
	"ervault/internal/render"
	"ervault/internal/tsa"
	"ervault/internal/usecase"
)

func runCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var alg string
	var digests string
	var outDir string
	var showTree bool

	fs.StringVar(&alg, "alg", digest.AlgSHA256, "digest algorithm")
	fs.StringVar(&digests, "digests", "", "comma-separated hex digests to archive")
	fs.StringVar(&outDir, "out-dir", ".", "directory for the record files")
	fs.BoolVar(&showTree, "tree", false, "print the hash tree")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	leaves, err := parseHexList(digests)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse digests: %v\n", err)
		return 1
	}
	if len(leaves) == 0 {
		fmt.Fprintln(os.Stderr, "create requires at least one digest")
		return 1
	}

	registry := digest.NewRegistry()
	combiner, err := registry.Combiner(alg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	uc := &usecase.CreateRecord{Oracle: &tsa.LocalOracle{}}
	records, tree, err := uc.ExecuteBatch(context.Background(), combiner, leaves)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create records: %v\n", err)
		return 1
	}

	for i, record := range records {
		path := filepath.Join(outDir, fmt.Sprintf("record-%d.json", i+1))
		if err := writeJSONFile(path, record); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			return 1
		}
		fmt.Println(path)
	}
	if showTree {
		_ = render.Fprint(os.Stdout, render.Tree(tree, render.Options{}))
	}
	return 0
}
