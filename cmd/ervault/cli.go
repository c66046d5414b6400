package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "create":
		return runCreate(args[2:])
	case "renew":
		return runRenew(args[2:])
	case "verify":
		return runVerify(args[2:])
	case "show":
		return runShow(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "ervault"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s create --alg <algorithm> --digests <hex,hex,...> [--out-dir <dir>] [--tree]\n", name)
	fmt.Fprintf(os.Stderr, "  %s renew --alg <algorithm> --digests <hex,...[;hex,...]> [--suffix <s>] <record.json> [record.json ...]\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --in <record.json> --claims <hex:alg,hex:alg,...> [--allow-alg-reuse] [--max-age-days <n>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s show --in <record.json>\n", name)
}
