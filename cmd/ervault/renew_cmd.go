package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ervault/internal/digest"
	"ervault/internal/domain"
	"ervault/internal/encoding"
	"ervault/internal/tsa"
	"ervault/internal/usecase"
)

func runRenew(args []string) int {
	fs := flag.NewFlagSet("renew", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var alg string
	var digests string
	var suffix string

	fs.StringVar(&alg, "alg", "", "new digest algorithm")
	fs.StringVar(&digests, "digests", "", "new digests per record: groups split by ';', digests within a group by ','")
	fs.StringVar(&suffix, "suffix", ".renewed.json", "output file suffix")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	paths := fs.Args()
	if alg == "" || digests == "" || len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "renew requires --alg, --digests, and at least one record file")
		return 1
	}

	groups := strings.Split(digests, ";")
	if len(groups) == 1 && len(paths) > 1 {
		// One group renews every record with the same digests.
		for len(groups) < len(paths) {
			groups = append(groups, groups[0])
		}
	}
	if len(groups) != len(paths) {
		fmt.Fprintf(os.Stderr, "got %d digest groups for %d records\n", len(groups), len(paths))
		return 1
	}

	records := make([]domain.EvidenceRecord, len(paths))
	inputs := make([]usecase.RenewalInput, len(paths))
	for i, path := range paths {
		if err := readJSONFile(path, &records[i]); err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			return 1
		}
		newDigests, err := parseHexList(groups[i])
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse digests for %s: %v\n", path, err)
			return 1
		}
		inputs[i] = usecase.RenewalInput{Record: &records[i], NewDigests: newDigests}
	}

	uc := &usecase.RenewRecords{
		Digests: digest.NewRegistry(),
		Encoder: encoding.CanonicalEncoder{},
		Oracle:  &tsa.LocalOracle{},
	}
	if _, err := uc.Execute(context.Background(), inputs, alg); err != nil {
		fmt.Fprintf(os.Stderr, "renew records: %v\n", err)
		return 1
	}

	for i, path := range paths {
		out := strings.TrimSuffix(path, ".json") + suffix
		if err := writeJSONFile(out, records[i]); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
			return 1
		}
		fmt.Println(out)
	}
	return 0
}
