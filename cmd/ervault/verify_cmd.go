package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ervault/internal/digest"
	"ervault/internal/domain"
	"ervault/internal/encoding"
	"ervault/internal/usecase"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var claimsArg string
	var allowReuse bool
	var maxAgeDays int

	fs.StringVar(&inPath, "in", "", "record file")
	fs.StringVar(&claimsArg, "claims", "", "claims as hex:alg pairs, comma-separated, one per chain link")
	fs.BoolVar(&allowReuse, "allow-alg-reuse", false, "accept consecutive links under the same algorithm")
	fs.IntVar(&maxAgeDays, "max-age-days", 0, "reject records whose final timestamp is older (0 disables)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || claimsArg == "" {
		fmt.Fprintln(os.Stderr, "verify requires --in and --claims")
		return 1
	}

	var record domain.EvidenceRecord
	if err := readJSONFile(inPath, &record); err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", inPath, err)
		return 1
	}
	claims, err := parseClaims(claimsArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse claims: %v\n", err)
		return 1
	}

	policy := usecase.DefaultVerifyPolicy()
	policy.RequireAlgorithmChange = !allowReuse
	if maxAgeDays > 0 {
		policy.MaxTimestampAge = time.Duration(maxAgeDays) * 24 * time.Hour
	}
	uc := &usecase.VerifyRecord{
		Digests: digest.NewRegistry(),
		Encoder: encoding.CanonicalEncoder{},
		Policy:  policy,
	}
	result, err := uc.Execute(context.Background(), record, claims)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	if err := writeJSON(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "write result: %v\n", err)
		return 1
	}
	if !result.Passed {
		return 1
	}
	return 0
}

func parseClaims(arg string) ([]usecase.Claim, error) {
	parts := strings.Split(arg, ",")
	claims := make([]usecase.Claim, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, ":", 2)
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
			return nil, fmt.Errorf("claim %q is not hex:alg", part)
		}
		dgst, err := hex.DecodeString(pair[0])
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", part, err)
		}
		claims = append(claims, usecase.Claim{Digest: dgst, Algorithm: pair[1]})
	}
	if len(claims) == 0 {
		return nil, fmt.Errorf("no claims given")
	}
	return claims, nil
}
