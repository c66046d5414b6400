// Package tsa provides timestamp oracles: issuers of trusted-timestamp
// tokens over a digest. The core never inspects tokens beyond the digest,
// instant, and algorithm label.
package tsa

import (
	"context"
	"errors"
	"time"

	"ervault/internal/domain"
)

// LocalOracle issues timestamps from the local clock. It is the default
// oracle for tests, the CLI, and deployments that anchor trust elsewhere.
type LocalOracle struct {
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (o *LocalOracle) Issue(_ context.Context, digest []byte, algorithm string) (domain.Timestamp, error) {
	if len(digest) == 0 {
		return domain.Timestamp{}, errors.New("digest is required")
	}
	if algorithm == "" {
		return domain.Timestamp{}, errors.New("algorithm is required")
	}
	now := time.Now
	if o != nil && o.Now != nil {
		now = o.Now
	}
	return domain.Timestamp{
		Digest:    append(domain.HexBytes(nil), digest...),
		At:        now().UTC(),
		Algorithm: algorithm,
	}, nil
}
