package encoding

import (
	"encoding/json"

	"ervault/internal/domain"
)

// CanonicalEncoder implements domain.ChainEncoder over canonical JSON.
// Digests are hex strings and instants RFC 3339 with nanoseconds, so the
// same chain sequence always encodes to the same bytes.
type CanonicalEncoder struct{}

func (CanonicalEncoder) EncodeChain(links []domain.ArchiveChainLink) ([]byte, error) {
	if links == nil {
		links = []domain.ArchiveChainLink{}
	}
	payload, err := json.Marshal(links)
	if err != nil {
		return nil, err
	}
	return CanonicalizeJSON(payload)
}
