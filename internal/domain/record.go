package domain

import (
	"encoding/json"
	"time"
)

// EvidenceRecordVersion is the record format produced by this library.
const EvidenceRecordVersion = 1

// Timestamp abstracts a trusted-timestamp token. The core only relies on
// the certified digest, the issuance instant, and the algorithm label.
type Timestamp struct {
	Digest    HexBytes  `json:"digest"`
	At        time.Time `json:"at"`
	Algorithm string    `json:"algorithm"`
}

// ArchiveChainLink is one timestamped authenticated path appended to an
// evidence record.
type ArchiveChainLink struct {
	Path      AuthenticatedPath `json:"path"`
	Timestamp Timestamp         `json:"timestamp"`
}

// EvidenceRecord is the append-only container of timestamped proof chains
// for one tracked artifact. Renewal may only append to Chain; existing
// links are never rewritten. CryptoInfo is opaque and passed through
// unmodified.
type EvidenceRecord struct {
	Version         int                `json:"version"`
	DigestAlgorithm string             `json:"digest_algorithm"`
	Chain           []ArchiveChainLink `json:"chain"`
	CryptoInfo      json.RawMessage    `json:"crypto_info,omitempty"`
}

// Clone returns a deep copy so callers can snapshot a record before
// mutation-by-renewal.
func (r EvidenceRecord) Clone() EvidenceRecord {
	out := r
	out.Chain = make([]ArchiveChainLink, len(r.Chain))
	for i, link := range r.Chain {
		out.Chain[i] = ArchiveChainLink{
			Path:      link.Path.Clone(),
			Timestamp: link.Timestamp,
		}
		out.Chain[i].Timestamp.Digest = cloneBytes(link.Timestamp.Digest)
	}
	if r.CryptoInfo != nil {
		out.CryptoInfo = append(json.RawMessage(nil), r.CryptoInfo...)
	}
	return out
}

func cloneBytes(in HexBytes) HexBytes {
	if in == nil {
		return nil
	}
	out := make(HexBytes, len(in))
	copy(out, in)
	return out
}
