package domain

// PolicyInput is what the verification policy bundle sees: a summary of
// the record under verification plus the outcome of the core chain walk.
type PolicyInput struct {
	Record       PolicyRecord       `json:"record"`
	Verification PolicyVerification `json:"verification"`
}

// PolicyRecord summarizes an evidence record for policy evaluation.
type PolicyRecord struct {
	Version          int      `json:"version"`
	DigestAlgorithm  string   `json:"digest_algorithm"`
	ChainLength      int      `json:"chain_length"`
	ChainAlgorithms  []string `json:"chain_algorithms"`
	FinalTimestampAt string   `json:"final_timestamp_at"`
}

type PolicyVerification struct {
	Passed      bool   `json:"passed"`
	FailureKind string `json:"failure_kind,omitempty"`
	ChainIndex  int    `json:"chain_index"`
	AgeSeconds  int64  `json:"age_seconds"`
}

type PolicyDeny struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool         `json:"allow"`
	Deny  []PolicyDeny `json:"deny,omitempty"`
}

type PolicyEvaluation struct {
	BundleID   string       `json:"bundle_id,omitempty"`
	BundleHash string       `json:"bundle_hash"`
	Result     PolicyResult `json:"result"`
}
