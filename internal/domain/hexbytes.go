package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HexBytes is a byte string that serializes as lowercase hex, so digests
// survive JSON round-trips byte for byte.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("invalid hex digest: %w", err)
	}
	*h = decoded
	return nil
}

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}
