package tsa

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ervault/internal/domain"
)

const maxOracleResponseBytes = 64 * 1024

// HTTPOracle requests timestamps from a remote timestamping service over
// a small JSON protocol. Network failures, timeouts, and provider errors
// surface as wrapped errors; retries belong to the caller.
type HTTPOracle struct {
	baseURL string
	httpDo  func(*http.Request) (*http.Response, error)
}

func NewHTTPOracle(baseURL string, httpClient *http.Client) (*HTTPOracle, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("oracle base url is required")
	}
	doer := http.DefaultClient.Do
	if httpClient != nil {
		doer = httpClient.Do
	}
	return &HTTPOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  doer,
	}, nil
}

type timestampRequest struct {
	Digest    string `json:"digest"`
	Algorithm string `json:"algorithm"`
}

type timestampResponse struct {
	Digest    string    `json:"digest"`
	IssuedAt  time.Time `json:"issued_at"`
	Algorithm string    `json:"algorithm"`
}

func (o *HTTPOracle) Issue(ctx context.Context, digest []byte, algorithm string) (domain.Timestamp, error) {
	if len(digest) == 0 {
		return domain.Timestamp{}, errors.New("digest is required")
	}
	if algorithm == "" {
		return domain.Timestamp{}, errors.New("algorithm is required")
	}

	body, err := json.Marshal(timestampRequest{
		Digest:    hex.EncodeToString(digest),
		Algorithm: algorithm,
	})
	if err != nil {
		return domain.Timestamp{}, err
	}

	url := o.baseURL + "/api/v1/timestamps"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Timestamp{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpDo(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Timestamp{}, fmt.Errorf("timestamp oracle timeout: %w", err)
		}
		return domain.Timestamp{}, fmt.Errorf("timestamp oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxOracleResponseBytes))
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("timestamp oracle response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Timestamp{}, fmt.Errorf("timestamp oracle returned status %d", resp.StatusCode)
	}

	var parsed timestampResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.Timestamp{}, fmt.Errorf("timestamp oracle response invalid: %w", err)
	}
	echoed, err := hex.DecodeString(parsed.Digest)
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("timestamp oracle digest invalid: %w", err)
	}
	if !bytes.Equal(echoed, digest) {
		return domain.Timestamp{}, errors.New("timestamp oracle certified a different digest")
	}
	if parsed.IssuedAt.IsZero() {
		return domain.Timestamp{}, errors.New("timestamp oracle omitted issuance time")
	}
	if parsed.Algorithm != "" && parsed.Algorithm != algorithm {
		return domain.Timestamp{}, errors.New("timestamp oracle certified a different algorithm")
	}

	return domain.Timestamp{
		Digest:    append(domain.HexBytes(nil), digest...),
		At:        parsed.IssuedAt.UTC(),
		Algorithm: algorithm,
	}, nil
}
