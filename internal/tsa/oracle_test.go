package tsa

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestLocalOracleIssues(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o := &LocalOracle{Now: func() time.Time { return at }}
	ts, err := o.Issue(context.Background(), []byte("root"), "SHA256")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !bytes.Equal(ts.Digest, []byte("root")) {
		t.Fatal("issued timestamp must carry the requested digest")
	}
	if !ts.At.Equal(at) {
		t.Fatalf("issued at %v, want %v", ts.At, at)
	}
	if ts.Algorithm != "SHA256" {
		t.Fatalf("algorithm = %q, want SHA256", ts.Algorithm)
	}
}

func TestLocalOracleCopiesDigest(t *testing.T) {
	o := &LocalOracle{}
	in := []byte("root")
	ts, err := o.Issue(context.Background(), in, "SHA256")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	in[0] = 'x'
	if string(ts.Digest) != "root" {
		t.Fatal("oracle must copy the digest, not alias the caller's slice")
	}
}

func TestLocalOracleValidatesInput(t *testing.T) {
	o := &LocalOracle{}
	if _, err := o.Issue(context.Background(), nil, "SHA256"); err == nil {
		t.Fatal("expected error for empty digest")
	}
	if _, err := o.Issue(context.Background(), []byte("d"), ""); err == nil {
		t.Fatal("expected error for empty algorithm")
	}
}

func fakeResponder(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *HTTPOracle {
	t.Helper()
	o, err := NewHTTPOracle("http://tsa.example", nil)
	if err != nil {
		t.Fatalf("new oracle: %v", err)
	}
	o.httpDo = handler
	return o
}

func jsonResponse(status int, body any) *http.Response {
	payload, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(payload)),
	}
}

func TestHTTPOracleIssues(t *testing.T) {
	digest := []byte("tree-root")
	issued := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	o := fakeResponder(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", req.Method)
		}
		if !strings.HasSuffix(req.URL.String(), "/api/v1/timestamps") {
			t.Fatalf("unexpected URL %s", req.URL)
		}
		var body timestampRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Algorithm != "SHA512" {
			t.Fatalf("algorithm = %q, want SHA512", body.Algorithm)
		}
		return jsonResponse(http.StatusOK, timestampResponse{
			Digest:    body.Digest,
			IssuedAt:  issued,
			Algorithm: body.Algorithm,
		}), nil
	})
	ts, err := o.Issue(context.Background(), digest, "SHA512")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !bytes.Equal(ts.Digest, digest) {
		t.Fatal("timestamp must carry the requested digest")
	}
	if !ts.At.Equal(issued) {
		t.Fatalf("issued at %v, want %v", ts.At, issued)
	}
}

func TestHTTPOracleRejectsDigestSubstitution(t *testing.T) {
	o := fakeResponder(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, timestampResponse{
			Digest:   hex.EncodeToString([]byte("different")),
			IssuedAt: time.Now(),
		}), nil
	})
	if _, err := o.Issue(context.Background(), []byte("root"), "SHA256"); err == nil {
		t.Fatal("expected error when the oracle certifies a different digest")
	}
}

func TestHTTPOracleRejectsMissingIssuedAt(t *testing.T) {
	o := fakeResponder(t, func(req *http.Request) (*http.Response, error) {
		var body timestampRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		return jsonResponse(http.StatusOK, timestampResponse{Digest: body.Digest}), nil
	})
	if _, err := o.Issue(context.Background(), []byte("root"), "SHA256"); err == nil {
		t.Fatal("expected error when issuance time is omitted")
	}
}

func TestHTTPOracleSurfacesProviderErrors(t *testing.T) {
	o := fakeResponder(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, map[string]string{"error": "overloaded"}), nil
	})
	if _, err := o.Issue(context.Background(), []byte("root"), "SHA256"); err == nil {
		t.Fatal("expected error for a non-2xx status")
	}
}

func TestNewHTTPOracleValidatesBaseURL(t *testing.T) {
	if _, err := NewHTTPOracle("  ", nil); err == nil {
		t.Fatal("expected error for blank base URL")
	}
	o, err := NewHTTPOracle("http://tsa.example/", nil)
	if err != nil {
		t.Fatalf("new oracle: %v", err)
	}
	if o.baseURL != "http://tsa.example" {
		t.Fatalf("base URL not normalized: %q", o.baseURL)
	}
}
