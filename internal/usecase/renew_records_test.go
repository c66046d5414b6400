package usecase

import (
	"context"
	"reflect"
	"testing"

	"ervault/internal/domain"
	"ervault/internal/encoding"
)

func renewer(oracle *fixedOracle) *RenewRecords {
	return &RenewRecords{
		Digests: testRegistry(),
		Encoder: encoding.CanonicalEncoder{},
		Oracle:  oracle,
	}
}

func TestRenewAppendsOneLink(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	rec := records[2]
	before := rec.Clone()

	uc := renewer(oracle)
	_, err := uc.Execute(context.Background(), []RenewalInput{
		{Record: &rec, NewDigests: [][]byte{[]byte("H1")}},
	}, "ALG-B")
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if len(rec.Chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(rec.Chain))
	}
	if rec.DigestAlgorithm != "ALG-B" {
		t.Fatalf("algorithm = %q, want ALG-B", rec.DigestAlgorithm)
	}
	if !reflect.DeepEqual(rec.Chain[0], before.Chain[0]) {
		t.Fatal("renewal must not modify prior chain links")
	}
}

func TestRenewLeafBindsDigestToPriorHistory(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	rec := records[2]
	priorChain := rec.Clone().Chain

	uc := renewer(oracle)
	_, err := uc.Execute(context.Background(), []RenewalInput{
		{Record: &rec, NewDigests: [][]byte{[]byte("H1")}},
	}, "ALG-B")
	if err != nil {
		t.Fatalf("renew: %v", err)
	}

	encoded, err := encoding.CanonicalEncoder{}.EncodeChain(priorChain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	combiner := namedConcat{name: "ALG-B"}
	chainDigest := combiner.Combine(encoded, nil, false)
	want := combiner.Combine([]byte("H1"), chainDigest, true)
	if string(rec.Chain[1].Path.LeafDigest) != string(want) {
		t.Fatal("appended leaf must combine the new digest with the encoded prior chain")
	}
}

func TestRenewBatchSharesOneTreeAndOneTimestamp(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	callsAfterCreate := oracle.calls

	inputs := make([]RenewalInput, len(records))
	for i := range records {
		inputs[i] = RenewalInput{
			Record:     &records[i],
			NewDigests: [][]byte{[]byte("N1-" + records[i].Chain[0].Path.LeafDigest.String()), []byte("N2")},
		}
	}
	uc := renewer(oracle)
	tree, err := uc.Execute(context.Background(), inputs, "ALG-B")
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if oracle.calls != callsAfterCreate+1 {
		t.Fatalf("oracle calls during renewal = %d, want 1", oracle.calls-callsAfterCreate)
	}
	if tree.LeafCount() != 6 {
		t.Fatalf("pooled tree leaf count = %d, want 6 (two digests per record)", tree.LeafCount())
	}
	shared := records[0].Chain[1].Timestamp
	for i, rec := range records {
		if len(rec.Chain) != 2 {
			t.Fatalf("record %d chain length = %d, want 2", i, len(rec.Chain))
		}
		if !rec.Chain[1].Timestamp.At.Equal(shared.At) {
			t.Fatalf("record %d does not share the renewal timestamp", i)
		}
	}
}

func TestRenewPrimaryDigestIsProven(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	rec := records[0]
	priorChain := rec.Clone().Chain

	uc := renewer(oracle)
	_, err := uc.Execute(context.Background(), []RenewalInput{
		{Record: &rec, NewDigests: [][]byte{[]byte("primary"), []byte("secondary")}},
	}, "ALG-B")
	if err != nil {
		t.Fatalf("renew: %v", err)
	}

	encoded, err := encoding.CanonicalEncoder{}.EncodeChain(priorChain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	combiner := namedConcat{name: "ALG-B"}
	chainDigest := combiner.Combine(encoded, nil, false)
	want := combiner.Combine([]byte("primary"), chainDigest, true)
	if string(rec.Chain[1].Path.LeafDigest) != string(want) {
		t.Fatal("the appended link must prove the first digest's leaf")
	}
}

func TestRenewValidatesBeforeModifying(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	good := records[0]
	snapshot := good.Clone()
	bad := domain.EvidenceRecord{Version: domain.EvidenceRecordVersion}

	uc := renewer(oracle)
	_, err := uc.Execute(context.Background(), []RenewalInput{
		{Record: &good, NewDigests: [][]byte{[]byte("N1")}},
		{Record: &bad, NewDigests: [][]byte{[]byte("N2")}},
	}, "ALG-B")
	if err == nil {
		t.Fatal("expected error for a record with an empty chain")
	}
	if !reflect.DeepEqual(good, snapshot) {
		t.Fatal("a failed batch must leave every record untouched")
	}
}

func TestRenewRejectsBadInputs(t *testing.T) {
	oracle := newFixedOracle()
	records := createBatch(t, oracle)
	uc := renewer(oracle)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, nil, "ALG-B"); err == nil {
		t.Fatal("expected error for empty input set")
	}
	if _, err := uc.Execute(ctx, []RenewalInput{{Record: nil, NewDigests: [][]byte{[]byte("N")}}}, "ALG-B"); err == nil {
		t.Fatal("expected error for nil record")
	}
	if _, err := uc.Execute(ctx, []RenewalInput{{Record: &records[0]}}, "ALG-B"); err == nil {
		t.Fatal("expected error for empty digest set")
	}
	if _, err := uc.Execute(ctx, []RenewalInput{{Record: &records[0], NewDigests: [][]byte{[]byte("N")}}}, "NOPE"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
