package aegisum_test

import (
	"errors"
	"strings"
	"testing"

	"aegminer/internal/services"
	"aegminer/internal/services/aegisum"
)

const validMiningInfo = `{
  "blocks": 18234,
  "currentblockweight": 4000,
  "difficulty": 0.0024413,
  "networkhashps": 125000.5,
  "pooledtx": 7,
  "chain": "main",
  "warnings": ""
}`

func TestParseMiningInfoRoundTrip(t *testing.T) {
	info, err := aegisum.ParseMiningInfo(validMiningInfo)
	if err != nil {
		t.Fatalf("ParseMiningInfo: %v", err)
	}
	if info.Blocks != 18234 {
		t.Fatalf("blocks: got %d", info.Blocks)
	}
	if info.CurrentBlockWeight != 4000 {
		t.Fatalf("currentblockweight: got %d", info.CurrentBlockWeight)
	}
	if info.Difficulty != 0.0024413 {
		t.Fatalf("difficulty: got %v", info.Difficulty)
	}
	if info.NetworkHashPS != 125000.5 {
		t.Fatalf("networkhashps: got %v", info.NetworkHashPS)
	}
	if info.PooledTx != 7 {
		t.Fatalf("pooledtx: got %d", info.PooledTx)
	}
	if info.Chain != "main" {
		t.Fatalf("chain: got %q", info.Chain)
	}
	if info.Warnings != "" {
		t.Fatalf("warnings: got %q", info.Warnings)
	}
}

func TestParseMiningInfoMissingField(t *testing.T) {
	raw := `{"blocks": 1, "currentblockweight": 2, "difficulty": 3.0, "networkhashps": 4.0, "pooledtx": 5, "chain": "main"}`
	_, err := aegisum.ParseMiningInfo(raw)
	if err == nil {
		t.Fatal("expected error for missing warnings field")
	}
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "warnings") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestParseMiningInfoWrongType(t *testing.T) {
	raw := strings.Replace(validMiningInfo, `"blocks": 18234`, `"blocks": "18234"`, 1)
	_, err := aegisum.ParseMiningInfo(raw)
	if err == nil {
		t.Fatal("expected error for wrong field type")
	}
	var malformed *aegisum.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedResponseError, got %T", err)
	}
	if !strings.Contains(malformed.Reason, "blocks") {
		t.Fatalf("reason should name the field: %q", malformed.Reason)
	}
}

func TestParseMiningInfoRejectsNonJSON(t *testing.T) {
	// The shape the original daemon UI fed to eval(): a Python dict literal.
	raw := `{'blocks': 1, 'chain': 'main'}`
	if _, err := aegisum.ParseMiningInfo(raw); !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed marker for non-JSON input, got %v", err)
	}
}

func TestParseMiningInfoToleratesUnknownFields(t *testing.T) {
	raw := strings.Replace(validMiningInfo, `"pooledtx": 7,`, `"pooledtx": 7, "errors": "",`, 1)
	info, err := aegisum.ParseMiningInfo(raw)
	if err != nil {
		t.Fatalf("ParseMiningInfo: %v", err)
	}
	if info.PooledTx != 7 {
		t.Fatalf("pooledtx: got %d", info.PooledTx)
	}
}

func TestParseMiningInfoEmpty(t *testing.T) {
	if _, err := aegisum.ParseMiningInfo("  \n"); !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed marker for empty input, got %v", err)
	}
}
