package ledger

import (
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	raw := "0:" + strings.Repeat("AB", 32)
	addr, err := ParseAddress(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr.Workchain != 0 {
		t.Fatalf("workchain mismatch: %d", addr.Workchain)
	}
	if addr.String() != strings.ToLower(raw) {
		t.Fatalf("string mismatch: %s", addr.String())
	}

	master, err := ParseAddress("-1:" + strings.Repeat("01", 32))
	if err != nil {
		t.Fatalf("parse masterchain: %v", err)
	}
	if master.Workchain != -1 || !master.Less(addr) {
		t.Fatalf("masterchain address should sort first")
	}
}

func TestParseAddressInvalid(t *testing.T) {
	inputs := []string{
		"",
		strings.Repeat("ab", 32),
		"0:" + strings.Repeat("ab", 31),
		"0:" + strings.Repeat("zz", 32),
		"300:" + strings.Repeat("ab", 32),
	}
	for _, input := range inputs {
		if _, err := ParseAddress(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestAddressTextRoundTrip(t *testing.T) {
	text, err := alice.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Address
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != alice {
		t.Fatalf("round-trip mismatch: %s != %s", decoded, alice)
	}
}
