package model

import (
	"testing"

	"github.com/holiman/uint256"

	"stakePool/internal/ledger"
)

func TestParseCoins(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"", 0},
		{"1", 1_000_000_000},
		{"4.3", 4_300_000_000},
		{" 0.2 ", 200_000_000},
		{"0.000000001", 1},
	}
	for _, tc := range cases {
		got, err := ParseCoins(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got.Uint64() != tc.want {
			t.Fatalf("parse %q = %d, want %d", tc.in, got.Uint64(), tc.want)
		}
	}
}

func TestParseCoinsRejects(t *testing.T) {
	for _, in := range []string{"-1", "abc", "0.0000000001", "1e80"} {
		if _, err := ParseCoins(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatCoins(t *testing.T) {
	if got := FormatCoins(*uint256.NewInt(4_300_000_000)); got != "4.3" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatCoins(uint256.Int{}); got != "0" {
		t.Fatalf("unexpected zero format: %s", got)
	}
}

func TestParseNano(t *testing.T) {
	v, err := ParseNano("1800000000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ledger.FormatNano(v) != "1800000000" {
		t.Fatalf("unexpected value: %s", ledger.FormatNano(v))
	}
	if _, err := ParseNano("-5"); err == nil {
		t.Fatalf("expected error for negative input")
	}
	if _, err := ParseNano("0x10"); err == nil {
		t.Fatalf("expected error for hex input")
	}
}
