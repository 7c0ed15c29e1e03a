package object

import (
	"errors"
	"strings"
	"testing"
)

func TestParseIDRoundTrip(t *testing.T) {
	hexes := []string{
		"0000000000000000000000000000000000000000",
		"da39a3ee5e6b4b0d3255bfef95601890afd80709",
		"ffffffffffffffffffffffffffffffffffffffff",
	}
	for _, h := range hexes {
		id, err := ParseID(h)
		if err != nil {
			t.Fatalf("ParseID(%q): %v", h, err)
		}
		if id.String() != h {
			t.Errorf("round trip: got %q, want %q", id.String(), h)
		}
	}
}

func TestParseIDUppercaseNormalized(t *testing.T) {
	id, err := ParseID("DA39A3EE5E6B4B0D3255BFEF95601890AFD80709")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if id.String() != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("expected lowercase hex, got %q", id.String())
	}
}

func TestParseIDErrors(t *testing.T) {
	cases := []string{
		"",
		"da39",
		strings.Repeat("g", HexSize),
		strings.Repeat("a", HexSize+2),
	}
	for _, c := range cases {
		if _, err := ParseID(c); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseID(%q): got %v, want ErrInvalidArgument", c, err)
		}
	}
}

func TestIDFromBytes(t *testing.T) {
	raw := make([]byte, IDSize)
	raw[0] = 0xab
	id, err := IDFromBytes(raw)
	if err != nil {
		t.Fatalf("IDFromBytes: %v", err)
	}
	if !strings.HasPrefix(id.String(), "ab") {
		t.Errorf("unexpected hex %q", id.String())
	}

	if _, err := IDFromBytes(raw[:IDSize-1]); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short input: got %v, want ErrInvalidArgument", err)
	}
}

func TestIDOrdering(t *testing.T) {
	a, _ := ParseID("0000000000000000000000000000000000000001")
	b, _ := ParseID("0000000000000000000000000000000000000002")
	if !a.Less(b) || b.Less(a) {
		t.Error("byte-wise ordering broken")
	}
	if a.Compare(a) != 0 {
		t.Error("Compare(self) != 0")
	}
}

func TestPrefixMatches(t *testing.T) {
	id, _ := ParseID("da39a3ee5e6b4b0d3255bfef95601890afd80709")

	p, err := ParsePrefix("da39")
	if err != nil {
		t.Fatalf("ParsePrefix: %v", err)
	}
	if !p.Matches(id) {
		t.Error("prefix should match")
	}

	q, _ := ParsePrefix("db")
	if q.Matches(id) {
		t.Error("prefix should not match")
	}
}

func TestParsePrefixErrors(t *testing.T) {
	for _, c := range []string{"", "xyz", strings.Repeat("a", HexSize+1)} {
		if _, err := ParsePrefix(c); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParsePrefix(%q): got %v, want ErrInvalidArgument", c, err)
		}
	}
}
