package object

import (
	"bytes"
	"errors"
	"testing"
)

func mustParseID(t *testing.T, hex string) ID {
	t.Helper()
	id, err := ParseID(hex)
	if err != nil {
		t.Fatalf("ParseID(%q): %v", hex, err)
	}
	return id
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: 1700000000, Offset: "+0200"}
	line := sig.Marshal()
	if line != "Ada Lovelace <ada@example.com> 1700000000 +0200" {
		t.Fatalf("unexpected signature line %q", line)
	}
	parsed, err := ParseSignature(line)
	if err != nil {
		t.Fatalf("ParseSignature: %v", err)
	}
	if parsed != sig {
		t.Errorf("round trip: got %+v, want %+v", parsed, sig)
	}
}

func TestParseSignatureCorrupt(t *testing.T) {
	cases := []string{
		"no brackets at all",
		"Name <a@b>",
		"Name <a@b> notanumber +0000",
	}
	for _, c := range cases {
		if _, err := ParseSignature(c); !errors.Is(err, ErrCorrupt) {
			t.Errorf("ParseSignature(%q): got %v, want ErrCorrupt", c, err)
		}
	}
}

func TestMarshalTreeCanonicalOrder(t *testing.T) {
	blob := mustParseID(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	sub := mustParseID(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	// Entries deliberately out of order. Directory "foo" must sort after
	// file "foo.bar" because directory names compare as "foo/".
	tr := &Tree{Entries: []TreeEntry{
		{Mode: ModeDir, Name: "foo", ID: sub},
		{Mode: ModeFile, Name: "foo.bar", ID: blob},
		{Mode: ModeFile, Name: "a.txt", ID: blob},
	}}

	parsed, err := UnmarshalTree(MarshalTree(tr))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	gotNames := []string{}
	for _, e := range parsed.Entries {
		gotNames = append(gotNames, e.Name)
	}
	want := []string{"a.txt", "foo.bar", "foo"}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("order: got %v, want %v", gotNames, want)
		}
	}
}

func TestMarshalTreeDeterministic(t *testing.T) {
	blob := mustParseID(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	a := &Tree{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "x", ID: blob},
		{Mode: ModeFile, Name: "y", ID: blob},
	}}
	b := &Tree{Entries: []TreeEntry{
		{Mode: ModeFile, Name: "y", ID: blob},
		{Mode: ModeFile, Name: "x", ID: blob},
	}}
	if !bytes.Equal(MarshalTree(a), MarshalTree(b)) {
		t.Error("serialization depends on input entry order")
	}
}

func TestUnmarshalTreeCorrupt(t *testing.T) {
	cases := [][]byte{
		[]byte("100644"),                  // no space
		[]byte("100644 name"),             // no NUL
		[]byte("100644 name\x00shortid"),  // truncated id
		[]byte("100644 \x00" + string(make([]byte, IDSize))), // empty name
	}
	for _, c := range cases {
		if _, err := UnmarshalTree(c); !errors.Is(err, ErrCorrupt) {
			t.Errorf("UnmarshalTree(%q): got %v, want ErrCorrupt", c, err)
		}
	}
}

func TestMarshalCommitCanonicalForm(t *testing.T) {
	c := &Commit{
		TreeID: mustParseID(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Parents: []ID{
			mustParseID(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
			mustParseID(t, "cccccccccccccccccccccccccccccccccccccccc"),
		},
		Author:    Signature{Name: "A", Email: "a@x", When: 100, Offset: "+0000"},
		Committer: Signature{Name: "C", Email: "c@x", When: 200, Offset: "-0500"},
		Message:   "subject\n\nbody\n",
	}

	want := "tree aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n" +
		"parent bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n" +
		"parent cccccccccccccccccccccccccccccccccccccccc\n" +
		"author A <a@x> 100 +0000\n" +
		"committer C <c@x> 200 -0500\n" +
		"\n" +
		"subject\n\nbody\n"
	if got := string(MarshalCommit(c)); got != want {
		t.Fatalf("canonical form:\ngot:\n%s\nwant:\n%s", got, want)
	}

	parsed, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if parsed.TreeID != c.TreeID || len(parsed.Parents) != 2 || parsed.Message != c.Message {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if parsed.Parents[0] != c.Parents[0] {
		t.Error("parent order not preserved")
	}
}

func TestCommitOptionalHeaders(t *testing.T) {
	c := &Commit{
		TreeID:    mustParseID(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Author:    Signature{Name: "A", Email: "a@x", When: 1, Offset: "+0000"},
		Committer: Signature{Name: "A", Email: "a@x", When: 1, Offset: "+0000"},
		Encoding:  "ISO-8859-1",
		GPGSig:    "sshsig line1\nline2\nline3",
		Message:   "m",
	}
	parsed, err := UnmarshalCommit(MarshalCommit(c))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if parsed.Encoding != c.Encoding {
		t.Errorf("encoding: got %q, want %q", parsed.Encoding, c.Encoding)
	}
	if parsed.GPGSig != c.GPGSig {
		t.Errorf("gpgsig: got %q, want %q", parsed.GPGSig, c.GPGSig)
	}
}

func TestUnmarshalCommitCorrupt(t *testing.T) {
	cases := [][]byte{
		[]byte("tree aaaa"),                 // no separator
		[]byte("nonsense\n\nmsg"),           // malformed header
		[]byte("tree xyz\n\nmsg"),           // bad tree id
		[]byte("author A <a@x> 1 +0000\n\nm"), // missing tree
		[]byte("tree aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n weird\n\nm"), // stray continuation
	}
	for _, c := range cases {
		if _, err := UnmarshalCommit(c); !errors.Is(err, ErrCorrupt) {
			t.Errorf("UnmarshalCommit(%q): got %v, want ErrCorrupt", c, err)
		}
	}
}

func TestHashObjectMatchesGit(t *testing.T) {
	// Known value: `echo -n "hello" | git hash-object --stdin`.
	id := HashObject(TypeBlob, []byte("hello"))
	if id.String() != "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0" {
		t.Errorf("blob hash diverges from git: %s", id)
	}
}
