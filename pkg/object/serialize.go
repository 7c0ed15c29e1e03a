package object

import (
	"bytes"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree serializes a Tree in Git's canonical binary form. Entries are
// sorted into canonical order first; each entry is
//
//	<mode> <name>\0<20 raw id bytes>
//
// so the serialization, and therefore the tree's id, is deterministic.
func MarshalTree(t *Tree) []byte {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	SortTreeEntries(sorted)

	var buf bytes.Buffer
	for _, e := range sorted {
		mode := e.Mode
		if mode == "" {
			mode = ModeFile
		}
		buf.WriteString(mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}

// UnmarshalTree parses a Tree from its canonical binary form.
func UnmarshalTree(data []byte) (*Tree, error) {
	t := &Tree{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: truncated mode: %w", ErrCorrupt)
		}
		mode := string(rest[:sp])
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: truncated name: %w", ErrCorrupt)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < IDSize {
			return nil, fmt.Errorf("unmarshal tree: truncated id for %q: %w", name, ErrCorrupt)
		}
		var id ID
		copy(id[:], rest[:IDSize])
		rest = rest[IDSize:]

		if name == "" {
			return nil, fmt.Errorf("unmarshal tree: empty entry name: %w", ErrCorrupt)
		}
		t.Entries = append(t.Entries, TreeEntry{Mode: mode, Name: name, ID: id})
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit serializes a Commit in Git's canonical text form:
//
//	tree <hex>
//	parent <hex>      (zero or more, in order)
//	author <signature>
//	committer <signature>
//	encoding <name>   (optional)
//	gpgsig <block>    (optional, continuation lines indented by one space)
//
//	<message>
//
// The hash of these bytes is the commit's id, so field order and spacing
// must not change.
func MarshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeID)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author.Marshal())
	fmt.Fprintf(&buf, "committer %s\n", c.Committer.Marshal())
	if c.Encoding != "" {
		fmt.Fprintf(&buf, "encoding %s\n", c.Encoding)
	}
	if c.GPGSig != "" {
		writeMultilineHeader(&buf, "gpgsig", c.GPGSig)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// writeMultilineHeader emits a header whose value may span lines; every
// line after the first is prefixed with a single space (Git's header
// continuation rule).
func writeMultilineHeader(buf *bytes.Buffer, key, val string) {
	lines := strings.Split(val, "\n")
	fmt.Fprintf(buf, "%s %s\n", key, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(buf, " %s\n", line)
	}
}

// UnmarshalCommit parses a Commit from its canonical serialization.
func UnmarshalCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator: %w", ErrCorrupt)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &Commit{Message: message}
	sawTree := false
	lastKey := ""

	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, " ") {
			// Continuation of the previous header value.
			switch lastKey {
			case "gpgsig":
				c.GPGSig += "\n" + line[1:]
			default:
				return nil, fmt.Errorf("unmarshal commit: stray continuation line %q: %w", line, ErrCorrupt)
			}
			continue
		}

		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q: %w", line, ErrCorrupt)
		}
		lastKey = key

		switch key {
		case "tree":
			id, err := ParseID(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad tree id %q: %w", val, ErrCorrupt)
			}
			c.TreeID = id
			sawTree = true
		case "parent":
			id, err := ParseID(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad parent id %q: %w", val, ErrCorrupt)
			}
			c.Parents = append(c.Parents, id)
		case "author":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: author: %w", err)
			}
			c.Author = sig
		case "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: committer: %w", err)
			}
			c.Committer = sig
		case "encoding":
			c.Encoding = val
		case "gpgsig":
			c.GPGSig = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q: %w", key, ErrCorrupt)
		}
	}

	if !sawTree {
		return nil, fmt.Errorf("unmarshal commit: missing tree header: %w", ErrCorrupt)
	}
	return c, nil
}
