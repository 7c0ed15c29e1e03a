package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Signature is an author or committer identity with a timestamp and UTC
// offset. Immutable; owned by the commit that embeds it.
type Signature struct {
	Name   string
	Email  string
	When   int64  // seconds since the Unix epoch
	Offset string // UTC offset in Git's "+0200" form
}

// Marshal renders the canonical "Name <email> when offset" form used in
// commit author and committer lines.
func (s Signature) Marshal() string {
	offset := s.Offset
	if offset == "" {
		offset = "+0000"
	}
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, offset)
}

// ParseSignature parses the canonical signature line form.
func ParseSignature(val string) (Signature, error) {
	open := strings.IndexByte(val, '<')
	close := strings.IndexByte(val, '>')
	if open < 0 || close < open {
		return Signature{}, fmt.Errorf("signature %q: missing email brackets: %w", val, ErrCorrupt)
	}

	name := strings.TrimRight(val[:open], " ")
	email := val[open+1 : close]

	rest := strings.TrimSpace(val[close+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("signature %q: missing timestamp or offset: %w", val, ErrCorrupt)
	}
	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q: bad timestamp: %w", val, ErrCorrupt)
	}

	return Signature{Name: name, Email: email, When: when, Offset: fields[1]}, nil
}
