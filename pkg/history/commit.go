// Package history loads commit objects, walks parent chains, and resolves
// merge bases over the commit DAG. Commits are transient read-only views;
// parent links are content ids resolved on demand through the store, never
// live object pointers.
package history

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/plumbvcs/plumb/pkg/object"
)

// MaxParents caps the parent list of a created commit.
const MaxParents = 1 << 16

// Commit is a read-only view of a stored commit object.
type Commit struct {
	id    object.ID
	raw   []byte
	obj   *object.Commit
	store object.Store
}

// Lookup resolves a commit by its full id.
func Lookup(s object.Store, id object.ID) (*Commit, error) {
	typ, body, err := s.Get(id)
	if err != nil {
		return nil, fmt.Errorf("commit lookup: %w", err)
	}
	if typ != object.TypeCommit {
		return nil, fmt.Errorf("commit lookup %s: got %q: %w", id, typ, object.ErrWrongType)
	}
	obj, err := object.UnmarshalCommit(body)
	if err != nil {
		return nil, fmt.Errorf("commit lookup %s: %w", id, err)
	}
	return &Commit{id: id, raw: body, obj: obj, store: s}, nil
}

// LookupPrefix resolves a commit by an abbreviated id. The prefix must
// match exactly one stored object.
func LookupPrefix(s object.Store, p object.Prefix) (*Commit, error) {
	id, err := s.ResolvePrefix(p)
	if err != nil {
		return nil, fmt.Errorf("commit lookup: %w", err)
	}
	return Lookup(s, id)
}

// ID returns the commit's own content id.
func (c *Commit) ID() object.ID { return c.id }

// TreeID returns the id of the commit's tree.
func (c *Commit) TreeID() object.ID { return c.obj.TreeID }

// Tree loads the commit's tree from the store.
func (c *Commit) Tree() (*object.Tree, error) {
	t, err := object.GetTree(c.store, c.obj.TreeID)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", c.id, err)
	}
	return t, nil
}

// ParentCount returns the number of parents.
func (c *Commit) ParentCount() int { return len(c.obj.Parents) }

// ParentID returns the id of the nth parent. Parent order is significant:
// index 0 is the primary lineage.
func (c *Commit) ParentID(n int) (object.ID, error) {
	if n < 0 || n >= len(c.obj.Parents) {
		return object.ZeroID, fmt.Errorf("commit %s: parent %d of %d: %w", c.id, n, len(c.obj.Parents), object.ErrOutOfRange)
	}
	return c.obj.Parents[n], nil
}

// Parent loads the nth parent commit from the store.
func (c *Commit) Parent(n int) (*Commit, error) {
	id, err := c.ParentID(n)
	if err != nil {
		return nil, err
	}
	return Lookup(c.store, id)
}

// NthGenAncestor walks the first-parent lineage n steps. n == 0 returns
// the commit itself; a lineage shorter than n reports ErrNotFound.
func (c *Commit) NthGenAncestor(n uint) (*Commit, error) {
	current := c
	for i := uint(0); i < n; i++ {
		if current.ParentCount() == 0 {
			return nil, fmt.Errorf("commit %s: ancestor %d: lineage ends after %d steps: %w", c.id, n, i, object.ErrNotFound)
		}
		parent, err := current.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("commit %s: ancestor %d: %w", c.id, n, err)
		}
		current = parent
	}
	return current, nil
}

// Message returns the commit message as stored.
func (c *Commit) Message() string { return c.obj.Message }

// RawHeader returns the serialized header bytes, up to but excluding the
// blank separator line.
func (c *Commit) RawHeader() []byte {
	if idx := bytes.Index(c.raw, []byte("\n\n")); idx >= 0 {
		return c.raw[:idx+1]
	}
	return c.raw
}

// Author returns the author signature.
func (c *Commit) Author() object.Signature { return c.obj.Author }

// Committer returns the committer signature.
func (c *Commit) Committer() object.Signature { return c.obj.Committer }

// When returns the committer timestamp in Unix seconds.
func (c *Commit) When() int64 { return c.obj.Committer.When }

// Offset returns the committer's UTC offset.
func (c *Commit) Offset() string { return c.obj.Committer.Offset }

// Encoding returns the message encoding. The empty string means UTF-8.
func (c *Commit) Encoding() string { return c.obj.Encoding }

// RefManager is the external reference-management collaborator. An
// implementation must detect a concurrent update of the same ref and
// report it as ErrConflict rather than silently overwriting.
type RefManager interface {
	UpdateRef(name string, newID object.ID, expectedOld *object.ID) error
}

// Signer produces an encoded signature over canonical commit payload
// bytes; the result is stored in the commit's gpgsig header.
type Signer func(payload []byte) (string, error)

// SigningPayload returns the canonical bytes a Signer signs for a commit.
// The payload excludes the signature header itself.
func SigningPayload(c *object.Commit) []byte {
	cp := *c
	cp.GPGSig = ""
	return object.MarshalCommit(&cp)
}

// CreateOptions carries the inputs for Create.
type CreateOptions struct {
	TreeID    object.ID
	Parents   []object.ID
	Author    object.Signature
	Committer object.Signature
	Message   string
	// Encoding overrides the message encoding header. Empty or "UTF-8"
	// writes no header: UTF-8 is the normalized default.
	Encoding string
	// UpdateRef, when set, names the ref the RefManager moves to the new
	// commit after the object is written.
	UpdateRef string
	// ExpectedOld is the ref value the update is conditioned on; nil
	// means the ref is expected to be unborn.
	ExpectedOld *object.ID
	// Signer, when set, signs the commit.
	Signer Signer
}

// Create serializes a new immutable commit, writes it to the store, and
// optionally asks the RefManager to move a ref to it. The commit id is
// the hash of the canonical serialization.
func Create(s object.Store, refs RefManager, opts CreateOptions) (object.ID, error) {
	if len(opts.Parents) > MaxParents {
		return object.ZeroID, fmt.Errorf("create commit: %d parents exceeds limit %d: %w", len(opts.Parents), MaxParents, object.ErrInvalidArgument)
	}
	if opts.UpdateRef != "" && refs == nil {
		return object.ZeroID, fmt.Errorf("create commit: update-ref %q without a ref manager: %w", opts.UpdateRef, object.ErrInvalidArgument)
	}

	// The tree must exist and be a tree before the commit refers to it.
	typ, _, err := s.Get(opts.TreeID)
	if err != nil {
		return object.ZeroID, fmt.Errorf("create commit: tree: %w", err)
	}
	if typ != object.TypeTree {
		return object.ZeroID, fmt.Errorf("create commit: tree %s is a %s: %w", opts.TreeID, typ, object.ErrWrongType)
	}

	c := &object.Commit{
		TreeID:    opts.TreeID,
		Parents:   opts.Parents,
		Author:    opts.Author,
		Committer: opts.Committer,
		Encoding:  normalizeEncoding(opts.Encoding),
		Message:   opts.Message,
	}

	if opts.Signer != nil {
		sig, err := opts.Signer(SigningPayload(c))
		if err != nil {
			return object.ZeroID, fmt.Errorf("create commit: sign: %w", err)
		}
		c.GPGSig = sig
	}

	id, err := object.PutCommit(s, c)
	if err != nil {
		return object.ZeroID, fmt.Errorf("create commit: write: %w", err)
	}

	if opts.UpdateRef != "" {
		if err := refs.UpdateRef(opts.UpdateRef, id, opts.ExpectedOld); err != nil {
			return object.ZeroID, fmt.Errorf("create commit: update ref %q: %w", opts.UpdateRef, err)
		}
	}

	return id, nil
}

// normalizeEncoding maps the UTF-8 spellings to the empty (default)
// encoding so equal messages always serialize to equal bytes.
func normalizeEncoding(enc string) string {
	switch strings.ToUpper(strings.TrimSpace(enc)) {
	case "", "UTF-8", "UTF8":
		return ""
	}
	return strings.TrimSpace(enc)
}

// Log walks first-parent history from start, newest first, returning up
// to limit commits.
func Log(s object.Store, start object.ID, limit int) ([]*Commit, error) {
	var commits []*Commit
	current := start

	for limit <= 0 || len(commits) < limit {
		c, err := Lookup(s, current)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		commits = append(commits, c)
		if c.ParentCount() == 0 {
			break
		}
		current, _ = c.ParentID(0)
	}
	return commits, nil
}
