package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/plumbvcs/plumb/pkg/object"
)

func tempStore(t *testing.T) object.Store {
	t.Helper()
	return object.NewFileStore(t.TempDir())
}

func emptyTree(t *testing.T, s object.Store) object.ID {
	t.Helper()
	id, err := object.PutTree(s, &object.Tree{})
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	return id
}

func sigAt(when int64) object.Signature {
	return object.Signature{Name: "Tester", Email: "t@example.com", When: when, Offset: "+0000"}
}

// writeCommit creates a commit at the given timestamp without touching
// any ref.
func writeCommit(t *testing.T, s object.Store, tree object.ID, when int64, parents ...object.ID) object.ID {
	t.Helper()
	id, err := Create(s, nil, CreateOptions{
		TreeID:    tree,
		Parents:   parents,
		Author:    sigAt(when),
		Committer: sigAt(when),
		Message:   fmt.Sprintf("commit at %d", when),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func TestCreateAndLookup(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	root := writeCommit(t, s, tree, 100)
	child := writeCommit(t, s, tree, 200, root)

	c, err := Lookup(s, child)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if c.ID() != child || c.TreeID() != tree {
		t.Error("lookup returned wrong commit")
	}
	if c.ParentCount() != 1 {
		t.Fatalf("parent count: %d", c.ParentCount())
	}
	pid, err := c.ParentID(0)
	if err != nil || pid != root {
		t.Errorf("ParentID: (%s, %v)", pid, err)
	}
	if c.When() != 200 || c.Offset() != "+0000" {
		t.Errorf("committer time: %d %s", c.When(), c.Offset())
	}
	if len(c.RawHeader()) == 0 {
		t.Error("empty raw header")
	}
}

func TestLookupErrors(t *testing.T) {
	s := tempStore(t)

	missing := object.HashObject(object.TypeCommit, []byte("absent"))
	if _, err := Lookup(s, missing); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}

	blob, _ := object.PutBlob(s, &object.Blob{Data: []byte("x")})
	if _, err := Lookup(s, blob); !errors.Is(err, object.ErrWrongType) {
		t.Errorf("blob: got %v, want ErrWrongType", err)
	}
}

func TestLookupPrefix(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)
	id := writeCommit(t, s, tree, 1)

	p, _ := object.ParsePrefix(id.String()[:10])
	c, err := LookupPrefix(s, p)
	if err != nil {
		t.Fatalf("LookupPrefix: %v", err)
	}
	if c.ID() != id {
		t.Error("prefix resolved to wrong commit")
	}
}

func TestParentIDOutOfRange(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)
	root := writeCommit(t, s, tree, 1)

	c, _ := Lookup(s, root)
	for _, n := range []int{-1, 0, 5} {
		if _, err := c.ParentID(n); !errors.Is(err, object.ErrOutOfRange) {
			t.Errorf("ParentID(%d): got %v, want ErrOutOfRange", n, err)
		}
	}
}

func TestNthGenAncestor(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	root := writeCommit(t, s, tree, 1)
	mid := writeCommit(t, s, tree, 2, root)
	tip := writeCommit(t, s, tree, 3, mid)

	c, _ := Lookup(s, tip)

	self, err := c.NthGenAncestor(0)
	if err != nil || self.ID() != tip {
		t.Errorf("NthGenAncestor(0): (%v, %v)", self, err)
	}

	got, err := c.NthGenAncestor(2)
	if err != nil || got.ID() != root {
		t.Errorf("NthGenAncestor(2): (%v, %v)", got, err)
	}

	if _, err := c.NthGenAncestor(3); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("past root: got %v, want ErrNotFound", err)
	}

	rc, _ := Lookup(s, root)
	if _, err := rc.NthGenAncestor(1); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("root+1: got %v, want ErrNotFound", err)
	}
}

// firstParentOnly verifies the ancestor walk ignores second parents.
func TestNthGenAncestorFirstParentOnly(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	a := writeCommit(t, s, tree, 1)
	b := writeCommit(t, s, tree, 2)
	mergeCommit := writeCommit(t, s, tree, 3, a, b)

	c, _ := Lookup(s, mergeCommit)
	got, err := c.NthGenAncestor(1)
	if err != nil {
		t.Fatalf("NthGenAncestor: %v", err)
	}
	if got.ID() != a {
		t.Errorf("followed wrong parent: got %s, want %s", got.ID(), a)
	}
}

func TestCreateParentLimit(t *testing.T) {
	s := tempStore(t)
	parents := make([]object.ID, MaxParents+1)
	_, err := Create(s, nil, CreateOptions{Parents: parents})
	if !errors.Is(err, object.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestCreateValidatesTree(t *testing.T) {
	s := tempStore(t)

	missing := object.HashObject(object.TypeTree, []byte("absent"))
	if _, err := Create(s, nil, CreateOptions{TreeID: missing}); !errors.Is(err, object.ErrNotFound) {
		t.Errorf("missing tree: got %v, want ErrNotFound", err)
	}

	blob, _ := object.PutBlob(s, &object.Blob{Data: []byte("x")})
	if _, err := Create(s, nil, CreateOptions{TreeID: blob}); !errors.Is(err, object.ErrWrongType) {
		t.Errorf("blob as tree: got %v, want ErrWrongType", err)
	}
}

func TestCreateNormalizesEncoding(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	for _, enc := range []string{"", "UTF-8", "utf-8", "utf8"} {
		id, err := Create(s, nil, CreateOptions{
			TreeID: tree, Author: sigAt(1), Committer: sigAt(1), Message: "m", Encoding: enc,
		})
		if err != nil {
			t.Fatalf("Create(enc=%q): %v", enc, err)
		}
		c, _ := Lookup(s, id)
		if c.Encoding() != "" {
			t.Errorf("enc=%q: expected normalized empty encoding, got %q", enc, c.Encoding())
		}
	}

	id, err := Create(s, nil, CreateOptions{
		TreeID: tree, Author: sigAt(1), Committer: sigAt(1), Message: "m", Encoding: "ISO-8859-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c, _ := Lookup(s, id)
	if c.Encoding() != "ISO-8859-1" {
		t.Errorf("override lost: %q", c.Encoding())
	}
}

type recordingRefs struct {
	name string
	id   object.ID
	err  error
}

func (r *recordingRefs) UpdateRef(name string, newID object.ID, expectedOld *object.ID) error {
	if r.err != nil {
		return r.err
	}
	r.name = name
	r.id = newID
	return nil
}

func TestCreateUpdatesRef(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)
	refs := &recordingRefs{}

	id, err := Create(s, refs, CreateOptions{
		TreeID: tree, Author: sigAt(1), Committer: sigAt(1), Message: "m",
		UpdateRef: "refs/heads/main",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if refs.name != "refs/heads/main" || refs.id != id {
		t.Errorf("ref update: %q -> %s", refs.name, refs.id)
	}
}

func TestCreateRefConflictPropagates(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)
	refs := &recordingRefs{err: fmt.Errorf("ref moved: %w", object.ErrConflict)}

	_, err := Create(s, refs, CreateOptions{
		TreeID: tree, Author: sigAt(1), Committer: sigAt(1), Message: "m",
		UpdateRef: "refs/heads/main",
	})
	if !errors.Is(err, object.ErrConflict) {
		t.Errorf("got %v, want ErrConflict", err)
	}
}

func TestCreateSigner(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	var signed []byte
	signer := func(payload []byte) (string, error) {
		signed = payload
		return "fake-sig", nil
	}

	id, err := Create(s, nil, CreateOptions{
		TreeID: tree, Author: sigAt(1), Committer: sigAt(1), Message: "m", Signer: signer,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c, _ := Lookup(s, id)
	if c.obj.GPGSig != "fake-sig" {
		t.Errorf("signature not stored: %q", c.obj.GPGSig)
	}

	// The signed payload must be the commit without its signature header.
	unsigned := *c.obj
	unsigned.GPGSig = ""
	if string(signed) != string(object.MarshalCommit(&unsigned)) {
		t.Error("signing payload includes the signature header")
	}
}

func TestLog(t *testing.T) {
	s := tempStore(t)
	tree := emptyTree(t, s)

	root := writeCommit(t, s, tree, 1)
	mid := writeCommit(t, s, tree, 2, root)
	tip := writeCommit(t, s, tree, 3, mid)

	commits, err := Log(s, tip, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("log length: %d", len(commits))
	}
	if commits[0].ID() != tip || commits[2].ID() != root {
		t.Error("log order wrong")
	}

	limited, err := Log(s, tip, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("limited log: (%d, %v)", len(limited), err)
	}
}
