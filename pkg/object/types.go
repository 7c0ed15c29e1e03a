package object

import "sort"

// Type identifies the kind of object stored.
type Type string

const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
	TypeTag    Type = "tag"
)

const (
	// Tree mode constants matching Git's canonical mode strings.
	ModeDir     = "40000"
	ModeFile    = "100644"
	ModeExec    = "100755"
	ModeSymlink = "120000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a named reference to a blob
// or subtree with its file mode.
type TreeEntry struct {
	Mode string
	Name string
	ID   ID
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == ModeDir
}

// Tree is an ordered snapshot of named entries. Names are unique within
// one tree; the order is the canonical sort (see SortTreeEntries).
type Tree struct {
	Entries []TreeEntry
}

// Entry returns the direct child entry with the given name.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// treeSortKey implements Git's tree ordering: names compare byte-wise,
// with directory names treated as if suffixed by a path separator.
func treeSortKey(e TreeEntry) string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// SortTreeEntries sorts entries into canonical tree order in place.
func SortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})
}

// Commit is a tree snapshot with parent links and authorship metadata.
// Parents are order-significant: the first parent is the primary lineage.
type Commit struct {
	TreeID    ID
	Parents   []ID
	Author    Signature
	Committer Signature
	Encoding  string // message encoding header; empty means UTF-8
	GPGSig    string // ssh/pgp signature block, empty when unsigned
	Message   string
}
