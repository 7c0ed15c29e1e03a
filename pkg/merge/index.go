package merge

import (
	"fmt"
	"sort"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/tree"
)

// Stage classifies an index entry. Stage 0 is a resolved path; stages
// 1/2/3 carry the ancestor/ours/theirs versions of an unresolved path.
type Stage int

const (
	StageResolved Stage = iota
	StageAncestor
	StageOurs
	StageTheirs
)

// IndexEntry is one staged path in a merge result.
type IndexEntry struct {
	Path  string
	Mode  string
	ID    object.ID
	Stage Stage
}

// Index is the ordered output of a tree merge: resolved entries at stage
// 0 and, for each unresolved path, the staged versions of every side that
// has one. It is an in-memory view; materializing files is checkout's
// job, snapshotting a tree is WriteTree's.
type Index struct {
	Entries []IndexEntry
}

func (ix *Index) add(e IndexEntry) {
	ix.Entries = append(ix.Entries, e)
}

func (ix *Index) sortEntries() {
	sort.Slice(ix.Entries, func(i, j int) bool {
		if ix.Entries[i].Path != ix.Entries[j].Path {
			return ix.Entries[i].Path < ix.Entries[j].Path
		}
		return ix.Entries[i].Stage < ix.Entries[j].Stage
	})
}

// HasConflicts reports whether any path is unresolved.
func (ix *Index) HasConflicts() bool {
	for _, e := range ix.Entries {
		if e.Stage != StageResolved {
			return true
		}
	}
	return false
}

// ConflictPaths returns the unresolved paths, sorted and deduplicated.
func (ix *Index) ConflictPaths() []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, e := range ix.Entries {
		if e.Stage == StageResolved {
			continue
		}
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	return paths
}

// StagesFor returns the staged entries recorded for one path.
func (ix *Index) StagesFor(path string) []IndexEntry {
	var out []IndexEntry
	for _, e := range ix.Entries {
		if e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// WriteTree collapses a fully resolved index into nested tree objects and
// returns the root tree id, ready for commit creation. An index that
// still carries conflict stages reports ErrConflict.
func (ix *Index) WriteTree(s object.Store) (object.ID, error) {
	var files []tree.FileEntry
	for _, e := range ix.Entries {
		if e.Stage != StageResolved {
			return object.ZeroID, fmt.Errorf("write tree: %q unresolved: %w", e.Path, object.ErrConflict)
		}
		files = append(files, tree.FileEntry{Path: e.Path, Mode: e.Mode, ID: e.ID})
	}
	id, err := tree.Build(s, files)
	if err != nil {
		return object.ZeroID, fmt.Errorf("write tree: %w", err)
	}
	return id, nil
}
