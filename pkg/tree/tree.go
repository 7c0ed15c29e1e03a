// Package tree resolves and traverses tree objects: ordered snapshots of
// named entries addressed by content id.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/plumbvcs/plumb/pkg/object"
)

// Lookup loads the tree with the given id from the store.
func Lookup(s object.Store, id object.ID) (*object.Tree, error) {
	t, err := object.GetTree(s, id)
	if err != nil {
		return nil, fmt.Errorf("tree lookup: %w", err)
	}
	return t, nil
}

// Entry resolves a possibly nested slash-separated path inside t,
// recursing into subtrees. A missing segment, or a non-directory in the
// middle of the path, reports ErrNotFound.
func Entry(s object.Store, t *object.Tree, path string) (object.TreeEntry, error) {
	parts := strings.Split(path, "/")
	current := t

	for i, part := range parts {
		entry, ok := current.Entry(part)
		if !ok {
			return object.TreeEntry{}, fmt.Errorf("tree entry %q: segment %q: %w", path, part, object.ErrNotFound)
		}
		if i == len(parts)-1 {
			return entry, nil
		}
		if !entry.IsDir() {
			return object.TreeEntry{}, fmt.Errorf("tree entry %q: %q is not a directory: %w", path, part, object.ErrNotFound)
		}
		sub, err := Lookup(s, entry.ID)
		if err != nil {
			return object.TreeEntry{}, fmt.Errorf("tree entry %q: %w", path, err)
		}
		current = sub
	}

	return object.TreeEntry{}, fmt.Errorf("tree entry %q: %w", path, object.ErrNotFound)
}

// FileEntry is one file in a flattened tree, keyed by its full
// slash-separated path.
type FileEntry struct {
	Path string
	Mode string
	ID   object.ID
}

// Flatten walks a tree recursively and returns every file entry with its
// full path, in canonical traversal order.
func Flatten(s object.Store, id object.ID) ([]FileEntry, error) {
	return flattenRec(s, id, "")
}

func flattenRec(s object.Store, id object.ID, prefix string) ([]FileEntry, error) {
	t, err := Lookup(s, id)
	if err != nil {
		return nil, fmt.Errorf("flatten %s: %w", id, err)
	}

	var result []FileEntry
	for _, entry := range t.Entries {
		full := entry.Name
		if prefix != "" {
			full = prefix + "/" + entry.Name
		}
		if entry.IsDir() {
			sub, err := flattenRec(s, entry.ID, full)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, FileEntry{Path: full, Mode: entry.Mode, ID: entry.ID})
	}
	return result, nil
}

// Build groups a flat file listing by directory, writes the nested tree
// objects to the store bottom-up, and returns the root tree id. Paths use
// forward slashes.
func Build(s object.Store, files []FileEntry) (object.ID, error) {
	byPath := make(map[string]FileEntry, len(files))
	for _, f := range files {
		if f.Path == "" || strings.HasPrefix(f.Path, "/") || strings.HasSuffix(f.Path, "/") {
			return object.ZeroID, fmt.Errorf("build tree: bad path %q: %w", f.Path, object.ErrInvalidArgument)
		}
		if _, dup := byPath[f.Path]; dup {
			return object.ZeroID, fmt.Errorf("build tree: duplicate path %q: %w", f.Path, object.ErrInvalidArgument)
		}
		byPath[f.Path] = f
	}
	return buildDir(s, byPath, "")
}

func buildDir(s object.Store, byPath map[string]FileEntry, prefix string) (object.ID, error) {
	direct := make(map[string]FileEntry)
	subdirs := make(map[string]struct{})

	for p, f := range byPath {
		rel := p
		if prefix != "" {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}
		if slash := strings.IndexByte(rel, '/'); slash >= 0 {
			subdirs[rel[:slash]] = struct{}{}
		} else {
			direct[rel] = f
		}
	}

	names := make([]string, 0, len(direct)+len(subdirs))
	for name := range direct {
		names = append(names, name)
	}
	for name := range subdirs {
		if _, isFile := direct[name]; isFile {
			return object.ZeroID, fmt.Errorf("build tree: %q is both a file and a directory: %w", name, object.ErrInvalidArgument)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if f, isFile := direct[name]; isFile {
			mode := f.Mode
			if mode == "" {
				mode = object.ModeFile
			}
			entries = append(entries, object.TreeEntry{Mode: mode, Name: name, ID: f.ID})
			continue
		}
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		subID, err := buildDir(s, byPath, childPrefix)
		if err != nil {
			return object.ZeroID, err
		}
		entries = append(entries, object.TreeEntry{Mode: object.ModeDir, Name: name, ID: subID})
	}

	id, err := object.PutTree(s, &object.Tree{Entries: entries})
	if err != nil {
		return object.ZeroID, fmt.Errorf("build tree (prefix=%q): %w", prefix, err)
	}
	return id, nil
}
