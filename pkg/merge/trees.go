package merge

import (
	"fmt"
	"sort"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/textmerge"
	"github.com/plumbvcs/plumb/pkg/tree"
)

// sideEntry is one side's version of a path. renamedTo is set when the
// side moved the file away from its ancestor path; the entry is then
// keyed under the ancestor path with the target recorded here.
type sideEntry struct {
	tree.FileEntry
	renamedTo string
}

// Trees merges the ancestor, ours, and theirs trees into a staged Index.
// ancestor may be the zero id when the histories share no base. The
// result is in-memory only; no filesystem is touched.
func Trees(s object.Store, ancestor, ours, theirs object.ID, opts Options) (*Index, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	baseMap, err := flattenToMap(s, ancestor)
	if err != nil {
		return nil, fmt.Errorf("merge trees: ancestor: %w", err)
	}
	oursMap, err := flattenToSideMap(s, ours)
	if err != nil {
		return nil, fmt.Errorf("merge trees: ours: %w", err)
	}
	theirsMap, err := flattenToSideMap(s, theirs)
	if err != nil {
		return nil, fmt.Errorf("merge trees: theirs: %w", err)
	}

	if o.DetectRenames {
		oursAdds := addedPaths(baseMap, oursMap)
		theirsAdds := addedPaths(baseMap, theirsMap)
		if err := foldRenames(s, baseMap, oursMap, theirsAdds, o); err != nil {
			return nil, fmt.Errorf("merge trees: ours: %w", err)
		}
		if err := foldRenames(s, baseMap, theirsMap, oursAdds, o); err != nil {
			return nil, fmt.Errorf("merge trees: theirs: %w", err)
		}
	}

	ix := &Index{}
	for _, p := range collectPaths(baseMap, oursMap, theirsMap) {
		if err := mergePath(s, ix, p, baseMap, oursMap, theirsMap, o); err != nil {
			return nil, fmt.Errorf("merge trees: %q: %w", p, err)
		}
	}
	ix.sortEntries()
	return ix, nil
}

// mergePath classifies one path across the three trees and emits its
// index entries.
func mergePath(s object.Store, ix *Index, p string, baseMap map[string]tree.FileEntry, oursMap, theirsMap map[string]sideEntry, o Options) error {
	b, inBase := baseMap[p]
	ours, inOurs := oursMap[p]
	theirs, inTheirs := theirsMap[p]

	switch {
	case inBase && inOurs && inTheirs:
		return mergeThreeWay(s, ix, p, b, ours, theirs, o)

	case !inBase && inOurs && inTheirs:
		return mergeBothAdded(s, ix, p, ours, theirs, o)

	case inBase && inOurs && !inTheirs:
		// Deleted by theirs.
		if !sideChanged(b, ours) {
			return nil // clean delete
		}
		switch o.Automerge {
		case AutomergeFavorOurs:
			emitResolved(ix, ours)
		case AutomergeFavorTheirs:
			// Their deletion wins.
		default:
			// Delete versus modify must surface, never silently lose data.
			ix.add(IndexEntry{Path: p, Mode: b.Mode, ID: b.ID, Stage: StageAncestor})
			ix.add(IndexEntry{Path: ours.targetPath(), Mode: ours.Mode, ID: ours.ID, Stage: StageOurs})
		}
		return nil

	case inBase && !inOurs && inTheirs:
		// Deleted by ours.
		if !sideChanged(b, theirs) {
			return nil
		}
		switch o.Automerge {
		case AutomergeFavorTheirs:
			emitResolved(ix, theirs)
		case AutomergeFavorOurs:
			// Our deletion wins.
		default:
			ix.add(IndexEntry{Path: p, Mode: b.Mode, ID: b.ID, Stage: StageAncestor})
			ix.add(IndexEntry{Path: theirs.targetPath(), Mode: theirs.Mode, ID: theirs.ID, Stage: StageTheirs})
		}
		return nil

	case !inBase && inOurs:
		emitResolved(ix, ours)
		return nil

	case !inBase && inTheirs:
		emitResolved(ix, theirs)
		return nil

	default:
		// Deleted on both sides.
		return nil
	}
}

// mergeThreeWay handles a path present in all three trees.
func mergeThreeWay(s object.Store, ix *Index, p string, b tree.FileEntry, ours, theirs sideEntry, o Options) error {
	oursChanged := sideChanged(b, ours)
	theirsChanged := sideChanged(b, theirs)

	// Decide where the merged entry lives when a side renamed the path.
	oursPath := ours.targetPath()
	theirsPath := theirs.targetPath()
	finalPath := p
	switch {
	case oursPath == theirsPath:
		finalPath = oursPath
	case oursPath != p && theirsPath == p:
		finalPath = oursPath
	case theirsPath != p && oursPath == p:
		finalPath = theirsPath
	default:
		// Renamed to different targets on both sides.
		switch o.Automerge {
		case AutomergeFavorOurs:
			emitResolved(ix, ours)
		case AutomergeFavorTheirs:
			emitResolved(ix, theirs)
		default:
			ix.add(IndexEntry{Path: p, Mode: b.Mode, ID: b.ID, Stage: StageAncestor})
			ix.add(IndexEntry{Path: oursPath, Mode: ours.Mode, ID: ours.ID, Stage: StageOurs})
			ix.add(IndexEntry{Path: theirsPath, Mode: theirs.Mode, ID: theirs.ID, Stage: StageTheirs})
		}
		return nil
	}

	conflict := func() {
		ix.add(IndexEntry{Path: p, Mode: b.Mode, ID: b.ID, Stage: StageAncestor})
		ix.add(IndexEntry{Path: oursPath, Mode: ours.Mode, ID: ours.ID, Stage: StageOurs})
		ix.add(IndexEntry{Path: theirsPath, Mode: theirs.Mode, ID: theirs.ID, Stage: StageTheirs})
	}

	switch {
	case !oursChanged && !theirsChanged:
		ix.add(IndexEntry{Path: finalPath, Mode: b.Mode, ID: b.ID, Stage: StageResolved})

	case ours.ID == theirs.ID && ours.Mode == theirs.Mode:
		// Changed identically on both sides.
		ix.add(IndexEntry{Path: finalPath, Mode: ours.Mode, ID: ours.ID, Stage: StageResolved})

	case oursChanged && !theirsChanged:
		ix.add(IndexEntry{Path: finalPath, Mode: ours.Mode, ID: ours.ID, Stage: StageResolved})

	case theirsChanged && !oursChanged:
		ix.add(IndexEntry{Path: finalPath, Mode: theirs.Mode, ID: theirs.ID, Stage: StageResolved})

	default:
		// Divergent change on both sides.
		switch o.Automerge {
		case AutomergeNone:
			conflict()
		case AutomergeFavorOurs:
			ix.add(IndexEntry{Path: finalPath, Mode: ours.Mode, ID: ours.ID, Stage: StageResolved})
		case AutomergeFavorTheirs:
			ix.add(IndexEntry{Path: finalPath, Mode: theirs.Mode, ID: theirs.ID, Stage: StageResolved})
		default: // AutomergeNormal
			mode, ok := resolveMode(b.Mode, ours.Mode, theirs.Mode)
			if !ok {
				conflict()
				return nil
			}
			if ours.ID == theirs.ID {
				ix.add(IndexEntry{Path: finalPath, Mode: mode, ID: ours.ID, Stage: StageResolved})
				return nil
			}
			mergedID, clean, err := mergeBlobs(s, b.ID, ours.ID, theirs.ID, o)
			if err != nil {
				return err
			}
			if !clean {
				conflict()
				return nil
			}
			ix.add(IndexEntry{Path: finalPath, Mode: mode, ID: mergedID, Stage: StageResolved})
		}
	}
	return nil
}

// mergeBothAdded handles a path absent from the ancestor but added on
// both sides.
func mergeBothAdded(s object.Store, ix *Index, p string, ours, theirs sideEntry, o Options) error {
	if ours.ID == theirs.ID && ours.Mode == theirs.Mode {
		emitResolved(ix, ours)
		return nil
	}

	conflict := func() {
		ix.add(IndexEntry{Path: p, Mode: ours.Mode, ID: ours.ID, Stage: StageOurs})
		ix.add(IndexEntry{Path: p, Mode: theirs.Mode, ID: theirs.ID, Stage: StageTheirs})
	}

	switch o.Automerge {
	case AutomergeNone:
		conflict()
	case AutomergeFavorOurs:
		emitResolved(ix, ours)
	case AutomergeFavorTheirs:
		emitResolved(ix, theirs)
	default: // AutomergeNormal: attempt a content merge with an empty base
		if ours.Mode != theirs.Mode {
			conflict()
			return nil
		}
		mergedID, clean, err := mergeBlobs(s, object.ZeroID, ours.ID, theirs.ID, o)
		if err != nil {
			return err
		}
		if !clean {
			conflict()
			return nil
		}
		ix.add(IndexEntry{Path: p, Mode: ours.Mode, ID: mergedID, Stage: StageResolved})
	}
	return nil
}

// mergeBlobs runs the line-level merge over three blob contents. base may
// be the zero id for an added-on-both-sides path. Returns the merged blob
// id when the merge is clean.
func mergeBlobs(s object.Store, base, ours, theirs object.ID, o Options) (object.ID, bool, error) {
	var baseData []byte
	if !base.IsZero() {
		blob, err := object.GetBlob(s, base)
		if err != nil {
			return object.ZeroID, false, err
		}
		baseData = blob.Data
	}
	oursBlob, err := object.GetBlob(s, ours)
	if err != nil {
		return object.ZeroID, false, err
	}
	theirsBlob, err := object.GetBlob(s, theirs)
	if err != nil {
		return object.ZeroID, false, err
	}

	res := textmerge.Merge(baseData, oursBlob.Data, theirsBlob.Data, o.Labels)
	if res.HasConflicts() {
		return object.ZeroID, false, nil
	}

	id, err := object.PutBlob(s, &object.Blob{Data: res.Merged})
	if err != nil {
		return object.ZeroID, false, err
	}
	return id, true, nil
}

// resolveMode merges the file mode three ways. ok is false when both
// sides changed the mode to different values.
func resolveMode(base, ours, theirs string) (string, bool) {
	switch {
	case ours == theirs:
		return ours, true
	case ours == base:
		return theirs, true
	case theirs == base:
		return ours, true
	default:
		return "", false
	}
}

func sideChanged(b tree.FileEntry, side sideEntry) bool {
	return side.ID != b.ID || side.Mode != b.Mode || side.renamedTo != ""
}

func (e sideEntry) targetPath() string {
	if e.renamedTo != "" {
		return e.renamedTo
	}
	return e.Path
}

func emitResolved(ix *Index, e sideEntry) {
	ix.add(IndexEntry{Path: e.targetPath(), Mode: e.Mode, ID: e.ID, Stage: StageResolved})
}

// foldRenames rekeys each detected rename target under its ancestor
// path. A rename whose target the other side added independently is
// skipped: the pair then merges as a plain delete plus add, which keeps
// index paths collision-free.
func foldRenames(s object.Store, baseMap map[string]tree.FileEntry, sideMap map[string]sideEntry, otherAdds map[string]struct{}, o Options) error {
	var deleted, added []tree.FileEntry
	for p, b := range baseMap {
		if _, ok := sideMap[p]; !ok {
			deleted = append(deleted, b)
		}
	}
	for p, e := range sideMap {
		if _, ok := baseMap[p]; !ok {
			added = append(added, e.FileEntry)
		}
	}

	renames, err := detectRenames(s, deleted, added, o)
	if err != nil {
		return err
	}

	for from, to := range renames {
		if _, occupied := otherAdds[to]; occupied {
			continue
		}
		entry := sideMap[to]
		delete(sideMap, to)
		entry.renamedTo = to
		sideMap[from] = entry
	}
	return nil
}

func addedPaths(baseMap map[string]tree.FileEntry, sideMap map[string]sideEntry) map[string]struct{} {
	adds := make(map[string]struct{})
	for p := range sideMap {
		if _, ok := baseMap[p]; !ok {
			adds[p] = struct{}{}
		}
	}
	return adds
}

func flattenToMap(s object.Store, id object.ID) (map[string]tree.FileEntry, error) {
	m := make(map[string]tree.FileEntry)
	if id.IsZero() {
		return m, nil
	}
	files, err := tree.Flatten(s, id)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		m[f.Path] = f
	}
	return m, nil
}

func flattenToSideMap(s object.Store, id object.ID) (map[string]sideEntry, error) {
	flat, err := flattenToMap(s, id)
	if err != nil {
		return nil, err
	}
	m := make(map[string]sideEntry, len(flat))
	for p, f := range flat {
		m[p] = sideEntry{FileEntry: f}
	}
	return m, nil
}

// collectPaths returns the sorted union of paths across the three maps.
func collectPaths(baseMap map[string]tree.FileEntry, oursMap, theirsMap map[string]sideEntry) []string {
	seen := make(map[string]struct{})
	for p := range baseMap {
		seen[p] = struct{}{}
	}
	for p := range oursMap {
		seen[p] = struct{}{}
	}
	for p := range theirsMap {
		seen[p] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
