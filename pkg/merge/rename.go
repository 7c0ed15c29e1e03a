package merge

import (
	"fmt"
	"sort"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/tree"
)

// detectRenames pairs paths one side deleted with paths it added, by
// content similarity. Pairing is greedy in path order, each added path is
// claimed at most once, and the total number of content comparisons is
// bounded by opts.TargetLimit. Returns old path -> new path.
func detectRenames(s object.Store, deleted, added []tree.FileEntry, opts Options) (map[string]string, error) {
	if len(deleted) == 0 || len(added) == 0 {
		return nil, nil
	}

	sort.Slice(deleted, func(i, j int) bool { return deleted[i].Path < deleted[j].Path })
	sort.Slice(added, func(i, j int) bool { return added[i].Path < added[j].Path })

	renames := make(map[string]string)
	claimed := make(map[string]struct{})
	budget := opts.TargetLimit

	for _, d := range deleted {
		if budget <= 0 {
			break
		}

		var oldData []byte
		bestPath := ""
		bestScore := -1

		for _, a := range added {
			if _, taken := claimed[a.Path]; taken {
				continue
			}
			if budget <= 0 {
				break
			}
			budget--

			// Identical blobs are an exact rename; skip the metric.
			if a.ID == d.ID {
				bestPath, bestScore = a.Path, 100
				break
			}

			if oldData == nil {
				blob, err := object.GetBlob(s, d.ID)
				if err != nil {
					return nil, fmt.Errorf("rename detection: %w", err)
				}
				oldData = blob.Data
			}
			newBlob, err := object.GetBlob(s, a.ID)
			if err != nil {
				return nil, fmt.Errorf("rename detection: %w", err)
			}

			if score := opts.Similarity(oldData, newBlob.Data); score > bestScore {
				bestPath, bestScore = a.Path, score
			}
		}

		if bestScore >= opts.RenameThreshold {
			renames[d.Path] = bestPath
			claimed[bestPath] = struct{}{}
		}
	}

	return renames, nil
}
