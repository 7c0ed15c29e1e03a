// Package merge computes three-way tree merges: the ancestor, ours, and
// theirs trees are diffed per path, renames are detected, and the result
// is a staged index with conflict entries where automerge cannot resolve.
package merge

import (
	"fmt"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/textmerge"
)

// AutomergeMode selects how divergent changes to the same path resolve.
type AutomergeMode int

const (
	// AutomergeNormal attempts a line-level content merge and falls back
	// to a conflicted entry when lines overlap irreconcilably.
	AutomergeNormal AutomergeMode = iota
	// AutomergeNone produces a conflicted entry on any divergence.
	AutomergeNone
	// AutomergeFavorOurs deterministically picks our side, no conflict.
	AutomergeFavorOurs
	// AutomergeFavorTheirs deterministically picks their side.
	AutomergeFavorTheirs
)

// FastForwardPolicy controls commit-level merge classification.
type FastForwardPolicy int

const (
	// FastForwardAllowed fast-forwards when possible, merges otherwise.
	FastForwardAllowed FastForwardPolicy = iota
	// FastForwardOnly refuses to create a merge: diverged histories fail.
	FastForwardOnly
	// NoFastForward always performs a real merge.
	NoFastForward
)

const (
	// OptionsVersion is the options structure version this engine accepts.
	OptionsVersion = 1
	// DefaultRenameThreshold is the minimum similarity score, in percent,
	// for a delete/add pair to count as a rename.
	DefaultRenameThreshold = 50
	// DefaultTargetLimit caps rename candidate comparisons to bound the
	// quadratic pairing cost.
	DefaultTargetLimit = 200
)

// SimilarityFunc scores content similarity in [0,100].
type SimilarityFunc func(a, b []byte) int

// Options tunes the tree merge engine. The zero value selects defaults.
type Options struct {
	// Version tags the options layout; zero means current.
	Version int

	Automerge AutomergeMode

	// DetectRenames enables pairing deleted and added paths by content
	// similarity.
	DetectRenames bool
	// RenameThreshold overrides DefaultRenameThreshold when non-zero.
	RenameThreshold int
	// TargetLimit overrides DefaultTargetLimit when non-zero.
	TargetLimit int
	// Similarity overrides the built-in metric.
	Similarity SimilarityFunc

	// FastForward applies to commit-level Merge only.
	FastForward FastForwardPolicy

	// Labels name the sides in textual conflict markers.
	Labels textmerge.Labels
}

func (o Options) withDefaults() (Options, error) {
	if o.Version != 0 && o.Version != OptionsVersion {
		return o, fmt.Errorf("merge options: unsupported version %d: %w", o.Version, object.ErrInvalidArgument)
	}
	if o.RenameThreshold == 0 {
		o.RenameThreshold = DefaultRenameThreshold
	}
	if o.RenameThreshold < 0 || o.RenameThreshold > 100 {
		return o, fmt.Errorf("merge options: rename threshold %d out of range: %w", o.RenameThreshold, object.ErrInvalidArgument)
	}
	if o.TargetLimit == 0 {
		o.TargetLimit = DefaultTargetLimit
	}
	if o.Similarity == nil {
		o.Similarity = DefaultSimilarity
	}
	return o, nil
}
