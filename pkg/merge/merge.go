package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plumbvcs/plumb/pkg/history"
	"github.com/plumbvcs/plumb/pkg/object"
)

// MergeHead names one commit being merged in. It takes one of three
// forms: a resolved local ref (Ref set), a fetch-head record from a
// remote (Branch and Remote set), or a bare commit id. The extra fields
// only shape the generated merge message.
type MergeHead struct {
	ID     object.ID
	Ref    string
	Branch string
	Remote string
}

// HeadFromID wraps a bare commit id.
func HeadFromID(id object.ID) MergeHead {
	return MergeHead{ID: id}
}

// HeadFromRef records the ref a commit id was resolved from, for example
// "refs/heads/topic".
func HeadFromRef(ref string, id object.ID) MergeHead {
	return MergeHead{ID: id, Ref: ref}
}

// HeadFromFetchHead records a commit fetched from a remote: the branch
// name on the remote plus the remote's URL.
func HeadFromFetchHead(branch, remoteURL string, id object.ID) MergeHead {
	return MergeHead{ID: id, Branch: branch, Remote: remoteURL}
}

func (h MergeHead) describe() string {
	switch {
	case h.Remote != "":
		return fmt.Sprintf("branch '%s' of %s", h.Branch, h.Remote)
	case strings.HasPrefix(h.Ref, "refs/heads/"):
		return fmt.Sprintf("branch '%s'", strings.TrimPrefix(h.Ref, "refs/heads/"))
	case strings.HasPrefix(h.Ref, "refs/remotes/"):
		return fmt.Sprintf("remote-tracking branch '%s'", strings.TrimPrefix(h.Ref, "refs/remotes/"))
	case h.Ref != "":
		return fmt.Sprintf("ref '%s'", h.Ref)
	default:
		return fmt.Sprintf("commit '%s'", h.ID.String()[:8])
	}
}

// Message builds the conventional subject line for a merge of the given
// heads.
func Message(heads []MergeHead) string {
	parts := make([]string, len(heads))
	for i, h := range heads {
		parts[i] = h.describe()
	}
	return "Merge " + strings.Join(parts, " and ")
}

// ResultKind classifies what a commit-level merge produced.
type ResultKind int

const (
	// ResultUpToDate means theirs is already reachable from ours; there
	// is nothing to do.
	ResultUpToDate ResultKind = iota
	// ResultFastForward means ours can simply advance to FastForwardID.
	ResultFastForward
	// ResultMerged means a real tree merge ran; inspect Index.
	ResultMerged
)

func (k ResultKind) String() string {
	switch k {
	case ResultUpToDate:
		return "up-to-date"
	case ResultFastForward:
		return "fast-forward"
	case ResultMerged:
		return "merged"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of a commit-level merge. For ResultMerged, Index
// holds the staged entries and BaseID the merge base used (zero when the
// histories are disjoint).
type Result struct {
	Kind          ResultKind
	FastForwardID object.ID
	BaseID        object.ID
	Index         *Index
}

// Merge merges the head commits into ours at the commit level. It
// classifies the merge as up-to-date or fast-forward where possible and
// otherwise runs the tree engine over the merge base. Heads already
// contained in ours are discarded first; when more than one head
// survives, the merge would need an octopus tree merge and is rejected.
func Merge(s object.Store, g *history.Graph, ours object.ID, heads []MergeHead, opts Options) (*Result, error) {
	if _, err := opts.withDefaults(); err != nil {
		return nil, err
	}
	if len(heads) == 0 {
		return nil, fmt.Errorf("merge: no heads given: %w", object.ErrInvalidArgument)
	}

	var pending []MergeHead
	for _, h := range heads {
		reachable, err := g.IsAncestor(h.ID, ours)
		if err != nil {
			return nil, err
		}
		if !reachable {
			pending = append(pending, h)
		}
	}
	if len(pending) == 0 {
		return &Result{Kind: ResultUpToDate}, nil
	}
	if len(pending) > 1 {
		return nil, fmt.Errorf("merge: octopus merge of %d heads not supported: %w", len(pending), object.ErrInvalidArgument)
	}
	theirs := pending[0].ID

	oursIsBase, err := g.IsAncestor(ours, theirs)
	if err != nil {
		return nil, err
	}
	if oursIsBase && opts.FastForward != NoFastForward {
		return &Result{Kind: ResultFastForward, FastForwardID: theirs}, nil
	}
	if !oursIsBase && opts.FastForward == FastForwardOnly {
		return nil, fmt.Errorf("merge: %s has diverged, cannot fast-forward: %w", pending[0].describe(), object.ErrConflict)
	}

	var base object.ID
	if oursIsBase {
		base = ours
	} else {
		base, err = g.MergeBase(ours, theirs)
		if err != nil && !errors.Is(err, object.ErrNotFound) {
			return nil, err
		}
	}

	baseTree := object.ZeroID
	if !base.IsZero() {
		baseCommit, err := history.Lookup(s, base)
		if err != nil {
			return nil, err
		}
		baseTree = baseCommit.TreeID()
	}
	oursCommit, err := history.Lookup(s, ours)
	if err != nil {
		return nil, err
	}
	theirsCommit, err := history.Lookup(s, theirs)
	if err != nil {
		return nil, err
	}

	ix, err := Trees(s, baseTree, oursCommit.TreeID(), theirsCommit.TreeID(), opts)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: ResultMerged, BaseID: base, Index: ix}, nil
}
