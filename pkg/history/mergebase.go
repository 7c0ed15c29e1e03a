package history

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/plumbvcs/plumb/pkg/object"
)

// Reachability colors in the merge-base walk.
const (
	colorOurs   = 1 << iota // reached from the first input
	colorTheirs             // reached from the second input
	colorBoth   = colorOurs | colorTheirs
)

type basePair struct {
	left  object.ID
	right object.ID
}

type baseMemo struct {
	base  object.ID
	found bool
}

// Graph answers ancestry queries over the commit DAG of one store. It
// memoizes commit reads and merge-base pairs; the model is synchronous
// and single-threaded, so no locking is involved.
type Graph struct {
	store   object.Store
	commits map[object.ID]*object.Commit
	memo    map[basePair]baseMemo
}

// NewGraph creates a Graph over the given store.
func NewGraph(s object.Store) *Graph {
	return &Graph{
		store:   s,
		commits: make(map[object.ID]*object.Commit),
		memo:    make(map[basePair]baseMemo),
	}
}

func (g *Graph) commit(id object.ID) (*object.Commit, error) {
	if c, ok := g.commits[id]; ok {
		return c, nil
	}
	c, err := object.GetCommit(g.store, id)
	if err != nil {
		return nil, fmt.Errorf("merge base: read commit %s: %w", id, err)
	}
	g.commits[id] = c
	return c, nil
}

func canonicalPair(a, b object.ID) basePair {
	if a.Less(b) {
		return basePair{left: a, right: b}
	}
	return basePair{left: b, right: a}
}

// MergeBase finds the best common ancestor of two commits: a priority
// walk over both histories ordered by commit time descending, coloring
// each visited commit by the side(s) that reached it. The first commit
// popped carrying both colors is the base; commit time (then smaller id)
// is the documented deterministic tie-break. Disjoint histories report
// ErrNotFound.
func (g *Graph) MergeBase(a, b object.ID) (object.ID, error) {
	ca, err := g.commit(a)
	if err != nil {
		return object.ZeroID, err
	}
	if a == b {
		return a, nil
	}
	cb, err := g.commit(b)
	if err != nil {
		return object.ZeroID, err
	}

	pair := canonicalPair(a, b)
	if m, ok := g.memo[pair]; ok {
		if !m.found {
			return object.ZeroID, fmt.Errorf("merge base of %s and %s: %w", a, b, object.ErrNotFound)
		}
		return m.base, nil
	}

	base, found, err := g.paintDownToCommon(a, ca, b, cb)
	if err != nil {
		return object.ZeroID, err
	}
	g.memo[pair] = baseMemo{base: base, found: found}
	if !found {
		return object.ZeroID, fmt.Errorf("merge base of %s and %s: %w", a, b, object.ErrNotFound)
	}
	return base, nil
}

func (g *Graph) paintDownToCommon(a object.ID, ca *object.Commit, b object.ID, cb *object.Commit) (object.ID, bool, error) {
	colors := map[object.ID]uint8{a: colorOurs, b: colorTheirs}

	queue := commitTimeHeap{
		{id: a, when: ca.Committer.When},
		{id: b, when: cb.Committer.When},
	}
	heap.Init(&queue)

	for queue.Len() > 0 {
		item := heap.Pop(&queue).(walkItem)
		color := colors[item.id]
		if color == colorBoth {
			return item.id, true, nil
		}

		c, err := g.commit(item.id)
		if err != nil {
			return object.ZeroID, false, err
		}
		for _, p := range c.Parents {
			merged := colors[p] | color
			if merged == colors[p] {
				continue
			}
			colors[p] = merged
			pc, err := g.commit(p)
			if err != nil {
				return object.ZeroID, false, err
			}
			heap.Push(&queue, walkItem{id: p, when: pc.Committer.When})
		}
	}

	return object.ZeroID, false, nil
}

// MergeBaseMany generalizes MergeBase to more than two inputs by folding
// pairwise: the result is an ancestor of every input. Fewer than two
// inputs report ErrInvalidArgument; a missing universal ancestor reports
// ErrNotFound.
func (g *Graph) MergeBaseMany(ids []object.ID) (object.ID, error) {
	if len(ids) < 2 {
		return object.ZeroID, fmt.Errorf("merge base: need at least two commits, got %d: %w", len(ids), object.ErrInvalidArgument)
	}
	base := ids[0]
	for _, id := range ids[1:] {
		next, err := g.MergeBase(base, id)
		if err != nil {
			return object.ZeroID, err
		}
		base = next
	}
	return base, nil
}

// IsAncestor reports whether ancestor is reachable from descendant by
// parent links.
func (g *Graph) IsAncestor(ancestor, descendant object.ID) (bool, error) {
	base, err := g.MergeBase(ancestor, descendant)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return base == ancestor, nil
}
