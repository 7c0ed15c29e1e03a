package history

import "github.com/plumbvcs/plumb/pkg/object"

type walkItem struct {
	id   object.ID
	when int64
}

// commitTimeHeap is a max-heap ordered by commit timestamp, so the walk
// visits more recent commits first. Equal timestamps break the tie on the
// smaller id, which keeps merge-base selection deterministic.
type commitTimeHeap []walkItem

func (h commitTimeHeap) Len() int { return len(h) }

func (h commitTimeHeap) Less(i, j int) bool {
	if h[i].when == h[j].when {
		return h[i].id.Less(h[j].id)
	}
	return h[i].when > h[j].when
}

func (h commitTimeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *commitTimeHeap) Push(x any) {
	*h = append(*h, x.(walkItem))
}

func (h *commitTimeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
