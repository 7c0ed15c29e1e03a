package textmerge

// OpKind classifies a line in an edit script.
type OpKind int

const (
	OpEqual  OpKind = iota // line unchanged between a and b
	OpInsert               // line present in b only
	OpDelete               // line present in a only
)

// Op is a single operation in an edit script produced by Diff.
type Op struct {
	Kind OpKind
	Line string
}

// Diff computes the shortest edit script transforming a into b with the
// Myers algorithm on whole lines. Runs in O((N+M)*D) where D is the size
// of the minimum edit script.
func Diff(a, b []string) []Op {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]Op, m)
		for i, line := range b {
			ops[i] = Op{Kind: OpInsert, Line: line}
		}
		return ops
	}
	if m == 0 {
		ops := make([]Op, n)
		for i, line := range a {
			ops[i] = Op{Kind: OpDelete, Line: line}
		}
		return ops
	}

	maxD := n + m
	size := 2*maxD + 1
	v := make([]int, size)

	// trace[d] snapshots v before depth d is processed; backtracking
	// consults it to recover the path.
	var trace [][]int
	depth := -1

forward:
	for d := 0; d <= maxD; d++ {
		snapshot := make([]int, size)
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			idx := k + maxD
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1]
			} else {
				x = v[idx-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[idx] = x
			if x >= n && y >= m {
				depth = d
				break forward
			}
		}
	}

	// Backtrack from (n, m) to (0, 0), collecting ops in reverse.
	var rev []Op
	x, y := n, m
	for d := depth; d >= 0 && (x > 0 || y > 0); d-- {
		if d == 0 {
			for x > 0 && y > 0 {
				rev = append(rev, Op{Kind: OpEqual, Line: a[x-1]})
				x--
				y--
			}
			break
		}

		vd := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && vd[k-1+maxD] < vd[k+1+maxD]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vd[prevK+maxD]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			rev = append(rev, Op{Kind: OpEqual, Line: a[x-1]})
			x--
			y--
		}
		if x == prevX {
			rev = append(rev, Op{Kind: OpInsert, Line: b[y-1]})
			y--
		} else {
			rev = append(rev, Op{Kind: OpDelete, Line: a[x-1]})
			x--
		}
	}

	ops := make([]Op, len(rev))
	for i, op := range rev {
		ops[len(rev)-1-i] = op
	}
	return ops
}
