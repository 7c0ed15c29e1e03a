// Package textmerge performs line-level three-way merges: two Myers edit
// scripts against a common base are aligned into stable and unstable
// regions, and unstable regions that both sides rewrote differently
// become conflicts.
package textmerge

import (
	"bytes"
	"strings"
)

// Labels name the two sides in emitted conflict markers.
type Labels struct {
	Ours   string
	Theirs string
}

// DefaultLabels are used when the caller supplies none.
var DefaultLabels = Labels{Ours: "ours", Theirs: "theirs"}

// Result is the outcome of a three-way merge.
type Result struct {
	Merged    []byte // full merged content, with conflict markers if any
	Conflicts int    // number of conflicted regions
}

// HasConflicts reports whether any region required manual resolution.
func (r Result) HasConflicts() bool { return r.Conflicts > 0 }

// Merge performs a three-way merge of base, ours, and theirs.
//
// Both sides are diffed against the base. Regions where at least one side
// agrees with the base merge cleanly; a region rewritten identically on
// both sides also merges cleanly; anything else is emitted between
// conflict markers.
func Merge(base, ours, theirs []byte, labels Labels) Result {
	if labels.Ours == "" {
		labels.Ours = DefaultLabels.Ours
	}
	if labels.Theirs == "" {
		labels.Theirs = DefaultLabels.Theirs
	}

	baseLines := splitLines(base)
	oursLines := splitLines(ours)
	theirsLines := splitLines(theirs)

	matchOurs := alignment(baseLines, oursLines)
	matchTheirs := alignment(baseLines, theirsLines)

	var out bytes.Buffer
	conflicts := 0

	bi, oi, ti := 0, 0, 0
	for {
		// Emit the stable run: lines where all three agree in lockstep.
		for bi < len(baseLines) && matchOurs[bi] == oi && matchTheirs[bi] == ti {
			out.WriteString(baseLines[bi])
			out.WriteByte('\n')
			bi++
			oi++
			ti++
		}

		if bi >= len(baseLines) && oi >= len(oursLines) && ti >= len(theirsLines) {
			break
		}

		// Unstable region: scan to the next base line matched by both
		// sides, or to the end of all three inputs.
		end := bi
		for end < len(baseLines) && (!matched(matchOurs, end) || !matched(matchTheirs, end)) {
			end++
		}
		oEnd, tEnd := len(oursLines), len(theirsLines)
		if end < len(baseLines) {
			oEnd = matchOurs[end]
			tEnd = matchTheirs[end]
		}

		conflicts += emitRegion(&out, labels,
			baseLines[bi:end], oursLines[oi:oEnd], theirsLines[ti:tEnd])

		bi, oi, ti = end, oEnd, tEnd
	}

	merged := out.Bytes()
	if !mergedEndsWithNewline(base, ours, theirs) && len(merged) > 0 {
		merged = merged[:len(merged)-1]
	}
	return Result{Merged: merged, Conflicts: conflicts}
}

// mergedEndsWithNewline three-way merges the trailing-newline state of
// the inputs, so newline-less files stay newline-less unless a side
// added the terminator.
func mergedEndsWithNewline(base, ours, theirs []byte) bool {
	baseNL := endsWithNewline(base)
	oursNL := endsWithNewline(ours)
	if oursNL == baseNL {
		return endsWithNewline(theirs)
	}
	return oursNL
}

// endsWithNewline treats empty content as terminated; it contributes no
// final line to preserve.
func endsWithNewline(data []byte) bool {
	return len(data) == 0 || data[len(data)-1] == '\n'
}

// emitRegion resolves one unstable region and returns 1 when it conflicts.
func emitRegion(out *bytes.Buffer, labels Labels, base, ours, theirs []string) int {
	oursChanged := !linesEqual(base, ours)
	theirsChanged := !linesEqual(base, theirs)

	switch {
	case !oursChanged && !theirsChanged:
		writeLines(out, base)
	case oursChanged && !theirsChanged:
		writeLines(out, ours)
	case !oursChanged && theirsChanged:
		writeLines(out, theirs)
	case linesEqual(ours, theirs):
		// Identical rewrite on both sides.
		writeLines(out, ours)
	default:
		out.WriteString("<<<<<<< " + labels.Ours + "\n")
		writeLines(out, ours)
		out.WriteString("=======\n")
		writeLines(out, theirs)
		out.WriteString(">>>>>>> " + labels.Theirs + "\n")
		return 1
	}
	return 0
}

// alignment maps each base line index to the side index of its matched
// line, or -1 where the line has no counterpart. Myers alignments are
// monotonic, so the mapping preserves order.
func alignment(base, side []string) []int {
	match := make([]int, len(base))
	for i := range match {
		match[i] = -1
	}

	bi, si := 0, 0
	for _, op := range Diff(base, side) {
		switch op.Kind {
		case OpEqual:
			match[bi] = si
			bi++
			si++
		case OpDelete:
			bi++
		case OpInsert:
			si++
		}
	}
	return match
}

func matched(match []int, i int) bool {
	return match[i] >= 0
}

// splitLines splits content into lines; a trailing newline does not
// produce an extra empty element.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(out *bytes.Buffer, lines []string) {
	for _, l := range lines {
		out.WriteString(l)
		out.WriteByte('\n')
	}
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
