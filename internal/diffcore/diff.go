// Package diffcore computes a minimal edit script between two token
// sequences using Myers' O((N+M)*D) algorithm (spec.md §4.D).
package diffcore

import "github.com/odvcencio/diffsitter/internal/token"

// Op tags an Edit as an insertion into B or a deletion from A.
type Op uint8

const (
	OpDelete Op = iota
	OpInsert
)

// Edit is one step of an edit script: a deletion of a token from A or an
// insertion of a token from B.
type Edit struct {
	Op    Op
	Token token.Token
	// Index is the token's position in its own sequence (A for deletes,
	// B for inserts), useful for callers that need to relate an edit
	// back to its source sequence.
	Index int
}

// lineDiffThreshold bounds the worst-case O(N*D) work of the plain Myers
// walk. Above it, Diff falls back to diffing tokens grouped by source
// line, per spec.md §4.D's "implementation SHOULD bound work" allowance.
// This is an implementation choice, not a correctness requirement.
const lineDiffThreshold = 100_000

// Diff computes a minimal edit script transforming a into b. Ties in the
// traceback resolve toward deletions before insertions at the same
// position, matching spec.md §4.D's determinism requirement.
func Diff(a, b token.Sequence) []Edit {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	if len(a) == 0 {
		return allInserts(b)
	}
	if len(b) == 0 {
		return allDeletes(a)
	}

	if int64(len(a))+int64(len(b)) > lineDiffThreshold {
		return lineDiff(a, b)
	}

	return myers(a, b)
}

func allInserts(b token.Sequence) []Edit {
	edits := make([]Edit, len(b))
	for i, tok := range b {
		edits[i] = Edit{Op: OpInsert, Token: tok, Index: i}
	}
	return edits
}

func allDeletes(a token.Sequence) []Edit {
	edits := make([]Edit, len(a))
	for i, tok := range a {
		edits[i] = Edit{Op: OpDelete, Token: tok, Index: i}
	}
	return edits
}

// myers implements the classic Myers diff via the forward-snake
// shortest-edit-script search, then walks the trace backward to emit
// edits in merged order. The diagonal vector v is allocated once per call
// and reused across the D-loop; each D still saves a fresh copy of it in
// trace for the backward walk.
func myers(a, b token.Sequence) []Edit {
	n, m := len(a), len(b)
	max := n + m

	// v holds, for the current D, the furthest-reaching x coordinate
	// on each diagonal k, offset by max so indices stay non-negative.
	trace := make([][]int, 0, max+1)
	v := make([]int, 2*max+1)

	offset := max

	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			for x < n && y < m && a[x].Equal(b[y]) {
				x++
				y++
			}

			v[offset+k] = x

			if x >= n && y >= m {
				return backtrack(a, b, trace, d, offset)
			}
		}
	}

	// Unreachable: the loop above always finds the end point by d == max.
	return backtrack(a, b, trace, max, offset)
}

// backtrack walks the saved per-D diagonal snapshots from (n,m) back to
// (0,0), then reverses the collected steps into forward order. At each
// step, a diagonal move is an unchanged token (emitted as neither an
// Insert nor a Delete); a move along x (A's axis) is a deletion from A;
// a move along y (B's axis) is an insertion into B.
func backtrack(a, b token.Sequence, trace [][]int, d, offset int) []Edit {
	x, y := len(a), len(b)

	type step struct {
		op      Op
		isMatch bool
		ai, bi  int
	}
	var steps []step

	for depth := d; depth > 0; depth-- {
		v := trace[depth]
		k := x - y

		var prevK int
		if k == -depth || (k != depth && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			steps = append(steps, step{isMatch: true, ai: x, bi: y})
		}

		if x == prevX {
			y--
			steps = append(steps, step{op: OpInsert, bi: y})
		} else {
			x--
			steps = append(steps, step{op: OpDelete, ai: x})
		}

		x, y = prevX, prevY
	}

	for x > 0 && y > 0 && a[x-1].Equal(b[y-1]) {
		x--
		y--
		steps = append(steps, step{isMatch: true, ai: x, bi: y})
	}

	edits := make([]Edit, 0, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if s.isMatch {
			continue
		}
		if s.op == OpDelete {
			edits = append(edits, Edit{Op: OpDelete, Token: a[s.ai], Index: s.ai})
		} else {
			edits = append(edits, Edit{Op: OpInsert, Token: b[s.bi], Index: s.bi})
		}
	}

	return orderTiesDeleteFirst(edits)
}

// orderTiesDeleteFirst ensures that when a delete and an insert occupy
// adjacent positions in the emitted script with no intervening match
// (i.e. they are a "replacement" at the same logical point), the delete
// precedes the insert, per spec.md §4.D.
func orderTiesDeleteFirst(edits []Edit) []Edit {
	for i := 0; i+1 < len(edits); i++ {
		if edits[i].Op == OpInsert && edits[i+1].Op == OpDelete {
			edits[i], edits[i+1] = edits[i+1], edits[i]
		}
	}
	return edits
}

// lineDiff diffs a and b by grouping tokens into lines (by A/B origin
// StartLine) and running the plain Myers algorithm over those line groups
// instead of raw tokens, then flattens back to a token-level edit script.
// This trades some precision (a changed token anywhere on a line marks
// the whole line) for linear-ish behavior on very large inputs.
func lineDiff(a, b token.Sequence) []Edit {
	aLines := groupByLine(a)
	bLines := groupByLine(b)

	aJoined, aStart := make(token.Sequence, len(aLines)), make([]int, len(aLines)+1)
	for i, g := range aLines {
		aJoined[i] = lineToken(g)
		aStart[i+1] = aStart[i] + len(g)
	}
	bJoined, bStart := make(token.Sequence, len(bLines)), make([]int, len(bLines)+1)
	for i, g := range bLines {
		bJoined[i] = lineToken(g)
		bStart[i+1] = bStart[i] + len(g)
	}

	lineEdits := myers(aJoined, bJoined)

	var out []Edit
	for _, e := range lineEdits {
		if e.Op == OpDelete {
			for i, tok := range aLines[e.Index] {
				out = append(out, Edit{Op: OpDelete, Token: tok, Index: aStart[e.Index] + i})
			}
		} else {
			for i, tok := range bLines[e.Index] {
				out = append(out, Edit{Op: OpInsert, Token: tok, Index: bStart[e.Index] + i})
			}
		}
	}
	return out
}

func groupByLine(seq token.Sequence) []token.Sequence {
	var groups []token.Sequence
	var cur token.Sequence
	var curLine uint32
	haveLine := false

	for _, tok := range seq {
		if !haveLine || tok.Origin.StartLine != curLine {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = token.Sequence{tok}
			curLine = tok.Origin.StartLine
			haveLine = true
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// lineToken builds a synthetic token representing an entire line group,
// so the line-level Myers pass can compare lines by concatenated text.
func lineToken(group token.Sequence) token.Token {
	var text []byte
	for _, tok := range group {
		text = append(text, tok.Text...)
	}
	return token.Token{Text: text, Origin: group[0].Origin}
}
