// Package hunk groups a flat edit script into display hunks, pairing
// adjacent deletion/insertion groups that share a line number and
// computing intra-hunk emphasis via a secondary character-level LCS
// (spec.md §4.E).
package hunk

import (
	"github.com/rivo/uniseg"

	"github.com/odvcencio/diffsitter/internal/diffcore"
)

// Kind classifies a hunk by which side(s) of the diff it covers.
type Kind uint8

const (
	KindDeletion Kind = iota
	KindAddition
	KindPaired
)

// Segment is one contiguous run of text within a hunk side, flagged as
// emphasized when it falls outside the character-level common
// subsequence computed for a paired hunk.
type Segment struct {
	Text       []byte
	Emphasized bool
}

// Hunk is a contiguous group of edits sharing a source line on at least
// one side.
//
// For KindDeletion, only DeletionLine and DeletionSegments are
// meaningful. For KindAddition, only InsertionLine and
// InsertionSegments are meaningful. For KindPaired, both sides are
// populated and Segments carry emphasis.
type Hunk struct {
	Kind Kind

	DeletionLine  uint32
	InsertionLine uint32

	DeletionSegments  []Segment
	InsertionSegments []Segment
}

type group struct {
	op     diffcore.Op
	line   uint32
	tokens []diffcore.Edit
}

// Assemble transforms a flat edit script into display hunks. Every edit
// in script appears in exactly one returned hunk, in the order the
// edit's group first appears in script; ties at the same position prefer
// deletion before insertion, matching the order edits already come in
// from diffcore.Diff.
func Assemble(script []diffcore.Edit) []Hunk {
	groups := groupByLine(script)
	return pair(groups)
}

// groupByLine collapses consecutive same-Op, same-line edits into
// candidate groups, per spec.md §4.E step 1.
func groupByLine(script []diffcore.Edit) []group {
	var groups []group
	for _, e := range script {
		line := lineFor(e)
		if n := len(groups); n > 0 {
			last := &groups[n-1]
			if last.op == e.Op && last.line == line {
				last.tokens = append(last.tokens, e)
				continue
			}
		}
		groups = append(groups, group{op: e.Op, line: line, tokens: []diffcore.Edit{e}})
	}
	return groups
}

func lineFor(e diffcore.Edit) uint32 {
	return e.Token.Origin.StartLine
}

// pair walks adjacent groups and merges a deletion group with an
// immediately adjacent insertion group sharing a line number into one
// paired hunk; otherwise each group stands alone, per spec.md §4.E
// step 2.
func pair(groups []group) []Hunk {
	var hunks []Hunk

	for i := 0; i < len(groups); i++ {
		g := groups[i]

		if i+1 < len(groups) {
			next := groups[i+1]
			if samePairedLine(g, next) {
				hunks = append(hunks, buildPaired(g, next))
				i++
				continue
			}
		}

		hunks = append(hunks, buildStandalone(g))
	}

	return hunks
}

func samePairedLine(a, b group) bool {
	if a.op == diffcore.OpDelete && b.op == diffcore.OpInsert {
		return a.line == b.line
	}
	if a.op == diffcore.OpInsert && b.op == diffcore.OpDelete {
		return a.line == b.line
	}
	return false
}

func buildStandalone(g group) Hunk {
	segs := []Segment{{Text: concatText(g.tokens), Emphasized: false}}
	if g.op == diffcore.OpDelete {
		return Hunk{Kind: KindDeletion, DeletionLine: g.line, DeletionSegments: segs}
	}
	return Hunk{Kind: KindAddition, InsertionLine: g.line, InsertionSegments: segs}
}

func buildPaired(a, b group) Hunk {
	var delGroup, insGroup group
	if a.op == diffcore.OpDelete {
		delGroup, insGroup = a, b
	} else {
		delGroup, insGroup = b, a
	}

	delText := concatText(delGroup.tokens)
	insText := concatText(insGroup.tokens)

	delSegs, insSegs := emphasize(delText, insText)

	return Hunk{
		Kind:              KindPaired,
		DeletionLine:      delGroup.line,
		InsertionLine:     insGroup.line,
		DeletionSegments:  delSegs,
		InsertionSegments: insSegs,
	}
}

func concatText(edits []diffcore.Edit) []byte {
	var out []byte
	for _, e := range edits {
		out = append(out, e.Token.Text...)
	}
	return out
}

// emphasize computes the longest common subsequence of grapheme clusters
// between delText and insText, then returns each side split into
// contiguous emphasized/unemphasized segments: runs on the common
// subsequence are Emphasized=false, runs off it are Emphasized=true.
//
// The many-to-many pairing open question (spec.md §9) is resolved here:
// emphasis is computed once over the full concatenated text of a paired
// hunk, not re-segmented per source line.
func emphasize(delText, insText []byte) ([]Segment, []Segment) {
	delUnits := graphemeUnits(delText)
	insUnits := graphemeUnits(insText)

	delMatch, insMatch := lcsMask(delUnits, insUnits)

	return toSegments(delUnits, delMatch), toSegments(insUnits, insMatch)
}

func graphemeUnits(text []byte) [][]byte {
	var units [][]byte
	gr := uniseg.NewGraphemes(string(text))
	for gr.Next() {
		start, end := gr.Positions()
		units = append(units, text[start:end])
	}
	return units
}

// lcsMask computes the longest common subsequence between a and b (by
// byte-equal units) via standard LCS dynamic programming, and returns
// boolean masks indicating which indices of each side participate in the
// subsequence.
func lcsMask(a, b [][]byte) ([]bool, []bool) {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if unitsEqual(a[i], b[j]) {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	aMask := make([]bool, n)
	bMask := make([]bool, m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case unitsEqual(a[i], b[j]):
			aMask[i] = true
			bMask[j] = true
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return aMask, bMask
}

func unitsEqual(a, b []byte) bool {
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

func toSegments(units [][]byte, match []bool) []Segment {
	var segs []Segment
	var cur []byte
	curEmph := false
	started := false

	flush := func() {
		if started && len(cur) > 0 {
			segs = append(segs, Segment{Text: cur, Emphasized: curEmph})
		}
	}

	for i, u := range units {
		emph := !match[i]
		if started && emph == curEmph {
			cur = append(cur, u...)
			continue
		}
		flush()
		cur = append([]byte{}, u...)
		curEmph = emph
		started = true
	}
	flush()

	return segs
}
