// Package extract walks a parsed tree and produces the ordered token
// sequence the diff core compares, applying kind filters, whitespace
// stripping, and optional grapheme splitting (spec.md §4.C).
package extract

import (
	"github.com/rivo/uniseg"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/diffsitter/internal/parser"
	"github.com/odvcencio/diffsitter/internal/token"
)

// Options controls leaf extraction. The zero value extracts every leaf
// with no filtering, stripping, or splitting.
type Options struct {
	// IncludeKinds, if non-empty, keeps only leaves whose kind is a
	// member. ExcludeKinds takes precedence over IncludeKinds.
	IncludeKinds map[string]bool
	ExcludeKinds map[string]bool

	// StripWhitespace drops whitespace-only tokens entirely.
	StripWhitespace bool

	// SplitGraphemes emits one token per grapheme cluster instead of one
	// token per leaf.
	SplitGraphemes bool
}

func (o Options) keep(kind string) bool {
	if o.ExcludeKinds[kind] {
		return false
	}
	if len(o.IncludeKinds) > 0 && !o.IncludeKinds[kind] {
		return false
	}
	return true
}

// Extract walks root in source order and returns the filtered token
// sequence. source must be the same byte slice root was parsed from;
// returned tokens borrow directly into it.
func Extract(root *sitter.Node, source []byte, doc token.Document, opts Options) token.Sequence {
	var out token.Sequence

	parser.Walk(root, func(n *sitter.Node) bool {
		if n.ChildCount() != 0 {
			return true
		}
		kind := n.Type()
		if !opts.keep(kind) {
			return true
		}

		start, end := n.StartByte(), n.EndByte()
		text := source[start:end]

		tok := token.Token{
			Text: text,
			Kind: kind,
			Origin: token.Origin{
				Document:  doc,
				StartLine: n.StartPoint().Row,
				StartCol:  n.StartPoint().Column,
				EndLine:   n.EndPoint().Row,
				EndCol:    n.EndPoint().Column,
				ByteStart: start,
				ByteEnd:   end,
			},
		}

		if opts.StripWhitespace && tok.IsWhitespace() {
			return true
		}

		if !opts.SplitGraphemes {
			out = append(out, tok)
			return true
		}

		out = append(out, splitGraphemes(tok)...)
		return true
	})

	return out
}

// splitGraphemes emits one token per grapheme cluster of tok's text,
// preserving byte-accurate origins for each cluster.
func splitGraphemes(tok token.Token) token.Sequence {
	var out token.Sequence

	gr := uniseg.NewGraphemes(string(tok.Text))
	base := tok.Origin.ByteStart
	line, col := tok.Origin.StartLine, tok.Origin.StartCol

	for gr.Next() {
		start, end := gr.Positions()
		clusterBytes := tok.Text[start:end]

		origin := token.Origin{
			Document:  tok.Origin.Document,
			StartLine: line,
			StartCol:  col,
			ByteStart: base + uint32(start),
			ByteEnd:   base + uint32(end),
		}
		for _, r := range clusterBytes {
			if r == '\n' {
				line++
				col = 0
			} else {
				col++
			}
		}
		origin.EndLine = line
		origin.EndCol = col

		out = append(out, token.Token{
			Text:   clusterBytes,
			Kind:   tok.Kind,
			Origin: origin,
		})
	}

	return out
}
