package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/odvcencio/diffsitter/internal/hunk"
)

// Renderer emits hunks as unified-mode human-readable text. Split/custom
// modes reuse this same emission logic with a different StyleTable,
// since a custom mode always declares Type: "unified" (spec.md §4.F).
type Renderer struct {
	Mode   Mode
	Styled bool // false suppresses all color/attribute emission
}

// New constructs a Renderer for mode. styled should be false whenever the
// destination is not a terminal; the caller decides that (spec.md §4.F),
// typically via github.com/mattn/go-isatty against the destination fd.
func New(mode Mode, styled bool) *Renderer {
	return &Renderer{Mode: mode, Styled: styled}
}

// Render writes every hunk to w in script order.
func (r *Renderer) Render(w io.Writer, hunks []hunk.Hunk) error {
	for _, h := range hunks {
		if err := r.renderHunk(w, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderHunk(w io.Writer, h hunk.Hunk) error {
	switch h.Kind {
	case hunk.KindDeletion:
		return r.renderSide(w, h.DeletionLine, r.Mode.Styles.Deletion, h.DeletionSegments)
	case hunk.KindAddition:
		return r.renderSide(w, h.InsertionLine, r.Mode.Styles.Addition, h.InsertionSegments)
	case hunk.KindPaired:
		if err := r.renderSide(w, h.DeletionLine, r.Mode.Styles.Deletion, h.DeletionSegments); err != nil {
			return err
		}
		return r.renderSide(w, h.InsertionLine, r.Mode.Styles.Addition, h.InsertionSegments)
	default:
		return fmt.Errorf("render: unknown hunk kind %v", h.Kind)
	}
}

func (r *Renderer) renderSide(w io.Writer, line uint32, style StyleEntry, segments []hunk.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%d:\n", line+1); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "---"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, style.Prefix); err != nil {
		return err
	}
	for _, seg := range segments {
		if err := r.writeSegment(w, style, seg); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (r *Renderer) writeSegment(w io.Writer, style StyleEntry, seg hunk.Segment) error {
	if !r.Styled {
		_, err := w.Write(seg.Text)
		return err
	}

	fg := style.RegularForeground
	if seg.Emphasized {
		fg = style.EmphasizedForeground
	}

	attrs := fg.attributes(true)
	if style.Highlight.IsSet() {
		attrs = append(attrs, style.Highlight.attributes(false)...)
	}
	if style.Bold {
		attrs = append(attrs, color.Bold)
	}
	if style.Underline {
		attrs = append(attrs, color.Underline)
	}

	c := color.New(attrs...)
	_, err := c.Fprint(w, string(seg.Text))
	return err
}
