package hunk

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/diffsitter/internal/diffcore"
	"github.com/odvcencio/diffsitter/internal/token"
)

func tok(text string, line uint32) token.Token {
	return token.Token{Text: []byte(text), Origin: token.Origin{StartLine: line}}
}

func TestAssembleEmptyScript(t *testing.T) {
	hunks := Assemble(nil)
	if len(hunks) != 0 {
		t.Fatalf("expected no hunks for empty script, got %d", len(hunks))
	}
}

func TestAssembleStandaloneDeletion(t *testing.T) {
	script := []diffcore.Edit{
		{Op: diffcore.OpDelete, Token: tok("let", 1)},
		{Op: diffcore.OpDelete, Token: tok("x", 1)},
		{Op: diffcore.OpDelete, Token: tok("=", 1)},
		{Op: diffcore.OpDelete, Token: tok("1", 1)},
		{Op: diffcore.OpDelete, Token: tok(";", 1)},
	}
	hunks := Assemble(script)
	if len(hunks) != 1 {
		t.Fatalf("expected exactly one hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if h.Kind != KindDeletion {
		t.Fatalf("expected KindDeletion, got %v", h.Kind)
	}
	if h.DeletionLine != 1 {
		t.Errorf("expected deletion line 1, got %d", h.DeletionLine)
	}
	if got := string(h.DeletionSegments[0].Text); got != "letx=1;" {
		t.Errorf("expected concatenated text %q, got %q", "letx=1;", got)
	}
}

func TestAssembleStandaloneAddition(t *testing.T) {
	script := []diffcore.Edit{
		{Op: diffcore.OpInsert, Token: tok("fn", 2)},
		{Op: diffcore.OpInsert, Token: tok("addition", 2)},
	}
	hunks := Assemble(script)
	if len(hunks) != 1 || hunks[0].Kind != KindAddition {
		t.Fatalf("expected single addition hunk, got %+v", hunks)
	}
	if hunks[0].InsertionLine != 2 {
		t.Errorf("expected insertion line 2, got %d", hunks[0].InsertionLine)
	}
}

func TestAssemblePairedHunkEmphasis(t *testing.T) {
	script := []diffcore.Edit{
		{Op: diffcore.OpDelete, Token: tok("one", 1)},
		{Op: diffcore.OpInsert, Token: tok("two", 1)},
	}
	hunks := Assemble(script)
	if len(hunks) != 1 {
		t.Fatalf("expected one paired hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if h.Kind != KindPaired {
		t.Fatalf("expected KindPaired, got %v", h.Kind)
	}
	if h.DeletionLine != 1 || h.InsertionLine != 1 {
		t.Errorf("expected both sides anchored on line 1, got del=%d ins=%d", h.DeletionLine, h.InsertionLine)
	}

	// "one" vs "two" share the common subsequence "o": the rest differs.
	var sawEmphasis bool
	for _, seg := range h.DeletionSegments {
		if seg.Emphasized {
			sawEmphasis = true
		}
	}
	if !sawEmphasis {
		t.Errorf("expected at least one emphasized segment on the deletion side")
	}
}

func TestAssemblePairedHunkSegmentsExact(t *testing.T) {
	script := []diffcore.Edit{
		{Op: diffcore.OpDelete, Token: tok("cat", 1)},
		{Op: diffcore.OpInsert, Token: tok("car", 1)},
	}
	hunks := Assemble(script)
	if len(hunks) != 1 {
		t.Fatalf("expected one paired hunk, got %d", len(hunks))
	}

	want := []Segment{
		{Text: []byte("ca"), Emphasized: false},
		{Text: []byte("t"), Emphasized: true},
	}
	if diff := cmp.Diff(want, hunks[0].DeletionSegments); diff != "" {
		t.Errorf("deletion segments mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleCoversEveryEdit(t *testing.T) {
	script := []diffcore.Edit{
		{Op: diffcore.OpDelete, Token: tok("a", 1)},
		{Op: diffcore.OpInsert, Token: tok("b", 1)},
		{Op: diffcore.OpInsert, Token: tok("c", 4)},
	}
	hunks := Assemble(script)

	total := 0
	for _, h := range hunks {
		for _, s := range h.DeletionSegments {
			total += len(s.Text)
		}
		for _, s := range h.InsertionSegments {
			total += len(s.Text)
		}
	}
	want := 0
	for _, e := range script {
		want += len(e.Token.Text)
	}
	if total != want {
		t.Errorf("expected every edit's text to appear exactly once across hunks: got %d bytes, want %d", total, want)
	}
}
