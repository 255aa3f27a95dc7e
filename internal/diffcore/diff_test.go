package diffcore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/diffsitter/internal/token"
)

func seq(words ...string) token.Sequence {
	out := make(token.Sequence, len(words))
	for i, w := range words {
		out[i] = token.Token{Text: []byte(w)}
	}
	return out
}

func editStrings(edits []Edit) []string {
	out := make([]string, len(edits))
	for i, e := range edits {
		prefix := "-"
		if e.Op == OpInsert {
			prefix = "+"
		}
		out[i] = prefix + string(e.Token.Text)
	}
	return out
}

func assertEdits(t *testing.T, got []Edit, want []string) {
	t.Helper()
	gotStrs := editStrings(got)
	if len(gotStrs) != len(want) {
		t.Fatalf("edit count = %d, want %d (%v vs %v)", len(gotStrs), len(want), gotStrs, want)
	}
	for i := range want {
		if gotStrs[i] != want[i] {
			t.Errorf("edit[%d] = %q, want %q (full: %v)", i, gotStrs[i], want[i], gotStrs)
		}
	}
}

func TestDiffIdenticalIsEmpty(t *testing.T) {
	a := seq("fn", "main", "(", ")", "{", "}")
	got := Diff(a, a)
	if len(got) != 0 {
		t.Fatalf("expected empty edit script for identical sequences, got %v", editStrings(got))
	}
}

func TestDiffEmptyAIsAllInserts(t *testing.T) {
	b := seq("a", "b", "c")
	got := Diff(nil, b)
	assertEdits(t, got, []string{"+a", "+b", "+c"})
}

func TestDiffEmptyBIsAllDeletes(t *testing.T) {
	a := seq("a", "b", "c")
	got := Diff(a, nil)
	assertEdits(t, got, []string{"-a", "-b", "-c"})
}

func TestDiffSingleReplacementOrdersDeleteBeforeInsert(t *testing.T) {
	a := seq("x")
	b := seq("y")
	got := Diff(a, b)
	assertEdits(t, got, []string{"-x", "+y"})
}

func TestDiffMinimality(t *testing.T) {
	a := seq("a", "b", "c", "d")
	b := seq("a", "x", "c", "d")
	got := Diff(a, b)
	// LCS(a,b) = [a,c,d] length 3; minimal script length = 4+4-2*3 = 2.
	if len(got) != 2 {
		t.Fatalf("expected minimal script length 2, got %d (%v)", len(got), editStrings(got))
	}
	assertEdits(t, got, []string{"-b", "+x"})
}

func TestDiffPureAppend(t *testing.T) {
	a := seq("fn", "main", "(", ")", "{", "}")
	b := seq("fn", "main", "(", ")", "{", "}", "fn", "addition", "(", ")", "{", "}")
	got := Diff(a, b)
	assertEdits(t, got, []string{"+fn", "+addition", "+(", "+)", "+{", "+}"})
}

func TestDiffPureDeletion(t *testing.T) {
	a := seq("fn", "main", "(", ")", "{", "let", "x", "=", "1", ";", "}")
	b := seq("fn", "main", "(", ")", "{", "}")
	got := Diff(a, b)
	assertEdits(t, got, []string{"-let", "-x", "-=", "-1", "-;"})
}

// TestDiffIsDeterministic exercises spec.md §8's determinism property:
// two runs on identical inputs must produce byte-identical edit scripts,
// including which token backs each edit.
func TestDiffIsDeterministic(t *testing.T) {
	a := seq("fn", "main", "(", ")", "{", "let", "x", "=", "1", ";", "}")
	b := seq("fn", "main", "(", ")", "{", "let", "x", "=", "2", ";", "}")

	first := Diff(a, b)
	second := Diff(a, b)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Diff is not deterministic across runs (-first +second):\n%s", diff)
	}
}
