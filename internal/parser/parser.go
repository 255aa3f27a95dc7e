// Package parser drives tree-sitter over source bytes and exposes a
// depth-first leaf walk for the extractor.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/diffsitter/internal/dserrors"
)

// Tree wraps a parsed tree-sitter tree together with the source bytes it
// was parsed from; tokens borrow into Source and must not outlive it.
type Tree struct {
	Source []byte
	tree   *sitter.Tree
}

// Root returns the tree's root node, or nil for a zero Tree or one that
// has been closed. Parse never returns a Tree without an underlying tree;
// it reports ParseFailed instead.
func (t *Tree) Root() *sitter.Node {
	if t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree. Safe to call on a zero
// Tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses source against lang. Tree-sitter guarantees a tree even for
// invalid input (partial parses are not an error per spec.md §4.B); this
// only returns ParseFailed when the parser itself declines to run, e.g. a
// cancelled context or a nil language handle.
func Parse(ctx context.Context, source []byte, lang *sitter.Language) (*Tree, error) {
	if lang == nil {
		return nil, &dserrors.ParseFailed{Reason: "nil language handle"}
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &dserrors.ParseFailed{Reason: err.Error()}
	}
	if tree == nil {
		return nil, &dserrors.ParseFailed{Reason: "parser returned no tree"}
	}

	return &Tree{Source: source, tree: tree}, nil
}

// Visitor is called once per node during a depth-first, pre-order walk.
// Returning false from Visitor for a node skips that node's children.
type Visitor func(n *sitter.Node) bool

// Walk performs a depth-first, pre-order traversal of the tree rooted at
// root, calling visit for every node including root itself.
func Walk(root *sitter.Node, visit Visitor) {
	if root == nil {
		return
	}
	walk(root, visit)
}

func walk(n *sitter.Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		walk(n.Child(i), visit)
	}
}

// Leaves returns every leaf node (zero children) in source order under
// root.
func Leaves(root *sitter.Node) []*sitter.Node {
	var leaves []*sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if n.ChildCount() == 0 {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}
