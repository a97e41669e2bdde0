package parser

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_sql "github.com/tree-sitter-grammars/tree-sitter-sql/bindings/go"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/span"
)

// CSTNode is a tagged-sum-style node in the permissive concrete syntax tree:
// each node carries its grammar-assigned Kind, its byte Span, and an
// explicit slice of Children rather than parent/child pointers (spec §9,
// "re-architect as tagged sum types plus a child-visitor interface").
type CSTNode struct {
	Kind      string
	Span      span.Range
	IsError   bool
	IsMissing bool
	Children  []CSTNode
}

// CST wraps the root of a permissive parse.
type CST struct {
	Root CSTNode
}

// VisitEntry is one (node, depth, path) triple produced by Visit's
// stack-based traversal, replacing the source's recursive parent-pointer
// walk (spec §9).
type VisitEntry struct {
	Node  *CSTNode
	Depth int
	Path  []int
}

// Visit performs a depth-first, pre-order traversal of the tree using an
// explicit stack rather than recursion, calling fn for every node including
// the root. Traversal stops early if fn returns false.
func (c *CST) Visit(fn func(VisitEntry) bool) {
	if c == nil {
		return
	}
	type frame struct {
		node  *CSTNode
		depth int
		path  []int
	}
	stack := []frame{{node: &c.Root, depth: 0, path: nil}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(VisitEntry{Node: top.node, Depth: top.depth, Path: top.path}) {
			return
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			childPath := make([]int, len(top.path)+1)
			copy(childPath, top.path)
			childPath[len(top.path)] = i
			stack = append(stack, frame{node: &top.node.Children[i], depth: top.depth + 1, path: childPath})
		}
	}
}

// sqlLanguage is built once; go-tree-sitter languages are immutable and
// safe to share across parses.
var sqlLanguage = tree_sitter.NewLanguage(tree_sitter_sql.Language())

// ParsePermissive runs the tree-sitter SQL grammar over a single statement's
// text. It must succeed for any input the Scanner accepted, including
// syntactically invalid SQL (spec §4.3): tree-sitter always returns a tree,
// using ERROR/MISSING nodes to mark the parts it couldn't make sense of,
// rather than failing outright.
func ParsePermissive(text string) (*CST, []diag.Diagnostic) {
	p := tree_sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(sqlLanguage); err != nil {
		return nil, []diag.Diagnostic{diag.Error("syntax", "tree-sitter-sql: "+err.Error(), nil)}
	}
	tree := p.Parse([]byte(text), nil)
	if tree == nil {
		return nil, []diag.Diagnostic{diag.Error("syntax", "tree-sitter-sql: parse returned no tree", nil)}
	}
	defer tree.Close()

	root := convertNode(tree.RootNode())
	return &CST{Root: root}, nil
}

func convertNode(n *tree_sitter.Node) CSTNode {
	out := CSTNode{
		Kind:      n.Kind(),
		Span:      span.Range{Start: int(n.StartByte()), End: int(n.EndByte())},
		IsError:   n.IsError(),
		IsMissing: n.IsMissing(),
	}
	count := int(n.ChildCount())
	if count == 0 {
		return out
	}
	out.Children = make([]CSTNode, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convertNode(child))
	}
	return out
}

// HasSyntaxError reports whether any node in the tree is an ERROR or MISSING
// node, the tree-sitter signal that the grammar could not fully make sense
// of the input (used by diagnostics producers that want to flag "permissive
// parse found trouble" without failing the parse itself).
func (c *CST) HasSyntaxError() bool {
	if c == nil {
		return false
	}
	found := false
	c.Visit(func(e VisitEntry) bool {
		if e.Node.IsError || e.Node.IsMissing {
			found = true
			return false
		}
		return true
	})
	return found
}

func (n CSTNode) String() string {
	return fmt.Sprintf("%s%s", n.Kind, n.Span)
}
