// Package sqltree parses SQL source into a concrete syntax tree.
//
// The tree is tolerant: any input produces a tree, and text the parser
// cannot place is absorbed into the nearest enclosing node or recorded as an
// ERROR node. Nodes carry a kind tag and a half-open byte range into the
// source; navigation (parent, siblings, children, smallest covering node)
// never mutates the tree. A fresh tree is built per Parse call.
package sqltree

// Node kinds produced by the parser. Keyword and punctuation tokens use
// their canonical text as the kind ("SELECT", "AS", "(", ...) and are
// anonymous; everything listed here is named, except ERROR which marks
// unparseable statement text.
const (
	KindStatementList  = "sql_stmt_list"
	KindStatement      = "sql_stmt"
	KindError          = "ERROR"
	KindIdentifier     = "identifier"
	KindTableRef       = "table_or_subquery"
	KindSelect         = "select_stmt"
	KindWith           = "with_clause"
	KindCTE            = "common_table_expression"
	KindColumnNameList = "column_name_list"
	KindFrom           = "from_clause"
	KindJoin           = "join_clause"
	KindWhere          = "where_clause"
	KindGroupBy        = "group_by_clause"
	KindOrderBy        = "order_by_clause"
	KindLimit          = "limit_clause"
	KindNumber         = "numeric_literal"
	KindString         = "string_literal"
	KindComment        = "comment"
	KindBindParam      = "bind_parameter"
)

// Node is a single concrete-syntax-tree node. Its byte range is half-open
// [StartByte, EndByte) into the source the tree was parsed from.
type Node struct {
	kind     string
	named    bool
	start    int
	end      int
	parent   *Node
	index    int // position within parent.children
	children []*Node
}

func (n *Node) Kind() string   { return n.kind }
func (n *Node) Named() bool    { return n.named }
func (n *Node) StartByte() int { return n.start }
func (n *Node) EndByte() int   { return n.end }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// PrevSibling returns the node immediately before this one under the same
// parent, anonymous tokens included, or nil if this is the first child.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.children[n.index-1]
}

// NextSibling returns the node immediately after this one under the same
// parent, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	if n.parent == nil || n.index+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[n.index+1]
}

// Children returns all child nodes in source order. The returned slice is
// shared with the tree and must not be modified.
func (n *Node) Children() []*Node { return n.children }

// NamedChildren returns the named child nodes in source order.
func (n *Node) NamedChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.named {
			out = append(out, c)
		}
	}
	return out
}

// covers reports whether pos lies on this node. The end boundary counts as
// covered so a cursor sitting just past the last byte of a token still
// anchors on it; zero-width nodes cover exactly their position.
func (n *Node) covers(pos int) bool {
	return n.start <= pos && pos <= n.end
}

// DescendantForByteRange returns the smallest node covering pos, or nil if
// the node itself does not cover pos.
func (n *Node) DescendantForByteRange(pos int) *Node {
	if !n.covers(pos) {
		return nil
	}
	cur := n
descend:
	for {
		for _, c := range cur.children {
			if c.covers(pos) {
				cur = c
				continue descend
			}
		}
		return cur
	}
}

// Walk calls fn for every node in the subtree in preorder. Walking stops
// early if fn returns false, which prunes the node's subtree only.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Tree is the result of parsing one source snapshot. Node lifetimes are
// bound to the tree; the tree is bound to the source string it was built
// from.
type Tree struct {
	source string
	root   *Node
}

// Root returns the statement-list node spanning the whole source.
func (t *Tree) Root() *Node { return t.root }

// Source returns the text the tree was parsed from.
func (t *Tree) Source() string { return t.source }

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	return t.source[n.start:n.end]
}

// link assigns parent pointers and child indexes for the whole subtree.
// Called once after parsing; the tree is immutable afterwards.
func link(n *Node) {
	for i, c := range n.children {
		c.parent = n
		c.index = i
		link(c)
	}
}
