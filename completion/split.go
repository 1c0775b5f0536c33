// Package completion turns a source buffer and a cursor offset into ranked,
// prefix-filtered completion candidates. It classifies the syntax-tree node
// under the cursor and, for table positions, resolves the CTE and alias
// names declared in the statement containing the cursor.
package completion

import "github.com/bawdo/sqlsh/sqltree"

var statementsQuery = sqltree.MustNewQuery("(sql_stmt_list (sql_stmt) @stmt)")

// Statements returns the top-level statement nodes of the tree in source
// order. Statements that parsed with internal errors are included; text the
// parser could not recognize as a statement at all (ERROR leaves) is not.
func Statements(tree *sqltree.Tree) []*sqltree.Node {
	matches := statementsQuery.Matches(tree.Root())
	out := make([]*sqltree.Node, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Node("stmt"))
	}
	return out
}
