package completion

import (
	"strings"

	"github.com/bawdo/sqlsh/sqltree"
)

// Catalog is what name resolution and completion need from the database: the
// live table list and the ability to plan a SELECT-shaped fragment far
// enough to learn its output columns without running it.
type Catalog interface {
	Tables() ([]string, error)
	PlanColumns(fragment string) ([]string, error)
}

// CTE is one resolved common table expression.
type CTE struct {
	Name string
	// Columns holds the projected column names, empty when the definition
	// failed to plan (mid-edit SQL, forward references).
	Columns []string
}

// QueryNames holds the names declared by a single statement. It is rebuilt
// from scratch per completion request: any edit can change every alias and
// CTE definition.
type QueryNames struct {
	CTEs    []CTE             // declaration order
	Aliases map[string]string // alias -> the aliased table's literal text
}

// CTEColumns returns the column list of the named CTE.
func (n QueryNames) CTEColumns(name string) ([]string, bool) {
	for _, c := range n.CTEs {
		if c.Name == name {
			return c.Columns, true
		}
	}
	return nil, false
}

var (
	cteQuery   = sqltree.MustNewQuery("(common_table_expression (identifier) @name (select_stmt) @body) @def")
	aliasQuery = sqltree.MustNewQuery("(table_or_subquery (identifier) @table (identifier) @alias)")
)

// Resolve extracts CTE and alias declarations from one statement. CTEs
// resolve strictly left to right: each definition is trial-planned against
// the textual concatenation of every definition before it, so later CTEs may
// reference earlier ones. Resolution never fails — a CTE that cannot be
// planned gets an empty column list, and the worst case is empty maps.
func Resolve(tree *sqltree.Tree, stmt *sqltree.Node, cat Catalog) QueryNames {
	names := QueryNames{Aliases: map[string]string{}}

	var defs []string
	seen := map[*sqltree.Node]bool{}
	for _, m := range cteQuery.Matches(stmt) {
		def := m.Node("def")
		if seen[def] {
			continue
		}
		seen[def] = true

		name := tree.Text(m.Node("name"))
		body := tree.Text(m.Node("body"))
		trial := body
		if len(defs) > 0 {
			trial = "WITH " + strings.Join(defs, ", ") + " " + body
		}
		cols, err := cat.PlanColumns(trial)
		if err != nil {
			cols = nil
		}
		names.CTEs = append(names.CTEs, CTE{Name: name, Columns: cols})
		defs = append(defs, tree.Text(def))
	}

	for _, m := range aliasQuery.Matches(stmt) {
		table, alias := m.Node("table"), m.Node("alias")
		if !isAliasSeparator(tree.Source()[table.EndByte():alias.StartByte()]) {
			// Not exactly a table followed by its alias (e.g. the two
			// halves of a schema-qualified name).
			continue
		}
		names.Aliases[tree.Text(alias)] = tree.Text(table)
	}
	return names
}

// isAliasSeparator reports whether the text between a table name and a
// candidate alias is nothing but whitespace and an optional AS.
func isAliasSeparator(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "AS")
}
