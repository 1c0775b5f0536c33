package completion

import (
	"testing"

	"github.com/bawdo/sqlsh/internal/testutil"
	"github.com/bawdo/sqlsh/sqltree"
)

func TestStatementsSplitsOnSemicolons(t *testing.T) {
	t.Parallel()
	tree := sqltree.MustParse("SELECT 1; UPDATE t SET a = 2; SELECT 3")

	stmts := Statements(tree)
	testutil.AssertEqual(t, len(stmts), 3)
	testutil.AssertEqual(t, tree.Text(stmts[0]), "SELECT 1")
	testutil.AssertEqual(t, tree.Text(stmts[1]), "UPDATE t SET a = 2")
	testutil.AssertEqual(t, tree.Text(stmts[2]), "SELECT 3")
}

func TestStatementsExcludesUnparseableText(t *testing.T) {
	t.Parallel()
	tree := sqltree.MustParse("SELECT 1; garbage here; SELECT 2")

	stmts := Statements(tree)
	testutil.AssertEqual(t, len(stmts), 2)
	testutil.AssertEqual(t, tree.Text(stmts[0]), "SELECT 1")
	testutil.AssertEqual(t, tree.Text(stmts[1]), "SELECT 2")
}

func TestStatementsEmptyInput(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, len(Statements(sqltree.MustParse(""))), 0)
	testutil.AssertEqual(t, len(Statements(sqltree.MustParse("  -- just a comment\n"))), 0)
}

func TestStatementsKeepsSemicolonsOut(t *testing.T) {
	t.Parallel()
	tree := sqltree.MustParse("SELECT 1;")
	stmts := Statements(tree)
	testutil.AssertEqual(t, len(stmts), 1)
	testutil.AssertEqual(t, tree.Text(stmts[0]), "SELECT 1")
}
