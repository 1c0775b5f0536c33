package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bawdo/sqlsh/catalog"
	"github.com/bawdo/sqlsh/completion"
	"github.com/bawdo/sqlsh/sqltree"
)

// shell holds one interactive session: the connection, the completion
// engine, the output mode, and the dot-command registry.
type shell struct {
	db       *catalog.DB
	engine   *completion.Engine
	mode     outputMode
	out      io.Writer
	commands []dotCommand
	quit     bool
}

func newShell(db *catalog.DB, out io.Writer) *shell {
	sh := &shell{db: db, mode: modeTable, out: out}
	// The shell is its own Catalog so that .open can swap the underlying
	// connection without rebuilding the engine.
	sh.engine = completion.NewEngine(sh)
	sh.initCommands()
	return sh
}

// Tables and PlanColumns make shell a completion.Catalog, delegating to the
// current connection.
func (sh *shell) Tables() ([]string, error)                 { return sh.db.Tables() }
func (sh *shell) PlanColumns(frag string) ([]string, error) { return sh.db.PlanColumns(frag) }

// Execute handles one input line: a dot command or a batch of SQL
// statements.
func (sh *shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ".") {
		return sh.runDotCommand(line)
	}
	return sh.runSQL(line)
}

// runSQL splits the input into statements and executes them in order. The
// first failure stops the batch so errors are reported against the statement
// that caused them. Text the parser could not recognize as a statement is an
// error too; the user typed it, so it must not be dropped silently.
func (sh *shell) runSQL(src string) error {
	tree, err := sqltree.Parse(src)
	if err != nil {
		return sh.execOne(src, false)
	}
	stmts := completion.Statements(tree)
	if len(stmts) == 0 {
		// Nothing the parser recognized; hand the raw text to the engine
		// so its error surfaces.
		return sh.execOne(src, false)
	}
	idx := 0
	for _, child := range tree.Root().Children() {
		switch child.Kind() {
		case sqltree.KindStatement:
			idx++
			text := strings.TrimSpace(tree.Text(child))
			if text == "" {
				continue
			}
			if err := sh.execOne(text, returnsRows(child)); err != nil {
				if len(stmts) > 1 {
					return fmt.Errorf("statement %d: %w", idx, err)
				}
				return err
			}
		case sqltree.KindError:
			return fmt.Errorf("unrecognized input: %s", strings.TrimSpace(tree.Text(child)))
		}
	}
	return nil
}

// returnsRows decides, from the statement node's shape, whether to run the
// text through Query (and render rows) or Exec.
func returnsRows(stmt *sqltree.Node) bool {
	for _, c := range stmt.Children() {
		if c.Kind() == "EXPLAIN" {
			return true
		}
		if !c.Named() {
			continue
		}
		switch c.Kind() {
		case sqltree.KindSelect, "pragma_stmt":
			return true
		}
		return false
	}
	return false
}

func (sh *shell) execOne(text string, rowReturning bool) error {
	if rowReturning {
		rows, err := sh.db.Query(text)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		return renderRows(sh.out, sh.mode, rows)
	}
	n, err := sh.db.Exec(text)
	if err != nil {
		return err
	}
	if sh.mode != modeNull {
		fmt.Fprintf(sh.out, "OK, %d rows affected\n", n)
	}
	return nil
}
