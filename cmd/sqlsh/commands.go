package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/sqlsh/catalog"
	"github.com/bawdo/sqlsh/highlight"
)

// dotCommand is one ".name" shell command with its handler and optional
// argument completion.
type dotCommand struct {
	name     string // including the leading dot
	args     string // argument placeholder for help output
	help     string
	run      func(args string) error
	complete func(prefix string) []string // nil = no arg completion
}

func (sh *shell) initCommands() {
	sh.commands = []dotCommand{
		{name: ".tables", help: "list tables",
			run: func(string) error { return sh.cmdTables() }},
		{name: ".schema", args: "<table>", help: "show a table's CREATE statement",
			run: sh.cmdSchema, complete: sh.completeTableArg},
		{name: ".mode", args: "[table|sql|null]", help: "set or show the output mode",
			run: sh.cmdMode, complete: completeModeArg},
		{name: ".open", args: "<path>", help: "open a sqlite database file",
			run: sh.cmdOpen},
		{name: ".help", help: "show this help",
			run: func(string) error { return sh.cmdHelp() }},
		{name: ".quit", help: "exit the shell",
			run: func(string) error { sh.quit = true; return nil }},
		{name: ".exit", help: "exit the shell",
			run: func(string) error { sh.quit = true; return nil }},
	}
}

func (sh *shell) runDotCommand(line string) error {
	name, args := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		name, args = line[:i], strings.TrimSpace(line[i+1:])
	}
	for i := range sh.commands {
		if sh.commands[i].name == name {
			return sh.commands[i].run(args)
		}
	}
	return fmt.Errorf("unknown command: %s (type '.help' for commands)", name)
}

func (sh *shell) cmdTables() error {
	tables, err := sh.db.Tables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(sh.out, t)
	}
	return nil
}

func (sh *shell) cmdSchema(args string) error {
	if args == "" {
		return errors.New("usage: .schema <table>")
	}
	ddl, err := sh.db.Schema(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, highlight.SQL(ddl))
	return nil
}

func (sh *shell) cmdMode(args string) error {
	if args == "" {
		fmt.Fprintf(sh.out, "output mode: %s\n", sh.mode)
		return nil
	}
	mode, ok := parseOutputMode(args)
	if !ok {
		return fmt.Errorf("unknown mode %q (table, sql, null)", args)
	}
	sh.mode = mode
	return nil
}

func (sh *shell) cmdOpen(args string) error {
	if args == "" {
		return errors.New("usage: .open <path>")
	}
	db, err := catalog.Open("sqlite", args)
	if err != nil {
		return err
	}
	_ = sh.db.Close()
	sh.db = db
	fmt.Fprintf(sh.out, "opened %s\n", args)
	return nil
}

func (sh *shell) cmdHelp() error {
	for _, c := range sh.commands {
		left := c.name
		if c.args != "" {
			left += " " + c.args
		}
		fmt.Fprintf(sh.out, "  %-24s %s\n", left, c.help)
	}
	return nil
}

func (sh *shell) completeTableArg(prefix string) []string {
	tables, err := sh.db.Tables()
	if err != nil {
		return nil
	}
	return filterPrefix(tables, prefix)
}

func completeModeArg(prefix string) []string {
	return filterPrefix([]string{"null", "sql", "table"}, prefix)
}

// filterPrefix returns items that start with prefix, case-insensitive.
func filterPrefix(items []string, prefix string) []string {
	var out []string
	for _, item := range items {
		if len(prefix) <= len(item) && strings.EqualFold(item[:len(prefix)], prefix) {
			out = append(out, item)
		}
	}
	return out
}
