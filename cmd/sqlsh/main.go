// sqlsh is an interactive SQL shell with tree-driven tab completion.
//
// Usage:
//
//	sqlsh [database-file]
//
// With no argument an in-memory sqlite database is opened. Environment
// variables select a different engine:
//
//	SQLSH_ENGINE=postgres|mysql|sqlite
//	SQLSH_DSN=<dsn>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/bawdo/sqlsh/catalog"
)

func main() {
	engine, dsn := loadConfig()
	db, err := catalog.Open(engine, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlsh: %v\n", err)
		os.Exit(1)
	}

	sh := newShell(db, os.Stdout)
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          ">> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    &shellCompleter{sh: sh},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlsh: readline init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for !sh.quit {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := sh.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	_ = sh.db.Close()
}

func loadConfig() (engine, dsn string) {
	engine = strings.TrimSpace(strings.ToLower(os.Getenv("SQLSH_ENGINE")))
	switch engine {
	case "postgres", "mysql":
		dsn = os.Getenv("SQLSH_DSN")
		if dsn == "" {
			fmt.Fprintf(os.Stderr, "sqlsh: SQLSH_ENGINE=%s requires SQLSH_DSN\n", engine)
			os.Exit(1)
		}
		return engine, dsn
	case "", "sqlite":
	default:
		fmt.Fprintf(os.Stderr, "Warning: unknown SQLSH_ENGINE=%q, using sqlite\n", engine)
	}

	dsn = ":memory:"
	if len(os.Args) > 1 {
		dsn = os.Args[1]
	}
	return "sqlite", dsn
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqlsh_history")
}
