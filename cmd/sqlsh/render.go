package main

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bawdo/sqlsh/highlight"
	"github.com/bawdo/sqlsh/internal/quoting"
)

type outputMode int

const (
	modeTable outputMode = iota
	modeSQL
	modeNull
)

func (m outputMode) String() string {
	switch m {
	case modeSQL:
		return "sql"
	case modeNull:
		return "null"
	default:
		return "table"
	}
}

func parseOutputMode(s string) (outputMode, bool) {
	switch strings.ToLower(s) {
	case "table":
		return modeTable, true
	case "sql":
		return modeSQL, true
	case "null":
		return modeNull, true
	}
	return modeTable, false
}

const maxRows = 1000

// dumpTableName is the placeholder target in .mode sql output.
const dumpTableName = "tbl"

func renderRows(out io.Writer, mode outputMode, rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	count := 0
	truncated := false
	var data [][]string
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		count++

		switch mode {
		case modeSQL:
			fmt.Fprintln(out, highlight.SQL(insertStatement(vals)))
		case modeTable:
			if len(data) >= maxRows {
				truncated = true
				continue
			}
			row := make([]string, len(vals))
			for i, v := range vals {
				row[i] = displayValue(v)
			}
			data = append(data, row)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}

	switch mode {
	case modeTable:
		fmt.Fprint(out, formatTable(columns, data))
		if truncated {
			fmt.Fprintf(out, "(truncated at %d rows)\n", maxRows)
		}
	case modeNull:
		fmt.Fprintf(out, "(%d rows)\n", count)
	}
	return nil
}

// displayValue renders one scanned value for table output.
func displayValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		parts := make([]string, len(v))
		for i, b := range v {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return strings.Join(parts, " ")
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// insertStatement renders one row as an INSERT for .mode sql output.
func insertStatement(vals []any) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoting.DoubleQuote(dumpTableName))
	b.WriteString(" VALUES(")
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		switch v := v.(type) {
		case nil:
			b.WriteString("NULL")
		case []byte:
			b.WriteString("X'")
			for _, bb := range v {
				fmt.Fprintf(&b, "%02x", bb)
			}
			b.WriteString("'")
		case string:
			b.WriteString("'")
			b.WriteString(quoting.EscapeString(v))
			b.WriteString("'")
		case time.Time:
			b.WriteString("'")
			b.WriteString(v.Format(time.RFC3339))
			b.WriteString("'")
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteString(");")
	return b.String()
}

func formatTable(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)

	b.WriteString(sep)
	b.WriteByte('|')
	for i, c := range columns {
		fmt.Fprintf(&b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
	b.WriteString(sep)

	for _, row := range rows {
		b.WriteByte('|')
		for i, cell := range row {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}
	b.WriteString(sep)

	if n := len(rows); n == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", n)
	}
	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		for j := 0; j < w+2; j++ {
			b.WriteByte('-')
		}
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}
