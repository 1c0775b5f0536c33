package completion

import (
	"sort"
	"strings"

	"github.com/bawdo/sqlsh/sqltree"
)

// initialKeywords are the statement-introducing keywords offered at the
// start of a statement.
var initialKeywords = []string{
	"SELECT", "DELETE", "CREATE", "DROP", "ATTACH", "DETACH", "EXPLAIN",
	"PRAGMA", "WITH", "UPDATE", "ALTER", "BEGIN", "END", "COMMIT", "ROLLBACK",
}

// maxLookbehind bounds the leftward scan for a context node. The cursor
// often sits in whitespace or just past a token; a few bytes of lookbehind
// recover the token being typed without walking into an unrelated one.
const maxLookbehind = 5

// Candidate is one proposed replacement. The caller splices Text in place
// of source[From:cursor]; From never exceeds the cursor offset.
type Candidate struct {
	From int
	Text string
}

// Engine produces completion candidates for a source buffer and cursor.
// Every request re-parses the buffer and re-resolves names from scratch;
// the engine itself holds no per-request state beyond the catalog handle.
type Engine struct {
	cat Catalog
}

func NewEngine(cat Catalog) *Engine {
	return &Engine{cat: cat}
}

// Complete returns the ordered candidate list for the cursor position.
// Completion is best-effort: parse failures, plan failures, and catalog
// errors all degrade to an empty or partial list, never an error.
func (e *Engine) Complete(source string, cursor int) []Candidate {
	if cursor < 0 || cursor > len(source) {
		return nil
	}
	tree, err := sqltree.Parse(source)
	if err != nil {
		return nil
	}

	node := e.contextNode(tree, cursor)
	if node == nil {
		return nil
	}
	parent := node.Parent()
	prev := node.PrevSibling()
	content := tree.Text(node)

	if parent == nil || prev != nil {
		return nil
	}
	switch {
	case node.Kind() == sqltree.KindError && parent.Kind() == sqltree.KindStatementList:
		return keywordCandidates(node.StartByte(), content)
	case node.Kind() == sqltree.KindIdentifier && parent.Kind() == sqltree.KindTableRef:
		return e.tableCandidates(tree, node, content)
	}
	return nil
}

// Hint returns ghost text for inline display: the first candidate's
// replacement minus the portion already typed.
func (e *Engine) Hint(source string, cursor int) (string, bool) {
	cands := e.Complete(source, cursor)
	if len(cands) == 0 {
		return "", false
	}
	typed := cursor - cands[0].From
	if typed < 0 || typed > len(cands[0].Text) {
		return "", false
	}
	return cands[0].Text[typed:], true
}

// contextNode scans a short window left of the cursor for the smallest node
// that is not the statement-list container. The exact cursor byte often has
// no covering node (whitespace, end of buffer), so earlier positions are
// probed closest-first.
func (e *Engine) contextNode(tree *sqltree.Tree, cursor int) *sqltree.Node {
	look := maxLookbehind
	if cursor < look {
		look = cursor
	}
	for offset := 0; offset < look; offset++ {
		node := tree.Root().DescendantForByteRange(cursor - offset)
		if node == nil || node.Kind() == sqltree.KindStatementList {
			continue
		}
		return node
	}
	return nil
}

func keywordCandidates(from int, content string) []Candidate {
	var out []Candidate
	for _, kw := range initialKeywords {
		if !startsWith(kw, content) {
			continue
		}
		out = append(out, Candidate{From: from, Text: matchCase(kw, content) + " "})
	}
	return out
}

// tableCandidates merges catalog tables, CTE names, and alias names for the
// statement containing the context node. Order is deterministic: tables
// (already sorted by the catalog), then CTEs in declaration order, then
// aliases sorted, first occurrence winning on duplicates.
func (e *Engine) tableCandidates(tree *sqltree.Tree, node *sqltree.Node, content string) []Candidate {
	var pool []string
	if tables, err := e.cat.Tables(); err == nil {
		pool = append(pool, tables...)
	}
	if stmt := enclosingStatement(node); stmt != nil {
		names := Resolve(tree, stmt, e.cat)
		for _, cte := range names.CTEs {
			pool = append(pool, cte.Name)
		}
		aliases := make([]string, 0, len(names.Aliases))
		for alias := range names.Aliases {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)
		pool = append(pool, aliases...)
	}

	var out []Candidate
	seen := map[string]bool{}
	for _, name := range pool {
		if seen[name] || !startsWith(name, content) {
			continue
		}
		seen[name] = true
		out = append(out, Candidate{From: node.StartByte(), Text: name + " "})
	}
	return out
}

func enclosingStatement(node *sqltree.Node) *sqltree.Node {
	for n := node; n != nil; n = n.Parent() {
		if n.Kind() == sqltree.KindStatement {
			return n
		}
	}
	return nil
}

// startsWith reports whether item begins with input, ASCII case-insensitive.
// Input longer than the item never matches.
func startsWith(item, input string) bool {
	return len(input) <= len(item) && strings.EqualFold(item[:len(input)], input)
}

// matchCase lowercases the keyword when the typed text is entirely
// lowercase; otherwise the canonical upper case is kept. Mixed and
// upper-case prefixes intentionally get no special treatment.
func matchCase(item, input string) string {
	for i := 0; i < len(input); i++ {
		if input[i] < 'a' || input[i] > 'z' {
			return item
		}
	}
	return strings.ToLower(item)
}
