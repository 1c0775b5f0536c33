package sqltree

// Parse builds a concrete syntax tree for src. It is tolerant by design:
// completion runs against text that is usually mid-edit, so every input
// yields a tree. Statements that do not begin with a recognized statement
// keyword become ERROR leaves under the statement list.
func Parse(src string) (*Tree, error) {
	toks := lex(src)
	root := &Node{kind: KindStatementList, named: true, start: 0, end: len(src)}

	// Split into statements at top-level semicolons.
	depth := 0
	groupStart := 0
	flush := func(i int, regionEnd int) {
		// Comments before the first significant token live directly under
		// the statement list.
		for groupStart < i && toks[groupStart].kind == KindComment {
			root.children = append(root.children, leaf(toks[groupStart]))
			groupStart++
		}
		if i > groupStart {
			p := &parser{src: src, toks: toks, pos: groupStart, limit: i, regionEnd: regionEnd}
			if stmt := p.parseStatement(); stmt != nil {
				root.children = append(root.children, stmt)
			}
		}
		groupStart = i + 1
	}
	for i, t := range toks {
		switch t.kind {
		case "(":
			depth++
		case ")":
			if depth > 0 {
				depth--
			}
		case ";":
			if depth == 0 {
				flush(i, t.start)
				root.children = append(root.children, leaf(t))
			}
		}
	}
	flush(len(toks), len(src))

	link(root)
	return &Tree{source: src, root: root}, nil
}

// MustParse is Parse for inputs known to be parseable, mainly tests.
func MustParse(src string) *Tree {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func leaf(t token) *Node {
	return &Node{kind: t.kind, named: t.named, start: t.start, end: t.end}
}

// statementKinds maps a leading keyword to the statement node kind it opens.
// Keywords absent here open an ERROR leaf instead.
var statementKinds = map[string]string{
	"SELECT": KindSelect, "WITH": KindSelect, "VALUES": KindSelect,
	"DELETE": "delete_stmt",
	"INSERT": "insert_stmt", "REPLACE": "insert_stmt",
	"UPDATE": "update_stmt",
	"CREATE": "create_stmt",
	"DROP":   "drop_stmt",
	"ALTER":  "alter_stmt",
	"PRAGMA": "pragma_stmt",
	"ATTACH": "attach_stmt",
	"DETACH": "detach_stmt",
	"BEGIN":  "begin_stmt",
	"COMMIT": "commit_stmt", "END": "commit_stmt",
	"ROLLBACK":  "rollback_stmt",
	"VACUUM":    "vacuum_stmt",
	"ANALYZE":   "analyze_stmt",
	"REINDEX":   "reindex_stmt",
	"SAVEPOINT": "savepoint_stmt",
	"RELEASE":   "release_stmt",
}

// clauseStarters terminate a flat expression run inside a statement body.
var clauseStarters = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "HAVING": true,
	"WINDOW": true, "ORDER": true, "LIMIT": true, "OFFSET": true,
	"UNION": true, "EXCEPT": true, "INTERSECT": true,
}

// joinStarters begin a join_clause inside FROM.
var joinStarters = map[string]bool{
	"JOIN": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"INNER": true, "OUTER": true, "CROSS": true, "NATURAL": true,
}

type parser struct {
	src   string
	toks  []token
	pos   int
	limit int
	// regionEnd is the byte offset bounding the statement being parsed: the
	// start of the terminating semicolon (or closing paren for subqueries),
	// or the end of the source. Zero-width recovery nodes anchor here when
	// the token stream runs out.
	regionEnd int
}

func (p *parser) peek() *token {
	for i := p.pos; i < p.limit; i++ {
		if p.toks[i].kind != KindComment {
			return &p.toks[i]
		}
	}
	return nil
}

// take consumes tokens up to and including the next non-comment token,
// appending them all to parent, and returns the consumed significant token.
func (p *parser) take(parent *Node) token {
	for {
		t := p.toks[p.pos]
		p.pos++
		parent.children = append(parent.children, leaf(t))
		if t.kind != KindComment {
			return t
		}
	}
}

// findClose returns the token index of the ')' matching the '(' at open.
func (p *parser) findClose(open int) int {
	depth := 0
	for i := open; i < p.limit; i++ {
		switch p.toks[i].kind {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return p.limit
}

func (p *parser) parseStatement() *Node {
	first := p.peek()
	if first == nil {
		return nil
	}
	kind, ok := statementKinds[first.kind]
	if !ok && first.kind != "EXPLAIN" {
		// Unrecognized statement start: an ERROR leaf covering the raw
		// text, so the completion engine can anchor keyword candidates on
		// it. Leading comments stay outside the leaf.
		return &Node{kind: KindError, start: first.start, end: p.toks[p.limit-1].end}
	}

	stmt := &Node{kind: KindStatement, named: true}
	if first.kind == "EXPLAIN" {
		p.take(stmt) // EXPLAIN
		if t := p.peek(); t != nil && t.kind == "QUERY" {
			p.take(stmt)
			if t := p.peek(); t != nil && t.kind == "PLAN" {
				p.take(stmt)
			}
		}
		inner := p.peek()
		if inner == nil {
			setExtent(stmt)
			return stmt
		}
		kind, ok = statementKinds[inner.kind]
		if !ok {
			err := &Node{kind: KindError, start: inner.start, end: p.toks[p.limit-1].end}
			stmt.children = append(stmt.children, err)
			p.pos = p.limit
			setExtent(stmt)
			return stmt
		}
	}

	var body *Node
	switch kind {
	case KindSelect, "delete_stmt":
		body = p.parseQueryBody(kind)
	default:
		body = p.parseFlatBody(kind)
	}
	stmt.children = append(stmt.children, body)
	setExtent(stmt)
	return stmt
}

// parseFlatBody consumes the rest of the statement into a single node with
// token leaves. Statements the completion engine has no context rules for
// keep no internal structure.
func (p *parser) parseFlatBody(kind string) *Node {
	n := &Node{kind: kind, named: true}
	for p.pos < p.limit {
		p.take(n)
	}
	setExtent(n)
	return n
}

// parseQueryBody parses SELECT-shaped statements (and DELETE, which shares
// the FROM/WHERE clause structure) with enough structure for completion and
// name resolution: WITH clauses, FROM tables and joins, clause boundaries.
// Expression internals stay flat.
func (p *parser) parseQueryBody(kind string) *Node {
	n := &Node{kind: kind, named: true}
	if t := p.peek(); t != nil && t.kind == "WITH" {
		n.children = append(n.children, p.parseWithClause())
	}
	for {
		t := p.peek()
		if t == nil {
			break
		}
		switch {
		case t.kind == "FROM":
			n.children = append(n.children, p.parseFromClause())
		case t.kind == "WHERE":
			n.children = append(n.children, p.parseClause(KindWhere))
		case t.kind == "GROUP" || t.kind == "HAVING":
			n.children = append(n.children, p.parseClause(KindGroupBy))
		case t.kind == "ORDER":
			n.children = append(n.children, p.parseClause(KindOrderBy))
		case t.kind == "LIMIT" || t.kind == "OFFSET":
			n.children = append(n.children, p.parseClause(KindLimit))
		case t.kind == "(":
			p.parseParenGroup(n)
		default:
			// SELECT itself, compound operators, projection and window
			// tokens all land flat in the statement body.
			p.take(n)
		}
	}
	setExtent(n)
	return n
}

// parseClause collects a clause keyword and its expression tokens until the
// next clause starter.
func (p *parser) parseClause(kind string) *Node {
	n := &Node{kind: kind, named: true}
	p.take(n) // the clause keyword
	// GROUP BY ... HAVING ... live in one clause node; stop HAVING from
	// terminating it.
	for {
		t := p.peek()
		if t == nil {
			break
		}
		if clauseStarters[t.kind] {
			if kind == KindGroupBy && t.kind == "HAVING" {
				p.take(n)
				continue
			}
			if kind == KindLimit && t.kind == "OFFSET" {
				p.take(n)
				continue
			}
			break
		}
		if t.kind == "(" {
			p.parseParenGroup(n)
			continue
		}
		p.take(n)
	}
	setExtent(n)
	return n
}

func (p *parser) parseFromClause() *Node {
	n := &Node{kind: KindFrom, named: true}
	p.take(n) // FROM
	n.children = append(n.children, p.parseTableRef())
	for {
		t := p.peek()
		if t == nil {
			break
		}
		switch {
		case t.kind == ",":
			p.take(n)
			n.children = append(n.children, p.parseTableRef())
		case joinStarters[t.kind]:
			n.children = append(n.children, p.parseJoinClause())
		default:
			setExtent(n)
			return n
		}
	}
	setExtent(n)
	return n
}

func (p *parser) parseJoinClause() *Node {
	n := &Node{kind: KindJoin, named: true}
	for {
		t := p.peek()
		if t == nil || !joinStarters[t.kind] {
			break
		}
		p.take(n)
	}
	n.children = append(n.children, p.parseTableRef())
	if t := p.peek(); t != nil && (t.kind == "ON" || t.kind == "USING") {
		p.take(n)
		for {
			t := p.peek()
			if t == nil || clauseStarters[t.kind] || joinStarters[t.kind] || t.kind == "," {
				break
			}
			if t.kind == "(" {
				p.parseParenGroup(n)
				continue
			}
			p.take(n)
		}
	}
	setExtent(n)
	return n
}

// parseTableRef parses one table_or_subquery: a possibly qualified table
// name with an optional alias, or a parenthesized subquery. When the table
// name has not been typed yet, the node holds a zero-width identifier at the
// would-be position so the completion engine has something to anchor on.
func (p *parser) parseTableRef() *Node {
	n := &Node{kind: KindTableRef, named: true}
	t := p.peek()
	switch {
	case t == nil, clauseStarters[t.kind], joinStarters[t.kind],
		t.kind == ")", t.kind == ",", t.kind == "ON", t.kind == "USING":
		at := p.regionEnd
		if t != nil {
			at = t.start
		}
		n.start, n.end = at, at
		n.children = append(n.children, &Node{kind: KindIdentifier, named: true, start: at, end: at})
		return n

	case t.kind == KindIdentifier:
		p.take(n)
		for {
			dot := p.peek()
			if dot == nil || dot.kind != "." {
				break
			}
			p.take(n)
			if id := p.peek(); id != nil && id.kind == KindIdentifier {
				p.take(n)
			} else {
				break
			}
		}
		p.parseTableAlias(n)

	case t.kind == "(":
		p.parseParenGroup(n)
		p.parseTableAlias(n)

	default:
		// Not a name at all (e.g. FROM 1). Absorb the token and move on.
		p.take(n)
	}
	setExtent(n)
	return n
}

func (p *parser) parseTableAlias(n *Node) {
	t := p.peek()
	if t == nil {
		return
	}
	if t.kind == "AS" {
		p.take(n)
		if id := p.peek(); id != nil && id.kind == KindIdentifier {
			p.take(n)
		}
		return
	}
	if t.kind == KindIdentifier {
		p.take(n)
	}
}

// parseParenGroup consumes a parenthesized token group into parent. A group
// opening a subquery (SELECT, WITH, VALUES) is parsed as a nested statement
// body; anything else stays flat, with nested groups recursed into so inner
// subqueries are still found.
func (p *parser) parseParenGroup(parent *Node) {
	open := p.pos
	for p.toks[open].kind == KindComment {
		open++
	}
	closeIdx := p.findClose(open)
	p.take(parent) // '(' plus leading comments

	inner := p.peek()
	if inner != nil && p.pos <= closeIdx &&
		(inner.kind == "SELECT" || inner.kind == "WITH" || inner.kind == "VALUES") {
		savedLimit, savedEnd := p.limit, p.regionEnd
		p.limit = closeIdx
		if closeIdx < savedLimit {
			p.regionEnd = p.toks[closeIdx].start
		}
		parent.children = append(parent.children, p.parseQueryBody(KindSelect))
		p.limit, p.regionEnd = savedLimit, savedEnd
	} else {
		for p.pos < p.limit && p.pos < closeIdx {
			if p.toks[p.pos].kind == "(" {
				p.parseParenGroup(parent)
			} else {
				parent.children = append(parent.children, leaf(p.toks[p.pos]))
				p.pos++
			}
		}
	}
	if p.pos < p.limit && p.toks[p.pos].kind == ")" {
		parent.children = append(parent.children, leaf(p.toks[p.pos]))
		p.pos++
	}
}

func (p *parser) parseWithClause() *Node {
	n := &Node{kind: KindWith, named: true}
	p.take(n) // WITH
	if t := p.peek(); t != nil && t.kind == "RECURSIVE" {
		p.take(n)
	}
	for {
		t := p.peek()
		if t == nil || t.kind != KindIdentifier {
			break
		}
		n.children = append(n.children, p.parseCTE())
		if t := p.peek(); t != nil && t.kind == "," {
			p.take(n)
			continue
		}
		break
	}
	setExtent(n)
	return n
}

func (p *parser) parseCTE() *Node {
	n := &Node{kind: KindCTE, named: true}
	p.take(n) // name

	if t := p.peek(); t != nil && t.kind == "(" {
		cols := &Node{kind: KindColumnNameList, named: true}
		closeIdx := p.findClose(p.pos)
		for p.pos < p.limit && p.pos <= closeIdx {
			cols.children = append(cols.children, leaf(p.toks[p.pos]))
			p.pos++
		}
		setExtent(cols)
		n.children = append(n.children, cols)
	}
	if t := p.peek(); t != nil && t.kind == "AS" {
		p.take(n)
	}
	if t := p.peek(); t != nil && (t.kind == "NOT" || t.kind == "MATERIALIZED") {
		p.take(n)
		if t := p.peek(); t != nil && t.kind == "MATERIALIZED" {
			p.take(n)
		}
	}
	if t := p.peek(); t != nil && t.kind == "(" {
		p.parseParenGroup(n)
	}
	setExtent(n)
	return n
}

func setExtent(n *Node) {
	if len(n.children) == 0 {
		return
	}
	n.start = n.children[0].start
	n.end = n.children[len(n.children)-1].end
}
