package sqltree

import (
	"fmt"
	"strings"
)

// Query is a compiled structural pattern in s-expression form, e.g.
//
//	(table_or_subquery (identifier) @table (identifier) @alias)
//
// A pattern node names a kind ("_" matches any named node) and may carry a
// capture. Child patterns must match named children of the matched node as
// an ordered subsequence; anonymous tokens between them are ignored. A
// capture after the closing paren binds the pattern's own node.
type Query struct {
	source  string
	pattern *patternNode
}

type patternNode struct {
	kind     string // "_" for wildcard
	capture  string // "" if not captured
	children []*patternNode
}

// Match is one successful pattern match. Captures map capture names to the
// nodes they bound.
type Match struct {
	Captures map[string]*Node
}

// Node returns the capture bound to name, or nil.
func (m Match) Node(name string) *Node { return m.Captures[name] }

// NewQuery compiles a pattern. It fails on malformed s-expressions, never on
// vocabulary: kinds are opaque strings owned by the grammar.
func NewQuery(src string) (*Query, error) {
	p := &queryParser{src: src}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("query: trailing input at byte %d", p.pos)
	}
	return &Query{source: src, pattern: pat}, nil
}

// MustNewQuery compiles a pattern known at build time, panicking on error.
func MustNewQuery(src string) *Query {
	q, err := NewQuery(src)
	if err != nil {
		panic(err)
	}
	return q
}

// Matches runs the query over the subtree rooted at node and returns all
// matches in tree order (preorder by matched node, then by child
// assignment, leftmost first).
func (q *Query) Matches(node *Node) []Match {
	var out []Match
	node.Walk(func(n *Node) bool {
		matchPattern(q.pattern, n, &out)
		return true
	})
	return out
}

func matchPattern(pat *patternNode, n *Node, out *[]Match) {
	if pat.kind != "_" && n.Kind() != pat.kind {
		return
	}
	if pat.kind == "_" && !n.Named() {
		return
	}
	base := map[string]*Node{}
	if pat.capture != "" {
		base[pat.capture] = n
	}
	assignChildren(pat.children, n.NamedChildren(), base, out)
}

// assignChildren enumerates every ordered assignment of child patterns to a
// subsequence of the candidate children, emitting one match per complete
// assignment.
func assignChildren(pats []*patternNode, kids []*Node, acc map[string]*Node, out *[]Match) {
	if len(pats) == 0 {
		caps := make(map[string]*Node, len(acc))
		for k, v := range acc {
			caps[k] = v
		}
		*out = append(*out, Match{Captures: caps})
		return
	}
	if len(kids) < len(pats) {
		return
	}
	pat := pats[0]
	for i, kid := range kids {
		if len(kids)-i < len(pats) {
			break
		}
		var sub []Match
		matchPattern(pat, kid, &sub)
		for _, m := range sub {
			next := make(map[string]*Node, len(acc)+len(m.Captures))
			for k, v := range acc {
				next[k] = v
			}
			for k, v := range m.Captures {
				next[k] = v
			}
			assignChildren(pats[1:], kids[i+1:], next, out)
		}
	}
}

type queryParser struct {
	src string
	pos int
}

func (p *queryParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *queryParser) parsePattern() (*patternNode, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return nil, fmt.Errorf("query: expected '(' at byte %d", p.pos)
	}
	p.pos++
	kind := p.parseWord()
	if kind == "" {
		return nil, fmt.Errorf("query: expected node kind at byte %d", p.pos)
	}
	node := &patternNode{kind: kind}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("query: unclosed pattern %q", p.src)
		}
		if p.src[p.pos] == ')' {
			p.pos++
			break
		}
		child, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		node.children = append(node.children, child)
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '@' {
		p.pos++
		name := p.parseWord()
		if name == "" {
			return nil, fmt.Errorf("query: expected capture name at byte %d", p.pos)
		}
		node.capture = name
	}
	return node, nil
}

func (p *queryParser) parseWord() string {
	start := p.pos
	for p.pos < len(p.src) {
		b := p.src[p.pos]
		if b == '_' || b == '.' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			p.pos++
		} else {
			break
		}
	}
	return strings.TrimSpace(p.src[start:p.pos])
}
