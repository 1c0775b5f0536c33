// Package highlight renders SQL with ANSI colors driven by the syntax tree:
// keywords, numbers, strings, and comments each get a style, everything else
// passes through untouched.
package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bawdo/sqlsh/sqltree"
)

var (
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	stringStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// SQL returns src with ANSI highlighting. Best-effort: on any trouble the
// plain source comes back, since this runs on whatever text the user has.
func SQL(src string) string {
	tree, err := sqltree.Parse(src)
	if err != nil {
		return src
	}

	var b strings.Builder
	last := 0
	tree.Root().Walk(func(n *sqltree.Node) bool {
		if len(n.Children()) > 0 {
			return true
		}
		if n.StartByte() < last || n.EndByte() > len(src) {
			return false
		}
		b.WriteString(src[last:n.StartByte()])
		text := src[n.StartByte():n.EndByte()]
		if style, ok := styleFor(n); ok {
			b.WriteString(style.Render(text))
		} else {
			b.WriteString(text)
		}
		last = n.EndByte()
		return true
	})
	b.WriteString(src[last:])
	return b.String()
}

func styleFor(n *sqltree.Node) (lipgloss.Style, bool) {
	switch n.Kind() {
	case sqltree.KindNumber:
		return numberStyle, true
	case sqltree.KindString:
		return stringStyle, true
	case sqltree.KindComment:
		return commentStyle, true
	case sqltree.KindError:
		return lipgloss.Style{}, false
	}
	if !n.Named() && isKeywordKind(n.Kind()) {
		return keywordStyle, true
	}
	return lipgloss.Style{}, false
}

// isKeywordKind reports whether an anonymous token kind is a word (keyword)
// rather than punctuation.
func isKeywordKind(kind string) bool {
	if len(kind) < 2 {
		return false
	}
	for i := 0; i < len(kind); i++ {
		if kind[i] < 'A' || kind[i] > 'Z' {
			return false
		}
	}
	return true
}
