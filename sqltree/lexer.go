package sqltree

import "strings"

// token is one lexed unit with its half-open byte range.
type token struct {
	kind  string
	named bool
	start int
	end   int
}

// keywords recognized by the lexer. Keyword tokens are anonymous and use the
// canonical upper-case text as their kind, matching how the grammar names
// literal tokens.
var keywords = map[string]bool{
	"ABORT": true, "ACTION": true, "ADD": true, "ALL": true, "ALTER": true,
	"ANALYZE": true, "AND": true, "AS": true, "ASC": true, "ATTACH": true,
	"AUTOINCREMENT": true, "BEGIN": true, "BETWEEN": true, "BY": true,
	"CASCADE": true, "CASE": true, "CAST": true, "CHECK": true,
	"COLLATE": true, "COLUMN": true, "COMMIT": true, "CONSTRAINT": true,
	"CREATE": true, "CROSS": true, "DEFAULT": true, "DEFERRED": true,
	"DELETE": true, "DESC": true, "DETACH": true, "DISTINCT": true,
	"DROP": true, "ELSE": true, "END": true, "ESCAPE": true, "EXCEPT": true,
	"EXCLUSIVE": true, "EXISTS": true, "EXPLAIN": true, "FILTER": true,
	"FOREIGN": true, "FROM": true, "FULL": true, "GLOB": true, "GROUP": true,
	"HAVING": true, "IF": true, "IMMEDIATE": true, "IN": true, "INDEX": true,
	"INNER": true, "INSERT": true, "INTERSECT": true, "INTO": true,
	"IS": true, "ISNULL": true, "JOIN": true, "KEY": true, "LEFT": true,
	"LIKE": true, "LIMIT": true, "MATCH": true, "MATERIALIZED": true,
	"NATURAL": true, "NOT": true,
	"NOTNULL": true, "NULL": true, "OFFSET": true, "ON": true, "OR": true,
	"ORDER": true, "OUTER": true, "OVER": true, "PARTITION": true,
	"PLAN": true, "PRAGMA": true, "PRIMARY": true, "QUERY": true,
	"RECURSIVE": true, "REFERENCES": true, "REINDEX": true, "RELEASE": true,
	"RENAME": true, "REPLACE": true, "RESTRICT": true, "RETURNING": true,
	"RIGHT": true, "ROLLBACK": true, "SAVEPOINT": true, "SELECT": true,
	"SET": true, "TABLE": true, "TEMP": true, "TEMPORARY": true,
	"THEN": true, "TO": true, "TRANSACTION": true, "TRIGGER": true,
	"UNION": true, "UNIQUE": true, "UPDATE": true, "USING": true,
	"VACUUM": true, "VALUES": true, "VIEW": true, "VIRTUAL": true,
	"WHEN": true, "WHERE": true, "WINDOW": true, "WITH": true,
	"WITHOUT": true,
}

// multi-byte operators, longest first.
var operators = []string{"<>", "<=", ">=", "<<", ">>", "!=", "==", "||"}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '$'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lex splits src into tokens, skipping whitespace. It never fails:
// unterminated strings and comments run to end of input, and bytes that fit
// nothing become single anonymous tokens.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		b := src[i]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++

		case b == '-' && i+1 < len(src) && src[i+1] == '-':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			toks = append(toks, token{KindComment, true, i, i + end})
			i += end

		case b == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				toks = append(toks, token{KindComment, true, i, len(src)})
				i = len(src)
			} else {
				toks = append(toks, token{KindComment, true, i, i + end + 4})
				i += end + 4
			}

		case b == '\'':
			toks = append(toks, lexString(src, i))
			i = toks[len(toks)-1].end

		case b == '"' || b == '`':
			toks = append(toks, lexQuotedIdent(src, i, b))
			i = toks[len(toks)-1].end

		case b == '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				end = len(src) - i
			} else {
				end++
			}
			toks = append(toks, token{KindIdentifier, true, i, i + end})
			i += end

		case isDigit(b) || (b == '.' && i+1 < len(src) && isDigit(src[i+1])):
			end := lexNumber(src, i)
			toks = append(toks, token{KindNumber, true, i, end})
			i = end

		case b == '?' || b == ':' || b == '@' || b == '$':
			end := i + 1
			for end < len(src) && isIdentByte(src[end]) {
				end++
			}
			if end == i+1 && b != '?' {
				// Bare ":" / "@" / "$" is punctuation, not a parameter.
				toks = append(toks, token{string(b), false, i, end})
			} else {
				toks = append(toks, token{KindBindParam, true, i, end})
			}
			i = end

		case isIdentStart(b):
			end := i + 1
			for end < len(src) && isIdentByte(src[end]) {
				end++
			}
			word := src[i:end]
			if upper := strings.ToUpper(word); keywords[upper] {
				toks = append(toks, token{upper, false, i, end})
			} else {
				toks = append(toks, token{KindIdentifier, true, i, end})
			}
			i = end

		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{op, false, i, i + len(op)})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				toks = append(toks, token{src[i : i+1], false, i, i + 1})
				i++
			}
		}
	}
	return toks
}

func lexString(src string, start int) token {
	i := start + 1
	for i < len(src) {
		if src[i] == '\'' {
			if i+1 < len(src) && src[i+1] == '\'' {
				i += 2
				continue
			}
			return token{KindString, true, start, i + 1}
		}
		i++
	}
	return token{KindString, true, start, len(src)}
}

func lexQuotedIdent(src string, start int, quote byte) token {
	i := start + 1
	for i < len(src) {
		if src[i] == quote {
			if i+1 < len(src) && src[i+1] == quote {
				i += 2
				continue
			}
			return token{KindIdentifier, true, start, i + 1}
		}
		i++
	}
	return token{KindIdentifier, true, start, len(src)}
}

func lexNumber(src string, start int) int {
	i := start
	if src[i] == '0' && i+1 < len(src) && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		for i < len(src) && isHexDigit(src[i]) {
			i++
		}
		return i
	}
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
