package query

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits an expression into tokens. Identifiers may contain dots so that
// navigation paths such as Model.Brand.Title arrive as a single token.
func lex(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++

		case r == '"' || r == '\'':
			s, n, err := lexString(runes[i:], i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokString, s, i})
			i += n

		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{tokNumber, string(runes[start:i]), start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{tokIdent, string(runes[start:i]), start})

		default:
			op := lexOperator(runes[i:])
			if op == "" {
				return nil, syntaxError(i, "unexpected character %q", r)
			}
			tokens = append(tokens, token{tokOp, op, i})
			i += len(op)
		}
	}

	return append(tokens, token{tokEOF, "", len(runes)}), nil
}

var operators = []string{"==", "!=", "<>", "<=", ">=", "&&", "||", "=", "<", ">", "!"}

func lexOperator(rest []rune) string {
	s := string(rest[:min(2, len(rest))])
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// lexString reads a quoted literal. The quote character can be escaped with
// a backslash, as can the backslash itself.
func lexString(rest []rune, pos int) (string, int, error) {
	quote := rest[0]
	var b strings.Builder
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			if i+1 < len(rest) {
				i++
				b.WriteRune(rest[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteRune(rest[i])
		}
	}
	return "", 0, syntaxError(pos, "unterminated string")
}
