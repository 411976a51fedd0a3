package query

import (
	"strconv"
	"strings"
)

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) keyword(words ...string) bool {
	t := p.peek()
	if t.kind != tokIdent {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(t.text, w) {
			return true
		}
	}
	return false
}

func (p *parser) op(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, o := range ops {
		if t.text == o {
			return true
		}
	}
	return false
}

// ParseFilter parses a boolean filter expression.
func ParseFilter(src string) (Expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxError(t.pos, "unexpected %q", t.text)
	}
	return e, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.op("||") || p.keyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.op("&&") || p.keyword("and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.op("!") || p.keyword("not") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()

	if t.kind == tokLParen {
		p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, syntaxError(p.peek().pos, "expected )")
		}
		p.next()
		return e, nil
	}

	// method call: the identifier token holds "path.Method"
	if t.kind == tokIdent && p.tokens[p.pos+1].kind == tokLParen {
		return p.parseCall()
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if !p.op("==", "=", "!=", "<>", "<", "<=", ">", ">=") {
		ref, ok := left.(FieldRef)
		if !ok {
			return nil, syntaxError(t.pos, "expected comparison after literal")
		}
		return ref, nil
	}

	op := normalizeOp(p.next().text)
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return Compare{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseCall() (Expr, error) {
	t := p.next()
	dot := strings.LastIndex(t.text, ".")
	if dot <= 0 || dot == len(t.text)-1 {
		return nil, syntaxError(t.pos, "expected field.Method(...), got %q", t.text)
	}
	p.next() // (

	arg := p.next()
	if arg.kind != tokString {
		return nil, syntaxError(arg.pos, "method argument must be a string")
	}
	if p.peek().kind != tokRParen {
		return nil, syntaxError(p.peek().pos, "expected )")
	}
	p.next()

	return Call{Field: t.text[:dot], Method: t.text[dot+1:], Arg: arg.text}, nil
}

func (p *parser) parseOperand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return Literal{Kind: LitString, Value: t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, syntaxError(t.pos, "invalid number %q", t.text)
		}
		return Literal{Kind: LitNumber, Value: f}, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return Literal{Kind: LitBool, Value: true}, nil
		case "false":
			return Literal{Kind: LitBool, Value: false}, nil
		case "null":
			return Literal{Kind: LitNull}, nil
		case "and", "or", "not":
			return nil, syntaxError(t.pos, "unexpected %q", t.text)
		}
		return FieldRef{Name: t.text}, nil
	case tokEOF:
		return nil, syntaxError(t.pos, "unexpected end of expression")
	default:
		return nil, syntaxError(t.pos, "unexpected %q", t.text)
	}
}

func normalizeOp(op string) string {
	switch op {
	case "=":
		return "=="
	case "<>":
		return "!="
	}
	return op
}

// ParseProjection parses "path [as alias], ...". Empty items are skipped.
func ParseProjection(src string) ([]ProjectionItem, error) {
	var items []ProjectionItem
	for _, part := range splitList(src) {
		words := strings.Fields(part)
		switch {
		case len(words) == 1 && isPath(words[0]):
			items = append(items, ProjectionItem{Path: words[0]})
		case len(words) == 3 && isPath(words[0]) && strings.EqualFold(words[1], "as") && isPath(words[2]) && !strings.Contains(words[2], "."):
			items = append(items, ProjectionItem{Path: words[0], Alias: words[2]})
		default:
			return nil, syntaxError(0, "invalid projection item %q", part)
		}
	}
	return items, nil
}

// ParseOrdering parses "path [asc|desc], ...". Empty items are skipped.
func ParseOrdering(src string) ([]OrderItem, error) {
	var items []OrderItem
	for _, part := range splitList(src) {
		words := strings.Fields(part)
		if len(words) == 0 || len(words) > 2 || !isPath(words[0]) {
			return nil, syntaxError(0, "invalid ordering item %q", part)
		}
		item := OrderItem{Path: words[0]}
		if len(words) == 2 {
			switch strings.ToLower(words[1]) {
			case "asc":
			case "desc":
				item.Desc = true
			default:
				return nil, syntaxError(0, "invalid direction %q", words[1])
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func splitList(src string) []string {
	var out []string
	for _, part := range strings.Split(src, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isPath(s string) bool {
	tokens, err := lex(s)
	return err == nil && len(tokens) == 2 && tokens[0].kind == tokIdent &&
		!strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".") && !strings.Contains(s, "..")
}
