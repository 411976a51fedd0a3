package query

import (
	"strings"
)

// node is a filter bound to a schema. Each node can be evaluated in memory
// and rendered as SQL; both renditions must agree on every row.
type node[T any] interface {
	eval(v T) bool
	sql(b *Builder)
	fields(visit func(*Field[T]))
}

type andNode[T any] struct{ left, right node[T] }

func (n andNode[T]) eval(v T) bool { return n.left.eval(v) && n.right.eval(v) }

func (n andNode[T]) sql(b *Builder) {
	b.write("(")
	n.left.sql(b)
	b.write(" AND ")
	n.right.sql(b)
	b.write(")")
}

func (n andNode[T]) fields(visit func(*Field[T])) {
	n.left.fields(visit)
	n.right.fields(visit)
}

type orNode[T any] struct{ left, right node[T] }

func (n orNode[T]) eval(v T) bool { return n.left.eval(v) || n.right.eval(v) }

func (n orNode[T]) sql(b *Builder) {
	b.write("(")
	n.left.sql(b)
	b.write(" OR ")
	n.right.sql(b)
	b.write(")")
}

func (n orNode[T]) fields(visit func(*Field[T])) {
	n.left.fields(visit)
	n.right.fields(visit)
}

// notNode collapses SQL NULL to FALSE before negating so that a comparison
// against a NULL column behaves the same as in memory, where it is false.
type notNode[T any] struct{ x node[T] }

func (n notNode[T]) eval(v T) bool { return !n.x.eval(v) }

func (n notNode[T]) sql(b *Builder) {
	b.write("NOT COALESCE(")
	n.x.sql(b)
	b.write(", FALSE)")
}

func (n notNode[T]) fields(visit func(*Field[T])) { n.x.fields(visit) }

type cmpNode[T any] struct {
	op    string
	left  *Field[T]
	right *Field[T] // nil when comparing against value
	value any       // literal, already converted to the field's kind
	null  bool
}

func (n cmpNode[T]) eval(v T) bool {
	lv := deref(n.left.Get(v))
	if n.null {
		if n.op == "==" {
			return lv == nil
		}
		return lv != nil
	}

	rv := n.value
	if n.right != nil {
		rv = deref(n.right.Get(v))
	}
	c, ok := compareValues(n.left.Kind, lv, rv)
	if !ok {
		return false
	}

	switch n.op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func (n cmpNode[T]) sql(b *Builder) {
	// uuid columns compared with text columns need an explicit cast
	mixed := n.right != nil && n.left.Kind != n.right.Kind
	ref := func(f *Field[T]) string {
		if mixed && f.Kind == KindID {
			return f.Ref() + "::text"
		}
		return f.Ref()
	}

	b.write(ref(n.left))
	if n.null {
		if n.op == "==" {
			b.write(" IS NULL")
		} else {
			b.write(" IS NOT NULL")
		}
		return
	}

	b.write(" " + sqlOp(n.op) + " ")
	if n.right != nil {
		b.write(ref(n.right))
		return
	}

	ph := b.Arg(n.value)
	switch n.left.Kind {
	case KindNumber:
		ph += "::double precision"
	case KindTime:
		ph += "::timestamptz"
	}
	b.write(ph)
}

func (n cmpNode[T]) fields(visit func(*Field[T])) {
	visit(n.left)
	if n.right != nil {
		visit(n.right)
	}
}

func sqlOp(op string) string {
	switch op {
	case "==":
		return "="
	case "!=":
		return "<>"
	}
	return op
}

type callNode[T any] struct {
	field  *Field[T]
	method string // contains, startswith, endswith
	arg    string
}

func (n callNode[T]) eval(v T) bool {
	s, ok := deref(n.field.Get(v)).(string)
	if !ok {
		return false
	}
	switch n.method {
	case "contains":
		return strings.Contains(s, n.arg)
	case "startswith":
		return strings.HasPrefix(s, n.arg)
	case "endswith":
		return strings.HasSuffix(s, n.arg)
	}
	return false
}

func (n callNode[T]) sql(b *Builder) {
	pattern := escapeLike(n.arg)
	switch n.method {
	case "contains":
		pattern = "%" + pattern + "%"
	case "startswith":
		pattern += "%"
	case "endswith":
		pattern = "%" + pattern
	}

	ref := n.field.Ref()
	if n.field.Kind == KindID {
		ref += "::text"
	}
	b.write(ref + " LIKE " + b.Arg(pattern) + ` ESCAPE '\'`)
}

func (n callNode[T]) fields(visit func(*Field[T])) { visit(n.field) }

// boolNode is a bare boolean field used as a predicate.
type boolNode[T any] struct{ field *Field[T] }

func (n boolNode[T]) eval(v T) bool {
	b, ok := deref(n.field.Get(v)).(bool)
	return ok && b
}

func (n boolNode[T]) sql(b *Builder) { b.write(n.field.Ref() + " = TRUE") }

func (n boolNode[T]) fields(visit func(*Field[T])) { visit(n.field) }
