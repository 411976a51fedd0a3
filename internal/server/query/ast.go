package query

// Expr is a parsed filter expression. Field names are not resolved yet; that
// happens when the expression is bound to a Schema.
type Expr interface {
	expr()
}

// Operand is either a FieldRef or a Literal.
type Operand interface {
	operand()
}

type Binary struct {
	Op          string // "and" or "or"
	Left, Right Expr
}

type Not struct {
	X Expr
}

type Compare struct {
	Op          string // one of ==, !=, <, <=, >, >=
	Left, Right Operand
}

// Call is a string method call such as Title.Contains("lap").
type Call struct {
	Field  string
	Method string
	Arg    string
}

// FieldRef used as an Expr is a bare boolean predicate.
type FieldRef struct {
	Name string
}

type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBool
	LitNull
)

type Literal struct {
	Kind  LiteralKind
	Value any // string, float64, bool or nil
}

func (Binary) expr()   {}
func (Not) expr()      {}
func (Compare) expr()  {}
func (Call) expr()     {}
func (FieldRef) expr() {}

func (FieldRef) operand() {}
func (Literal) operand()  {}

// ProjectionItem is one "path [as alias]" entry.
type ProjectionItem struct {
	Path  string
	Alias string
}

// OrderItem is one "path [asc|desc]" entry.
type OrderItem struct {
	Path string
	Desc bool
}
