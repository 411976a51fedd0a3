package query

import (
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/google/uuid"
)

func (s *Schema[T]) bind(e Expr) (node[T], error) {
	switch e := e.(type) {
	case Binary:
		left, err := s.bind(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.bind(e.Right)
		if err != nil {
			return nil, err
		}
		if e.Op == "or" {
			return orNode[T]{left, right}, nil
		}
		return andNode[T]{left, right}, nil

	case Not:
		x, err := s.bind(e.X)
		if err != nil {
			return nil, err
		}
		return notNode[T]{x}, nil

	case FieldRef:
		f, err := s.Lookup(e.Name)
		if err != nil {
			return nil, err
		}
		if f.Kind != KindBool {
			return nil, common.Validation("field %s is not boolean and cannot be used as a condition", f.Name)
		}
		return boolNode[T]{f}, nil

	case Call:
		return s.bindCall(e)

	case Compare:
		return s.bindCompare(e)
	}

	return nil, common.Validation("unsupported expression")
}

func (s *Schema[T]) bindCall(c Call) (node[T], error) {
	f, err := s.Lookup(c.Field)
	if err != nil {
		return nil, err
	}
	method := strings.ToLower(c.Method)
	switch method {
	case "contains", "startswith", "endswith":
	default:
		return nil, common.Validation("unknown method %q", c.Method)
	}
	if f.Kind != KindString && f.Kind != KindID {
		return nil, common.Validation("%s can only be used on string fields, %s is %s", c.Method, f.Name, f.Kind)
	}
	return callNode[T]{field: f, method: method, arg: c.Arg}, nil
}

var flipped = map[string]string{"<": ">", "<=": ">=", ">": "<", ">=": "<=", "==": "==", "!=": "!="}

func (s *Schema[T]) bindCompare(c Compare) (node[T], error) {
	op := c.Op
	left, right := c.Left, c.Right
	if _, isLit := left.(Literal); isLit {
		left, right = right, left
		op = flipped[op]
	}

	ref, ok := left.(FieldRef)
	if !ok {
		return nil, common.Validation("comparison must reference a field")
	}
	f, err := s.Lookup(ref.Name)
	if err != nil {
		return nil, err
	}

	ordering := op != "==" && op != "!="
	if ordering && f.Kind == KindBool {
		return nil, common.Validation("operator %s is not allowed on boolean field %s", op, f.Name)
	}

	switch r := right.(type) {
	case FieldRef:
		other, err := s.Lookup(r.Name)
		if err != nil {
			return nil, err
		}
		if !compatible(f.Kind, other.Kind) {
			return nil, common.Validation("cannot compare %s field %s with %s field %s", f.Kind, f.Name, other.Kind, other.Name)
		}
		return cmpNode[T]{op: op, left: f, right: other}, nil

	case Literal:
		if r.Kind == LitNull {
			if !f.Nullable {
				return nil, common.Validation("field %s is not nullable", f.Name)
			}
			if ordering {
				return nil, common.Validation("null can only be compared with == or !=")
			}
			return cmpNode[T]{op: op, left: f, null: true}, nil
		}
		value, err := convertLiteral(f, r)
		if err != nil {
			return nil, err
		}
		return cmpNode[T]{op: op, left: f, value: value}, nil
	}

	return nil, common.Validation("unsupported operand")
}

func compatible(a, b Kind) bool {
	text := func(k Kind) bool { return k == KindString || k == KindID }
	return a == b || (text(a) && text(b))
}

func convertLiteral[T any](f *Field[T], lit Literal) (any, error) {
	mismatch := func() error {
		return common.Validation("cannot compare %s field %s with %v", f.Kind, f.Name, lit.Value)
	}

	switch f.Kind {
	case KindString:
		if lit.Kind == LitString {
			return lit.Value, nil
		}
	case KindID:
		if lit.Kind == LitString {
			id, err := uuid.Parse(lit.Value.(string))
			if err != nil {
				return nil, common.Validation("invalid id %q for field %s", lit.Value, f.Name)
			}
			return id.String(), nil
		}
	case KindNumber:
		if lit.Kind == LitNumber {
			return lit.Value, nil
		}
	case KindBool:
		if lit.Kind == LitBool {
			return lit.Value, nil
		}
	case KindTime:
		if lit.Kind == LitString {
			t, ok := parseTime(lit.Value.(string))
			if !ok {
				return nil, common.Validation("invalid time %q for field %s, use RFC3339 or YYYY-MM-DD", lit.Value, f.Name)
			}
			return t, nil
		}
	}
	return nil, mismatch()
}
