package query

import (
	"cmp"
	"strings"
	"time"
)

// deref unwraps pointer getter results so that typed nil pointers become a
// plain nil.
func deref(v any) any {
	switch x := v.(type) {
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// compareValues orders two non-nil values of the given kind. ok is false when
// either side is nil or of an unexpected type.
func compareValues(kind Kind, a, b any) (c int, ok bool) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return 0, false
	}

	switch kind {
	case KindString:
		x, ok1 := a.(string)
		y, ok2 := b.(string)
		return strings.Compare(x, y), ok1 && ok2
	case KindID:
		x, ok1 := a.(string)
		y, ok2 := b.(string)
		return strings.Compare(strings.ToLower(x), strings.ToLower(y)), ok1 && ok2
	case KindNumber:
		x, ok1 := toFloat(a)
		y, ok2 := toFloat(b)
		return cmp.Compare(x, y), ok1 && ok2
	case KindBool:
		x, ok1 := a.(bool)
		y, ok2 := b.(bool)
		return cmp.Compare(boolRank(x), boolRank(y)), ok1 && ok2
	case KindTime:
		x, ok1 := a.(time.Time)
		y, ok2 := b.(time.Time)
		return x.Compare(y), ok1 && ok2
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sortValues orders values for ORDER BY. nil sorts after everything, which
// matches PostgreSQL's default NULLS LAST for ascending order.
func sortValues(kind Kind, a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c, _ := compareValues(kind, a, b)
	return c
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
