package refhost

import (
	"fmt"
	"strconv"

	"github.com/amirgeva/gubed/pkg/vmhost"
)

func truthy(v vmhost.Value) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return v != nil
}

func valuesEqual(l, r vmhost.Value) bool {
	return l == r
}

func toStringValue(v vmhost.Value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func applyBinOp(op string, l, r vmhost.Value) (vmhost.Value, error) {
	switch op {
	case "+":
		if ls, ok := l.(string); ok {
			return ls + toStringValue(r), nil
		}
		if rs, ok := r.(string); ok {
			return toStringValue(l) + rs, nil
		}
		lf, lok := l.(float64)
		rf, rok := r.(float64)
		if lok && rok {
			return lf + rf, nil
		}
		return nil, fmt.Errorf("invalid operands for +")
	case "-", "*", "/":
		lf, lok := l.(float64)
		rf, rok := r.(float64)
		if !lok || !rok {
			return nil, fmt.Errorf("invalid operands for %s", op)
		}
		switch op {
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		default:
			return lf / rf, nil
		}
	case "==":
		return valuesEqual(l, r), nil
	case "!=":
		return !valuesEqual(l, r), nil
	case "<", "<=", ">", ">=":
		lf, lok := l.(float64)
		rf, rok := r.(float64)
		if !lok || !rok {
			return nil, fmt.Errorf("invalid operands for %s", op)
		}
		switch op {
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		default:
			return lf >= rf, nil
		}
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
}

// environment is a lexical scope chain: method calls start a fresh chain
// (refhost does not model closures), while if/while bodies nest a child
// scope onto their enclosing one.
type environment struct {
	vars   map[string]vmhost.Value
	parent *environment
}

func newEnvironment(parent *environment) *environment {
	return &environment{vars: make(map[string]vmhost.Value), parent: parent}
}

func (e *environment) child() *environment { return newEnvironment(e) }

func (e *environment) declare(name string, v vmhost.Value) { e.vars[name] = v }

func (e *environment) get(name string) (vmhost.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *environment) update(name string, v vmhost.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}
	return false
}
