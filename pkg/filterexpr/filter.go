// Package filterexpr parses the CEL subset accepted by list endpoints:
// conjunctions of simple comparisons against whitelisted fields.
package filterexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Kind describes the literal type a field accepts.
type Kind string

const (
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBool      Kind = "bool"
	KindTimestamp Kind = "timestamp"
)

// Op is a supported comparison.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpSW  Op = "startsWith"
	OpIN  Op = "in"
)

// Field whitelists one filter identifier.
type Field struct {
	Kind Kind
	Ops  []Op
}

func (f Field) allows(op Op) bool {
	for _, o := range f.Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Schema aggregates the filter and ordering rules for a resource.
type Schema struct {
	Fields map[string]Field
	Order  OrderSchema
}

// Condition is one validated predicate of a filter. Value holds a string,
// []string, float64, bool or time.Time according to the field kind.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// String returns the value of a string condition.
func (c Condition) String() string {
	s, _ := c.Value.(string)
	return s
}

// Strings returns the values of an "in" condition.
func (c Condition) Strings() []string {
	list, _ := c.Value.([]string)
	return list
}

// Number returns the value of a numeric condition.
func (c Condition) Number() float64 {
	n, _ := c.Value.(float64)
	return n
}

// Parse validates filter against fields and returns its conjuncts in order.
// An empty filter yields no conditions.
func Parse(filter string, fields map[string]Field) ([]Condition, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := newEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert AST: %w", err)
	}

	conjuncts, err := flattenAnd(parsed.GetExpr())
	if err != nil {
		return nil, err
	}

	conds := make([]Condition, 0, len(conjuncts))
	for _, expr := range conjuncts {
		cond, err := parsePredicate(expr)
		if err != nil {
			return nil, err
		}
		rule, ok := fields[cond.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not allowed", cond.Field)
		}
		if !rule.allows(cond.Op) {
			return nil, fmt.Errorf("operator %q is not allowed for field %q", cond.Op, cond.Field)
		}
		if err := checkLiteral(rule.Kind, cond.Op, cond.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", cond.Field, err)
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func newEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		var typ *cel.Type
		switch rule.Kind {
		case KindString:
			typ = cel.StringType
		case KindNumber:
			typ = cel.DoubleType
		case KindBool:
			typ = cel.BoolType
		case KindTimestamp:
			typ = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unsupported kind %s", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, typ))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// flattenAnd turns nested binary && calls into a flat list.
func flattenAnd(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}
	switch call.Function {
	case "_&&_":
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			sub, err := flattenAnd(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("operator %q is not supported; only && is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parsePredicate(expr *exprpb.Expr) (Condition, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Condition{}, errors.New("expected a comparison or function call")
	}

	var op Op
	var ident, value *exprpb.Expr
	switch call.Function {
	case "_==_", "_>=_", "_<=_":
		if call.Target != nil || len(call.Args) != 2 {
			return Condition{}, fmt.Errorf("%s expects two operands", call.Function)
		}
		op = map[string]Op{"_==_": OpEQ, "_>=_": OpGTE, "_<=_": OpLTE}[call.Function]
		ident, value = call.Args[0], call.Args[1]
	case "@in", "_in_":
		if call.Target != nil || len(call.Args) != 2 {
			return Condition{}, errors.New("in expects two operands")
		}
		op = OpIN
		ident, value = call.Args[0], call.Args[1]
	case "startsWith":
		if call.Target == nil || len(call.Args) != 1 {
			return Condition{}, errors.New("startsWith must be called on a field with one argument")
		}
		op = OpSW
		ident, value = call.Target, call.Args[0]
	default:
		return Condition{}, fmt.Errorf("function %q is not supported", call.Function)
	}

	name := ident.GetIdentExpr().GetName()
	if name == "" {
		return Condition{}, errors.New("left-hand side must be a field name")
	}
	lit, err := literal(value)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: name, Op: op, Value: lit}, nil
}

func literal(expr *exprpb.Expr) (any, error) {
	if c := expr.GetConstExpr(); c != nil {
		switch c.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return c.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(c.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(c.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return c.GetDoubleValue(), nil
		case *exprpb.Constant_BoolValue:
			return c.GetBoolValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", c.ConstantKind)
		}
	}

	if list := expr.GetListExpr(); list != nil {
		values := make([]string, 0, len(list.GetElements()))
		for i, elem := range list.GetElements() {
			v, err := literal(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			s, ok := v.(string)
			if !ok {
				return nil, errors.New("list elements must be strings")
			}
			values = append(values, s)
		}
		return values, nil
	}

	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" && len(call.Args) == 1 {
		raw := call.Args[0].GetConstExpr().GetStringValue()
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("timestamp literal %q is not RFC3339", raw)
		}
		return t, nil
	}

	return nil, errors.New("right-hand side must be a literal, list literal, or timestamp() call")
}

func checkLiteral(kind Kind, op Op, value any) error {
	var ok bool
	switch kind {
	case KindString:
		if op == OpIN {
			var list []string
			list, ok = value.([]string)
			if ok && len(list) == 0 {
				return errors.New("list literal must not be empty")
			}
		} else {
			_, ok = value.(string)
		}
	case KindNumber:
		_, ok = value.(float64)
	case KindBool:
		_, ok = value.(bool)
	case KindTimestamp:
		_, ok = value.(time.Time)
	default:
		return fmt.Errorf("unsupported kind %s", kind)
	}
	if !ok {
		return fmt.Errorf("expected %s literal, got %T", kind, value)
	}
	return nil
}
