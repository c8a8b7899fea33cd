package truth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// ErrUnsupported reports a construct the evaluator does not model.
var ErrUnsupported = errors.New("unsupported construct")

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

type binding struct {
	val     Value
	present bool
}

type evaluator struct {
	v      tree.View
	env    *Env
	calls  []CallRecord
	scopes []map[string]binding
}

// Evaluate runs the statement id of v starting from env, which it modifies.
// Declarations of the outermost block stay visible in the resulting
// environment; those of nested blocks go out of scope when the block ends.
func Evaluate(v tree.View, id tree.NodeID, env *Env) Result {
	ev := &evaluator{v: v, env: env}
	kind, val, err := ev.stmt(id, false)
	if err != nil {
		return Result{Kind: ResultUnknown, Err: err}
	}
	return Result{Kind: kind, Env: env, Value: val, Calls: ev.calls}
}

// EvaluateExpr evaluates the expression id of v in env.
func EvaluateExpr(v tree.View, id tree.NodeID, env *Env) (Value, error) {
	ev := &evaluator{v: v, env: env}
	return ev.expr(id)
}

func (ev *evaluator) declare(name string, val Value) {
	if n := len(ev.scopes); n > 0 {
		scope := ev.scopes[n-1]
		if _, seen := scope[name]; !seen {
			old, ok := ev.env.Get(name)
			scope[name] = binding{val: old, present: ok}
		}
	}
	ev.env.Set(name, val)
}

func (ev *evaluator) leave() {
	scope := ev.scopes[len(ev.scopes)-1]
	ev.scopes = ev.scopes[:len(ev.scopes)-1]
	for name, b := range scope {
		if b.present {
			ev.env.Set(name, b.val)
		} else {
			ev.env.Delete(name)
		}
	}
}

func (ev *evaluator) stmt(id tree.NodeID, scoped bool) (ResultKind, Value, error) {
	v := ev.v
	switch v.Kind(id) {
	case tree.Block:
		if scoped {
			ev.scopes = append(ev.scopes, map[string]binding{})
			defer ev.leave()
		}
		for _, s := range v.Kids(id) {
			kind, val, err := ev.stmt(s, true)
			if err != nil || kind == ResultReturn {
				return kind, val, err
			}
		}
		return ResultContinue, nil, nil

	case tree.Empty:
		return ResultContinue, nil, nil

	case tree.ExprStmt:
		_, err := ev.expr(tree.Kid(v, id, 0))
		return ResultContinue, nil, err

	case tree.VarDecl:
		for _, f := range v.Kids(id) {
			var val Value = NullValue{}
			if init := tree.FragmentInit(v, f); init != tree.None {
				var err error
				if val, err = ev.expr(init); err != nil {
					return ResultUnknown, nil, err
				}
			}
			ev.declare(tree.FragmentName(v, f), val)
		}
		return ResultContinue, nil, nil

	case tree.If:
		c, err := ev.boolean(tree.Kid(v, id, 0))
		if err != nil {
			return ResultUnknown, nil, err
		}
		if c {
			return ev.stmt(tree.Kid(v, id, 1), true)
		}
		if els := tree.Kid(v, id, 2); els != tree.None {
			return ev.stmt(els, true)
		}
		return ResultContinue, nil, nil

	case tree.Return:
		x := tree.Kid(v, id, 0)
		if x == tree.None {
			return ResultReturn, nil, nil
		}
		val, err := ev.expr(x)
		if err != nil {
			return ResultUnknown, nil, err
		}
		return ResultReturn, val, nil
	}
	return ResultUnknown, nil, unsupported("statement %s", v.Kind(id))
}

func (ev *evaluator) boolean(id tree.NodeID) (bool, error) {
	val, err := ev.expr(id)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolValue)
	if !ok {
		return false, unsupported("condition evaluates to %s", val)
	}
	return b.Val, nil
}

func (ev *evaluator) integer(id tree.NodeID) (int64, error) {
	val, err := ev.expr(id)
	if err != nil {
		return 0, err
	}
	i, ok := val.(IntValue)
	if !ok {
		return 0, unsupported("operand evaluates to %s", val)
	}
	return i.Val, nil
}

func (ev *evaluator) expr(id tree.NodeID) (Value, error) {
	v := ev.v
	n := v.Node(id)
	if n == nil {
		return nil, unsupported("missing expression")
	}
	switch n.Kind {
	case tree.Paren:
		return ev.expr(n.Kids[0])

	case tree.Name:
		val, ok := ev.env.Get(n.Text)
		if !ok {
			return nil, unsupported("unbound name %s", n.Text)
		}
		return val, nil

	case tree.BoolLit:
		return BoolValue{Val: n.Text == "true"}, nil

	case tree.NumberLit:
		i, err := strconv.ParseInt(n.Text, 0, 64)
		if err != nil {
			return nil, unsupported("number %s", n.Text)
		}
		return IntValue{Val: i}, nil

	case tree.StringLit:
		return StringValue{Val: n.Text}, nil

	case tree.NullLit:
		return NullValue{}, nil

	case tree.Call:
		rec := CallRecord{Func: n.Text}
		for _, k := range n.Kids {
			arg, err := ev.expr(k)
			if err != nil {
				return nil, err
			}
			rec.Args = append(rec.Args, arg)
		}
		ev.calls = append(ev.calls, rec)
		return OpaqueValue{Call: rec.String()}, nil

	case tree.Conditional:
		c, err := ev.boolean(n.Kids[0])
		if err != nil {
			return nil, err
		}
		if c {
			return ev.expr(n.Kids[1])
		}
		return ev.expr(n.Kids[2])

	case tree.Prefix:
		return ev.prefix(n.Op, n.Kids[0])

	case tree.Postfix:
		return ev.step(n.Op, n.Kids[0], false)

	case tree.Infix:
		return ev.infix(n.Op, n.Kids)

	case tree.Assignment:
		return ev.assign(n.Op, n.Kids[0], n.Kids[1])
	}
	return nil, unsupported("expression %s", n.Kind)
}

func (ev *evaluator) prefix(op tree.Op, x tree.NodeID) (Value, error) {
	switch op {
	case tree.Not:
		b, err := ev.boolean(x)
		return BoolValue{Val: !b}, err
	case tree.Neg:
		i, err := ev.integer(x)
		return IntValue{Val: -i}, err
	case tree.Plus:
		i, err := ev.integer(x)
		return IntValue{Val: i}, err
	case tree.Complement:
		i, err := ev.integer(x)
		return IntValue{Val: ^i}, err
	case tree.Inc, tree.Dec:
		return ev.step(op, x, true)
	}
	return nil, unsupported("prefix %s", op)
}

// step increments or decrements the variable x and returns its new value
// when prefix is set, its old value otherwise.
func (ev *evaluator) step(op tree.Op, x tree.NodeID, prefix bool) (Value, error) {
	name, ok := tree.SimpleName(ev.v, x)
	if !ok {
		return nil, unsupported("%s of a non-variable", op)
	}
	old, err := ev.integer(x)
	if err != nil {
		return nil, err
	}
	updated := old + 1
	if op == tree.Dec {
		updated = old - 1
	}
	ev.env.Set(name, IntValue{Val: updated})
	if prefix {
		return IntValue{Val: updated}, nil
	}
	return IntValue{Val: old}, nil
}

func (ev *evaluator) infix(op tree.Op, operands []tree.NodeID) (Value, error) {
	if op == tree.LAnd || op == tree.LOr {
		for _, k := range operands {
			b, err := ev.boolean(k)
			if err != nil {
				return nil, err
			}
			if b == (op == tree.LOr) {
				return BoolValue{Val: b}, nil
			}
		}
		return BoolValue{Val: op == tree.LAnd}, nil
	}
	acc, err := ev.expr(operands[0])
	if err != nil {
		return nil, err
	}
	for _, k := range operands[1:] {
		r, err := ev.expr(k)
		if err != nil {
			return nil, err
		}
		if acc, err = binary(op, acc, r); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (ev *evaluator) assign(op tree.Op, target, value tree.NodeID) (Value, error) {
	name, ok := tree.SimpleName(ev.v, target)
	if !ok {
		return nil, unsupported("assignment to a non-variable")
	}
	var cur Value
	if op != tree.Assign {
		if cur, ok = ev.env.Get(name); !ok {
			return nil, unsupported("unbound name %s", name)
		}
	}
	val, err := ev.expr(value)
	if err != nil {
		return nil, err
	}
	if op != tree.Assign {
		if val, err = binary(op.Infix(), cur, val); err != nil {
			return nil, err
		}
	}
	ev.env.Set(name, val)
	return val, nil
}

func binary(op tree.Op, l, r Value) (Value, error) {
	switch a := l.(type) {
	case IntValue:
		if b, ok := r.(IntValue); ok {
			return intBinary(op, a.Val, b.Val)
		}
	case BoolValue:
		if b, ok := r.(BoolValue); ok {
			return boolBinary(op, a.Val, b.Val)
		}
	}
	_, ls := l.(StringValue)
	_, rs := r.(StringValue)
	if op == tree.Add && (ls || rs) {
		return StringValue{Val: text(l) + text(r)}, nil
	}
	if op == tree.Eql || op == tree.Neq {
		_, lo := l.(OpaqueValue)
		_, ro := r.(OpaqueValue)
		if lo || ro {
			return nil, unsupported("comparison of call results")
		}
		return BoolValue{Val: l.Equal(r) == (op == tree.Eql)}, nil
	}
	return nil, unsupported("%s %s %s", l, op, r)
}

func text(v Value) string {
	if s, ok := v.(StringValue); ok {
		return s.Val
	}
	return v.String()
}

func intBinary(op tree.Op, a, b int64) (Value, error) {
	switch op {
	case tree.Add:
		return IntValue{Val: a + b}, nil
	case tree.Sub:
		return IntValue{Val: a - b}, nil
	case tree.Mul:
		return IntValue{Val: a * b}, nil
	case tree.Quo, tree.Rem:
		if b == 0 {
			return nil, unsupported("division by zero")
		}
		if op == tree.Quo {
			return IntValue{Val: a / b}, nil
		}
		return IntValue{Val: a % b}, nil
	case tree.And:
		return IntValue{Val: a & b}, nil
	case tree.Or:
		return IntValue{Val: a | b}, nil
	case tree.Xor:
		return IntValue{Val: a ^ b}, nil
	case tree.Shl:
		return IntValue{Val: a << (b & 63)}, nil
	case tree.Shr:
		return IntValue{Val: a >> (b & 63)}, nil
	case tree.UShr:
		return IntValue{Val: int64(uint64(a) >> (b & 63))}, nil
	case tree.Eql:
		return BoolValue{Val: a == b}, nil
	case tree.Neq:
		return BoolValue{Val: a != b}, nil
	case tree.Lss:
		return BoolValue{Val: a < b}, nil
	case tree.Gtr:
		return BoolValue{Val: a > b}, nil
	case tree.Leq:
		return BoolValue{Val: a <= b}, nil
	case tree.Geq:
		return BoolValue{Val: a >= b}, nil
	}
	return nil, unsupported("%d %s %d", a, op, b)
}

func boolBinary(op tree.Op, a, b bool) (Value, error) {
	switch op {
	case tree.And:
		return BoolValue{Val: a && b}, nil
	case tree.Or:
		return BoolValue{Val: a || b}, nil
	case tree.Xor, tree.Neq:
		return BoolValue{Val: a != b}, nil
	case tree.Eql:
		return BoolValue{Val: a == b}, nil
	}
	return nil, unsupported("%t %s %t", a, op, b)
}
