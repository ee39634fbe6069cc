package analysis

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/diagnostic"
	"github.com/lily-lang/lilyc/internal/position"
	"github.com/lily-lang/lilyc/internal/scope"
)

// builtinBinaryResult resolves a built-in binary operator over primitives.
// The second result reports whether the operator is built in for these
// operand types.
func builtinBinaryResult(op string, lhs, rhs checked.Dt) (checked.Dt, bool) {
	pl, okL := lhs.(*checked.Primitive)
	pr, okR := rhs.(*checked.Primitive)
	if !okL || !okR || pl.Kind != pr.Kind {
		return nil, false
	}
	k := pl.Kind
	switch op {
	case "+", "-", "*", "/":
		if k.IsInteger() || k.IsFloat() {
			return checked.Prim(k), true
		}
	case "%":
		if k.IsInteger() {
			return checked.Prim(k), true
		}
	case "**":
		if k.IsFloat() {
			return checked.Prim(k), true
		}
	case "&", "|", "^", "<<", ">>":
		if k.IsInteger() {
			return checked.Prim(k), true
		}
	case "==", "!=", "not=":
		switch {
		case k.IsInteger(), k.IsFloat(),
			k == checked.Bool, k == checked.Char, k == checked.Byte, k == checked.Str:
			return checked.Prim(checked.Bool), true
		}
	case "<", ">", "<=", ">=":
		if k.IsInteger() || k.IsFloat() || k == checked.Char || k == checked.Byte {
			return checked.Prim(checked.Bool), true
		}
	case "and", "or", "xor", "&&", "||":
		if k == checked.Bool {
			return checked.Prim(checked.Bool), true
		}
	case "++":
		switch k {
		case checked.Str, checked.Bytes:
			return checked.Prim(k), true
		}
	}
	return nil, false
}

func builtinUnaryResult(op string, operand checked.Dt) (checked.Dt, bool) {
	switch t := operand.(type) {
	case *checked.Primitive:
		switch op {
		case "-":
			if (t.Kind.IsInteger() && !t.Kind.IsUnsigned()) || t.Kind.IsFloat() {
				return checked.Prim(t.Kind), true
			}
		case "not":
			if t.Kind == checked.Bool {
				return checked.Prim(checked.Bool), true
			}
		case "~":
			if t.Kind.IsInteger() {
				return checked.Prim(t.Kind), true
			}
		}
	case *checked.List:
		if op == "++" {
			return t, true
		}
	}
	return nil, false
}

func (a *Analyzer) checkBinary(sc *scope.Scope, e *ast.Binary) checked.Expr {
	left := a.checkExpr(sc, e.Left)
	right := a.checkExpr(sc, e.Right)
	op := e.OpString()
	out := &checked.Binary{Op: op, Left: left, Right: right, Loc: e.Loc}

	if checked.IsUnknown(left.Dt()) || checked.IsUnknown(right.Dt()) {
		out.Type = &checked.Unknown{}
		return out
	}

	lhs := a.Resolve(left.Dt())
	rhs := a.Resolve(right.Dt())

	// Range construction over integers and chars.
	if op == ".." {
		if pl, ok := lhs.(*checked.Primitive); ok && (pl.Kind.IsInteger() || pl.Kind == checked.Char) && a.unify(lhs, rhs) {
			out.Type = &checked.Range{Elem: lhs}
			return out
		}
	}

	// List concatenation via ++ works across element-compatible lists.
	if op == "++" {
		if ll, ok := lhs.(*checked.List); ok {
			if a.unify(lhs, rhs) {
				out.Type = ll
				return out
			}
		}
	}

	if result, ok := builtinBinaryResult(op, lhs, rhs); ok {
		out.Type = result
		return out
	}

	result, operator := a.resolveOperator(e.Loc, op, []checked.Dt{lhs, rhs})
	out.Operator = operator
	out.Type = result
	return out
}

func (a *Analyzer) checkUnary(sc *scope.Scope, e *ast.Unary) checked.Expr {
	operand := a.checkExpr(sc, e.Operand)
	op := e.Op.String()
	out := &checked.Unary{Op: op, Operand: operand, Loc: e.Loc}

	if checked.IsUnknown(operand.Dt()) {
		out.Type = &checked.Unknown{}
		return out
	}
	dt := a.Resolve(operand.Dt())
	if result, ok := builtinUnaryResult(op, dt); ok {
		out.Type = result
		return out
	}
	result, operator := a.resolveOperator(e.Loc, op, []checked.Dt{dt})
	out.Operator = operator
	out.Type = result
	return out
}

// resolveOperator implements overload resolution over the package-wide
// register:
//  1. collect every operator with matching name and arity;
//  2. discard any whose parameter types cannot unify with the arguments;
//  3. none left: unresolved-operator error;
//  4. exactly one: bind it;
//  5. several sharing one return type: a conditional compiler choice;
//     several with different returns: ambiguous-operator error.
func (a *Analyzer) resolveOperator(loc position.Location, name string, args []checked.Dt) (checked.Dt, *checked.Operator) {
	candidates := a.ops.CollectByName(name, len(args))

	var matching []*checked.Operator
	for _, op := range candidates {
		snap := a.snapshot()
		fits := true
		for i, param := range op.Params() {
			if !a.unify(param, args[i]) {
				fits = false
				break
			}
		}
		a.restore(snap)
		if fits {
			matching = append(matching, op)
		}
	}

	switch len(matching) {
	case 0:
		a.errorf(diagnostic.AnaOperatorUnresolved, loc,
			"the operator `%s` is not resolvable for %s", name, describeArgs(args))
		return &checked.Unknown{}, nil
	case 1:
		op := matching[0]
		for i, param := range op.Params() {
			a.unify(param, args[i])
		}
		return op.Return(), op
	}

	ret := matching[0].Return()
	shared := true
	for _, op := range matching[1:] {
		if !op.Return().Equals(ret) {
			shared = false
			break
		}
	}
	if !shared {
		a.errorf(diagnostic.AnaOperatorAmbiguous, loc,
			"the operator `%s` is ambiguous for %s", name, describeArgs(args))
		return &checked.Unknown{}, nil
	}

	choices := make([]checked.Dt, len(matching))
	conds := make([][]checked.Dt, len(matching))
	for i, op := range matching {
		choices[i] = op.Return()
		conds[i] = op.Params()
	}
	return &checked.Choice{Choices: choices, Conds: conds}, matching[0]
}

func describeArgs(args []checked.Dt) string {
	if len(args) == 1 {
		return "`" + args[0].String() + "`"
	}
	return "`" + args[0].String() + "` and `" + args[1].String() + "`"
}
