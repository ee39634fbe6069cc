package mir

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/checked"
)

// lowerExpr lowers an expression to a value in the current block.
func (b *Builder) lowerExpr(e checked.Expr) Value {
	switch expr := e.(type) {
	case *checked.Literal:
		return b.literalValue(expr)
	case *checked.VarRef:
		return b.lowerVarRef(expr)
	case *checked.Binary:
		return b.lowerBinary(expr)
	case *checked.Unary:
		return b.lowerUnary(expr)
	case *checked.If:
		return b.lowerIfExpr(expr)
	case *checked.Match:
		return b.lowerMatchExpr(expr)
	case *checked.Call:
		return b.lowerCall(expr)
	case *checked.RecordCall:
		return b.lowerRecordCall(expr)
	case *checked.VariantCall:
		return b.lowerVariantCall(expr)
	case *checked.ErrorRef:
		return &IntConst{V: b.errorCode(expr.Error.GlobalName), T: I32T}
	case *checked.TupleExpr:
		return b.lowerAggregate(expr.Elems, b.lowerDt(expr.Type), expr)
	case *checked.ArrayExpr:
		return b.lowerArray(expr)
	case *checked.ListExpr:
		return b.lowerAggregate(expr.Elems, b.lowerDt(expr.Type), expr)
	case *checked.FieldAccess:
		base := b.lowerExpr(expr.Base)
		dest := b.newReg("f", b.lowerDt(expr.Type))
		b.emit(&GetField{instBase: b.debug(expr.Loc, 0), Dest: dest, Base: base, Index: expr.Index})
		return dest
	case *checked.IndexAccess:
		base := b.lowerExpr(expr.Base)
		idx := b.lowerExpr(expr.Index)
		dest := b.newReg("e", b.lowerDt(expr.Type))
		b.emit(&GetElement{instBase: b.debug(expr.Loc, 0), Dest: dest, Base: base, Index: idx})
		return dest
	case *checked.CastExpr:
		return b.lowerCast(expr)
	case *checked.LambdaExpr:
		return b.lowerLambda(expr)
	}
	return &UnitConst{}
}

func (b *Builder) errorCode(globalName string) int64 {
	if code, ok := b.errCodes[globalName]; ok {
		return code
	}
	code := int64(len(b.errCodes) + 1)
	b.errCodes[globalName] = code
	return code
}

func (b *Builder) lowerVarRef(e *checked.VarRef) Value {
	if e.IsParam {
		return &Arg{Index: e.ParamIndex, T: b.lowerDt(e.Type)}
	}
	if e.Entry == nil {
		return &UnitConst{}
	}
	if slot, ok := b.vars[e.Entry.ID]; ok {
		dest := b.newReg("r", slot.T)
		b.emit(&Load{instBase: b.debug(e.Loc, 0), Dest: dest, Src: slot})
		return dest
	}
	if c, ok := e.Entry.Decl.(*checked.Constant); ok {
		if v, ok := b.consts[c.GlobalName]; ok {
			return v
		}
	}
	if f, ok := e.Entry.Decl.(*checked.Fun); ok {
		return &FunRef{Name: f.GlobalName, T: BytePtr}
	}
	return &UnitConst{}
}

// binOpName picks the op for a binary operator over the operand type.
func binOpName(op string, t Dt) string {
	isFloat := false
	isUnsigned := false
	switch dt := t.(type) {
	case *Float:
		isFloat = true
	case *Int:
		isUnsigned = !dt.Signed && dt.Bits > 1
	}
	switch op {
	case "+":
		if isFloat {
			return "fadd"
		}
		return "add"
	case "-":
		if isFloat {
			return "fsub"
		}
		return "sub"
	case "*":
		if isFloat {
			return "fmul"
		}
		return "mul"
	case "/":
		if isFloat {
			return "fdiv"
		}
		if isUnsigned {
			return "udiv"
		}
		return "sdiv"
	case "%":
		if isUnsigned {
			return "urem"
		}
		return "srem"
	case "==":
		if isFloat {
			return "fcmp eq"
		}
		return "icmp eq"
	case "!=", "not=":
		if isFloat {
			return "fcmp ne"
		}
		return "icmp ne"
	case "<":
		if isFloat {
			return "fcmp lt"
		}
		if isUnsigned {
			return "icmp ult"
		}
		return "icmp slt"
	case "<=":
		if isFloat {
			return "fcmp le"
		}
		if isUnsigned {
			return "icmp ule"
		}
		return "icmp sle"
	case ">":
		if isFloat {
			return "fcmp gt"
		}
		if isUnsigned {
			return "icmp ugt"
		}
		return "icmp sgt"
	case ">=":
		if isFloat {
			return "fcmp ge"
		}
		if isUnsigned {
			return "icmp uge"
		}
		return "icmp sge"
	case "and", "&&", "&":
		return "and"
	case "or", "||", "|":
		return "or"
	case "xor", "^":
		return "xor"
	case "<<":
		return "shl"
	case ">>":
		if isUnsigned {
			return "lshr"
		}
		return "ashr"
	case "++":
		return "concat"
	case "**":
		return "pow"
	}
	return op
}

func (b *Builder) lowerBinary(e *checked.Binary) Value {
	if e.Operator != nil {
		// A user overload lowers to a call of the operator function.
		l := b.lowerExpr(e.Left)
		r := b.lowerExpr(e.Right)
		dest := b.newReg("r", b.lowerDt(e.Type))
		b.emit(&Call{instBase: b.debug(e.Loc, 0), Dest: dest,
			Fun: "op." + e.Op, Args: []Value{l, r}})
		return dest
	}
	l := b.lowerExpr(e.Left)
	r := b.lowerExpr(e.Right)
	if e.Op == ".." {
		// A range is its bound pair.
		return &StructConst{Fields: []Value{l, r}, T: b.lowerDt(e.Type)}
	}
	dest := b.newReg("r", b.lowerDt(e.Type))
	b.emit(&BinOp{instBase: b.debug(e.Loc, 0), Dest: dest,
		Op: binOpName(e.Op, l.Type()), L: l, R: r})
	return dest
}

func (b *Builder) lowerUnary(e *checked.Unary) Value {
	v := b.lowerExpr(e.Operand)
	dest := b.newReg("r", b.lowerDt(e.Type))
	op := "neg"
	switch e.Op {
	case "-":
		if _, ok := v.Type().(*Float); ok {
			op = "fneg"
		}
	case "not":
		op = "not"
	case "~":
		op = "bnot"
	}
	b.emit(&UnOp{instBase: b.debug(e.Loc, 0), Dest: dest, Op: op, V: v})
	return dest
}

// lowerIfExpr lowers if/elif/else chains through a result alloca with a
// merge block selecting the branch value.
func (b *Builder) lowerIfExpr(e *checked.If) Value {
	t := b.lowerDt(e.Type)
	slot := &Var{Name: b.names.NewVar("if.result"), T: t}
	b.emit(&Alloca{instBase: b.debug(e.Loc, 0), Dest: slot})

	merge := b.newBlock("merge")

	arms := append([]checked.IfArm{{Cond: e.Cond, Then: e.Then}}, e.Elifs...)
	for _, arm := range arms {
		cond := b.lowerExpr(arm.Cond)
		then := b.newBlock("then")
		next := b.newBlock("else")
		b.emit(&JmpCond{instBase: b.debug(arm.Cond.Location(), 0), Cond: cond, Then: then, Else: next})

		b.block = then
		v := b.lowerExpr(arm.Then)
		b.emit(&Store{instBase: b.debug(arm.Then.Location(), 0), Dst: slot, Val: v})
		b.emit(&Jmp{instBase: b.debug(arm.Then.Location(), 0), Target: merge})
		then.Limit.SetLimit(merge.ID)

		b.block = next
	}
	if e.Else != nil {
		v := b.lowerExpr(e.Else)
		b.emit(&Store{instBase: b.debug(e.Else.Location(), 0), Dst: slot, Val: v})
	}
	b.emit(&Jmp{instBase: b.debug(e.Loc, 0), Target: merge})
	b.block.Limit.SetLimit(merge.ID)

	b.block = merge
	dest := b.newReg("r", t)
	b.emit(&Load{instBase: b.debug(e.Loc, 0), Dest: dest, Src: slot})
	return dest
}

func (b *Builder) lowerMatchExpr(e *checked.Match) Value {
	t := b.lowerDt(e.Type)
	slot := &Var{Name: b.names.NewVar("match.result"), T: t}
	b.emit(&Alloca{instBase: b.debug(e.Loc, 0), Dest: slot})

	merge := b.newBlock("merge")
	b.lowerMatchCore(e.Scrutinee, len(e.Arms), merge,
		func(i int) checked.Pattern { return e.Arms[i].Pattern },
		func(i int) guardInfo {
			return guardInfo{guard: e.Arms[i].Guard, body: func() {
				v := b.lowerExpr(e.Arms[i].Body)
				b.emit(&Store{instBase: b.debug(e.Arms[i].Body.Location(), 0), Dst: slot, Val: v})
			}}
		})

	b.block = merge
	dest := b.newReg("r", t)
	b.emit(&Load{instBase: b.debug(e.Loc, 0), Dest: dest, Src: slot})
	return dest
}

func (b *Builder) lowerCall(e *checked.Call) Value {
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		args = append(args, b.lowerExpr(arg))
	}
	name := "indirect"
	if e.Fun != nil {
		name = e.Fun.GlobalName
	} else if e.Sig != nil {
		name = e.Sig.GlobalName
	}
	t := b.lowerDt(e.Type)
	if _, isUnit := t.(*UnitT); isUnit {
		b.emit(&Call{instBase: b.debug(e.Loc, 0), Fun: name, Args: args})
		return &UnitConst{}
	}
	dest := b.newReg("r", t)
	b.emit(&Call{instBase: b.debug(e.Loc, 0), Dest: dest, Fun: name, Args: args})
	return dest
}

// lowerRecordCall lowers record construction to per-field stores into a
// fresh alloca, or a constant aggregate when every field is constant.
func (b *Builder) lowerRecordCall(e *checked.RecordCall) Value {
	t := b.lowerDt(e.Type)
	if v := b.constRecord(e, t); v != nil {
		return v
	}
	slot := &Var{Name: b.names.NewVar(e.Record.Name + ".tmp"), T: t}
	b.emit(&Alloca{instBase: b.debug(e.Loc, 0), Dest: slot})
	for _, f := range e.Fields {
		v := b.lowerExpr(f.Value)
		field := b.newReg("f", &Ptr{Elem: v.Type()})
		b.emit(&GetField{instBase: b.debug(f.Value.Location(), 0), Dest: field, Base: slot, Index: f.Index})
		b.emit(&Store{instBase: b.debug(f.Value.Location(), 0), Dst: field, Val: v})
	}
	dest := b.newReg("r", t)
	b.emit(&Load{instBase: b.debug(e.Loc, 0), Dest: dest, Src: slot})
	return dest
}

func (b *Builder) constRecord(e *checked.RecordCall, t Dt) Value {
	fields := make([]Value, len(e.Record.Fields))
	for _, f := range e.Fields {
		v := b.constValue(f.Value)
		if v == nil {
			return nil
		}
		fields[f.Index] = v
	}
	for _, f := range fields {
		if f == nil {
			return nil
		}
	}
	return &StructConst{Fields: fields, T: t}
}

func (b *Builder) lowerVariantCall(e *checked.VariantCall) Value {
	t := b.lowerDt(e.Type)
	fields := []Value{&IntConst{V: int64(e.Variant), T: I32T}}
	if e.Value != nil {
		fields = append(fields, b.lowerExpr(e.Value))
	}
	return &StructConst{Fields: fields, T: t}
}

func (b *Builder) lowerAggregate(elems []checked.Expr, t Dt, at checked.Expr) Value {
	fields := make([]Value, len(elems))
	allConst := true
	for i, el := range elems {
		if v := b.constValue(el); v != nil {
			fields[i] = v
		} else {
			allConst = false
		}
	}
	if allConst {
		return &StructConst{Fields: fields, T: t}
	}
	slot := &Var{Name: b.names.NewVar("tmp"), T: t}
	b.emit(&Alloca{instBase: b.debug(at.Location(), 0), Dest: slot})
	for i, el := range elems {
		v := b.lowerExpr(el)
		field := b.newReg("f", &Ptr{Elem: v.Type()})
		b.emit(&GetField{instBase: b.debug(el.Location(), 0), Dest: field, Base: slot, Index: i})
		b.emit(&Store{instBase: b.debug(el.Location(), 0), Dst: field, Val: v})
	}
	dest := b.newReg("r", t)
	b.emit(&Load{instBase: b.debug(at.Location(), 0), Dest: dest, Src: slot})
	return dest
}

func (b *Builder) lowerArray(e *checked.ArrayExpr) Value {
	t := b.lowerDt(e.Type)
	elems := make([]Value, len(e.Elems))
	allConst := true
	for i, el := range e.Elems {
		if v := b.constValue(el); v != nil {
			elems[i] = v
		} else {
			allConst = false
		}
	}
	if allConst {
		return &ArrayConst{Elems: elems, T: t}
	}
	slot := &Var{Name: b.names.NewVar("arr.tmp"), T: t}
	b.emit(&Alloca{instBase: b.debug(e.Loc, 0), Dest: slot})
	for i, el := range e.Elems {
		v := b.lowerExpr(el)
		elem := b.newReg("e", &Ptr{Elem: v.Type()})
		b.emit(&GetElement{instBase: b.debug(el.Location(), 0), Dest: elem, Base: slot,
			Index: &IntConst{V: int64(i), T: I64T}})
		b.emit(&Store{instBase: b.debug(el.Location(), 0), Dst: elem, Val: v})
	}
	dest := b.newReg("r", t)
	b.emit(&Load{instBase: b.debug(e.Loc, 0), Dest: dest, Src: slot})
	return dest
}

// lowerCast inserts the narrowest conversion op for the value pair.
func (b *Builder) lowerCast(e *checked.CastExpr) Value {
	v := b.lowerExpr(e.Value)
	src := v.Type()
	dst := b.lowerDt(e.Type)
	op := castOp(src, dst)
	if op == "" {
		return v
	}
	dest := b.newReg("c", dst)
	b.emit(&Cast{instBase: b.debug(e.Loc, 0), Dest: dest, Op: op, V: v})
	return dest
}

func castOp(src, dst Dt) string {
	switch s := src.(type) {
	case *Int:
		switch d := dst.(type) {
		case *Int:
			if s.Bits == d.Bits {
				return ""
			}
			if s.Bits > d.Bits {
				return "trunc"
			}
			if s.Signed {
				return "sext"
			}
			return "zext"
		case *Float:
			return "sitofp"
		case *Ptr:
			return "inttoptr"
		}
	case *Float:
		switch d := dst.(type) {
		case *Float:
			if s.Bits == d.Bits {
				return ""
			}
			if s.Bits > d.Bits {
				return "fptrunc"
			}
			return "fpext"
		case *Int:
			return "fptosi"
		}
	case *Ptr:
		switch dst.(type) {
		case *Int:
			return "ptrtoint"
		case *Ptr:
			return "bitcast"
		}
	}
	return ""
}

func (b *Builder) lowerLambda(e *checked.LambdaExpr) Value {
	name := b.fun.Name
	e.Fun.GlobalName = b.lambdaName(name)

	// Lambda bodies lower as separate function items; the builder cursor
	// is saved and restored around the nested lowering.
	saved := *b
	b.lowerFun(e.Fun)
	b.fun = saved.fun
	b.block = saved.block
	b.names = saved.names
	b.vars = saved.vars
	b.loops = saved.loops
	b.deferred = saved.deferred
	b.nextBlockID = saved.nextBlockID
	b.curReturn = saved.curReturn

	return &FunRef{Name: e.Fun.GlobalName, T: BytePtr}
}

func (b *Builder) lambdaName(parent string) string {
	b.lambdaSeq++
	return fmt.Sprintf("%s.lambda.%d", parent, b.lambdaSeq)
}
