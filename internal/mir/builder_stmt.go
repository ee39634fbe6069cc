package mir

import (
	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
)

func (b *Builder) lowerStmts(stmts []checked.Stmt) {
	for _, s := range stmts {
		if b.block.Terminated() {
			return
		}
		b.lowerStmt(s)
	}
}

func (b *Builder) lowerStmt(s checked.Stmt) {
	switch stmt := s.(type) {
	case *checked.Variable:
		slot := &Var{Name: b.names.NewVar(stmt.Name), T: b.lowerDt(stmt.Type)}
		b.emit(&Alloca{instBase: b.debug(stmt.Loc, 0), Dest: slot})
		if stmt.Entry != nil {
			b.vars[stmt.Entry.ID] = slot
		}
		if stmt.Init != nil {
			v := b.lowerExpr(stmt.Init)
			b.emit(&Store{instBase: b.debug(stmt.Loc, 0), Dst: slot, Val: v})
		}
	case *checked.Assign:
		v := b.lowerExpr(stmt.Value)
		if addr := b.lowerAddress(stmt.Target); addr != nil {
			b.emit(&Store{instBase: b.debug(stmt.Loc, 0), Dst: addr, Val: v})
		}
	case *checked.Return:
		var val Value
		if stmt.Value != nil {
			val = b.lowerExpr(stmt.Value)
			val = b.wrapResultOk(val)
		}
		b.runAllDefers()
		b.emit(&Ret{instBase: b.debug(stmt.Loc, 0), Val: val})
	case *checked.Raise:
		errVal := b.lowerExpr(stmt.Value)
		b.runAllDefers()
		b.emit(&Ret{instBase: b.debug(stmt.Loc, 0), Val: b.wrapResultErr(errVal)})
	case *checked.IfStmt:
		b.lowerIfStmt(stmt)
	case *checked.While:
		b.lowerWhile(stmt)
	case *checked.Loop:
		b.lowerLoop(stmt)
	case *checked.For:
		b.lowerFor(stmt)
	case *checked.MatchStmt:
		merge := b.newBlock("merge")
		b.lowerMatchCore(stmt.Scrutinee, len(stmt.Arms), merge,
			func(i int) checked.Pattern { return stmt.Arms[i].Pattern },
			func(i int) guardInfo {
				return guardInfo{guard: stmt.Arms[i].Guard, body: func() { b.lowerStmts(stmt.Arms[i].Body) }}
			})
		b.block = merge
	case *checked.Defer:
		b.deferred[len(b.deferred)-1] = append(b.deferred[len(b.deferred)-1], stmt.Body...)
	case *checked.Drop:
		v := b.lowerExpr(stmt.Value)
		b.emit(&Call{instBase: b.debug(stmt.Loc, 0), Fun: "drop", Args: []Value{v}})
	case *checked.Try:
		b.lowerTry(stmt)
	case *checked.Block:
		b.lowerLabeledBlock(stmt)
	case *checked.Unsafe:
		b.lowerStmts(stmt.Body)
	case *checked.Next:
		if ctx := b.findLoop(stmt.Label); ctx != nil {
			b.emit(&Jmp{instBase: b.debug(stmt.Loc, 0), Target: ctx.next})
		}
	case *checked.Break:
		if ctx := b.findLoop(stmt.Label); ctx != nil {
			b.emit(&Jmp{instBase: b.debug(stmt.Loc, 0), Target: ctx.exit})
		}
	case *checked.Await:
		v := b.lowerExpr(stmt.Value)
		dest := b.newReg("r", v.Type())
		b.emit(&Call{instBase: b.debug(stmt.Loc, 0), Dest: dest, Fun: "await", Args: []Value{v}})
	case *checked.ExprStmt:
		b.lowerExpr(stmt.Value)
	}
}

// wrapResultOk wraps a return value into the ok variant of the function's
// result aggregate when the function returns a result type.
func (b *Builder) wrapResultOk(v Value) Value {
	if res, ok := b.curReturn.(*checked.Result); ok {
		t := b.lowerDt(res)
		return &StructConst{Fields: []Value{
			&IntConst{V: 0, T: I1}, v, &IntConst{V: 0, T: I32T},
		}, T: t}
	}
	return v
}

// wrapResultErr wraps a raised error into the error variant; raise lowers
// to returning it, try to a branch.
func (b *Builder) wrapResultErr(errVal Value) Value {
	if res, ok := b.curReturn.(*checked.Result); ok {
		t := b.lowerDt(res)
		return &StructConst{Fields: []Value{
			&IntConst{V: 1, T: I1}, &IntConst{V: 0, T: b.lowerDt(res.Ok)}, errVal,
		}, T: t}
	}
	return errVal
}

// lowerAddress computes a store target.
func (b *Builder) lowerAddress(e checked.Expr) Value {
	switch expr := e.(type) {
	case *checked.VarRef:
		if expr.Entry != nil {
			if slot, ok := b.vars[expr.Entry.ID]; ok {
				return slot
			}
		}
	case *checked.FieldAccess:
		base := b.lowerAddress(expr.Base)
		if base == nil {
			return nil
		}
		dest := b.newReg("f", &Ptr{Elem: b.lowerDt(expr.Type)})
		b.emit(&GetField{instBase: b.debug(expr.Loc, 0), Dest: dest, Base: base, Index: expr.Index})
		return dest
	case *checked.IndexAccess:
		base := b.lowerAddress(expr.Base)
		if base == nil {
			base = b.lowerExpr(expr.Base)
		}
		idx := b.lowerExpr(expr.Index)
		dest := b.newReg("e", &Ptr{Elem: b.lowerDt(expr.Type)})
		b.emit(&GetElement{instBase: b.debug(expr.Loc, 0), Dest: dest, Base: base, Index: idx})
		return dest
	}
	return nil
}

// runAllDefers emits every pending defer body, innermost region first.
func (b *Builder) runAllDefers() {
	for i := len(b.deferred) - 1; i >= 0; i-- {
		for j := len(b.deferred[i]) - 1; j >= 0; j-- {
			b.lowerStmt(b.deferred[i][j])
		}
	}
}

// pushRegion opens a lexical cleanup region; popRegion emits its defers.
func (b *Builder) pushRegion() {
	b.deferred = append(b.deferred, nil)
}

func (b *Builder) popRegion() {
	top := b.deferred[len(b.deferred)-1]
	b.deferred = b.deferred[:len(b.deferred)-1]
	if b.block.Terminated() {
		return
	}
	for j := len(top) - 1; j >= 0; j-- {
		b.lowerStmt(top[j])
	}
}

func (b *Builder) findLoop(label string) *loopCtx {
	for i := len(b.loops) - 1; i >= 0; i-- {
		if label == "" || b.loops[i].label == label {
			return &b.loops[i]
		}
	}
	return nil
}

func (b *Builder) lowerIfStmt(s *checked.IfStmt) {
	merge := b.newBlock("merge")
	branches := append([]checked.IfBranch{s.If}, s.Elifs...)
	for _, branch := range branches {
		cond := b.lowerExpr(branch.Cond)
		then := b.newBlock("then")
		next := b.newBlock("else")
		b.emit(&JmpCond{instBase: b.debug(branch.Cond.Location(), 0), Cond: cond, Then: then, Else: next})

		b.block = then
		b.pushRegion()
		b.lowerStmts(branch.Body)
		b.popRegion()
		b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: merge})
		then.Limit.SetLimit(merge.ID)

		b.block = next
	}
	if s.HasElse {
		b.pushRegion()
		b.lowerStmts(s.Else)
		b.popRegion()
	}
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: merge})
	b.block.Limit.SetLimit(merge.ID)
	b.block = merge
}

func (b *Builder) lowerWhile(s *checked.While) {
	cond := b.newBlock("cond")
	body := b.newBlock("body")
	exit := b.newBlock("exit")
	body.Limit.SetLimit(exit.ID)

	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: cond})
	b.block = cond
	v := b.lowerExpr(s.Cond)
	b.emit(&JmpCond{instBase: b.debug(s.Loc, 0), Cond: v, Then: body, Else: exit})

	b.block = body
	b.loops = append(b.loops, loopCtx{next: cond, exit: exit})
	b.pushRegion()
	b.lowerStmts(s.Body)
	b.popRegion()
	b.loops = b.loops[:len(b.loops)-1]
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: cond})

	b.block = exit
}

func (b *Builder) lowerLoop(s *checked.Loop) {
	body := b.newBlock("body")
	exit := b.newBlock("exit")
	body.Limit.SetLimit(exit.ID)

	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: body})
	b.block = body
	b.loops = append(b.loops, loopCtx{next: body, exit: exit})
	b.pushRegion()
	b.lowerStmts(s.Body)
	b.popRegion()
	b.loops = b.loops[:len(b.loops)-1]
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: body})

	b.block = exit
}

// lowerFor lowers for-in over ranges and indexable values with an index
// counter loop.
func (b *Builder) lowerFor(s *checked.For) {
	iter := b.lowerExpr(s.Iter)

	idx := &Var{Name: b.names.NewVar("for.idx"), T: I64T}
	b.emit(&Alloca{instBase: b.debug(s.Loc, 0), Dest: idx})

	var limit Value
	isRange := false
	if _, ok := s.Iter.Dt().(*checked.Range); ok {
		isRange = true
		lo := b.newReg("f", I64T)
		b.emit(&GetField{instBase: b.debug(s.Loc, 0), Dest: lo, Base: iter, Index: 0})
		b.emit(&Store{instBase: b.debug(s.Loc, 0), Dst: idx, Val: lo})
		hi := b.newReg("f", I64T)
		b.emit(&GetField{instBase: b.debug(s.Loc, 0), Dest: hi, Base: iter, Index: 1})
		limit = hi
	} else {
		b.emit(&Store{instBase: b.debug(s.Loc, 0), Dst: idx, Val: &IntConst{V: 0, T: I64T}})
		if arr, ok := iter.Type().(*ArrayT); ok {
			limit = &IntConst{V: arr.Size, T: I64T}
		} else {
			length := b.newReg("r", I64T)
			b.emit(&Call{instBase: b.debug(s.Loc, 0), Dest: length, Fun: "len", Args: []Value{iter}})
			limit = length
		}
	}

	cond := b.newBlock("cond")
	body := b.newBlock("body")
	exit := b.newBlock("exit")
	body.Limit.SetLimit(exit.ID)

	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: cond})
	b.block = cond
	cur := b.newReg("r", I64T)
	b.emit(&Load{instBase: b.debug(s.Loc, 0), Dest: cur, Src: idx})
	cmp := b.newReg("r", I1)
	b.emit(&BinOp{instBase: b.debug(s.Loc, 0), Dest: cmp, Op: "icmp slt", L: cur, R: limit})
	b.emit(&JmpCond{instBase: b.debug(s.Loc, 0), Cond: cmp, Then: body, Else: exit})

	b.block = body
	cur = b.newReg("r", I64T)
	b.emit(&Load{instBase: b.debug(s.Loc, 0), Dest: cur, Src: idx})
	var elem Value = cur
	if !isRange {
		e := b.newReg("e", b.lowerDt(bindingType(s.Binding)))
		b.emit(&GetElement{instBase: b.debug(s.Loc, 0), Dest: e, Base: iter, Index: cur})
		elem = e
	}
	b.bindPattern(elem, s.Binding)

	b.loops = append(b.loops, loopCtx{next: cond, exit: exit})
	b.pushRegion()
	b.lowerStmts(s.Body)
	b.popRegion()
	b.loops = b.loops[:len(b.loops)-1]

	next := b.newReg("r", I64T)
	b.emit(&Load{instBase: b.debug(s.Loc, 0), Dest: next, Src: idx})
	incr := b.newReg("r", I64T)
	b.emit(&BinOp{instBase: b.debug(s.Loc, 0), Dest: incr, Op: "add", L: next, R: &IntConst{V: 1, T: I64T}})
	b.emit(&Store{instBase: b.debug(s.Loc, 0), Dst: idx, Val: incr})
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: cond})

	b.block = exit
}

func bindingType(p checked.Pattern) checked.Dt {
	return p.Dt()
}

// bindPattern allocates slots for names bound by a pattern and stores the
// matched value components.
func (b *Builder) bindPattern(v Value, p checked.Pattern) {
	switch pat := p.(type) {
	case *checked.PatBind:
		slot := &Var{Name: b.names.NewVar(pat.Name), T: v.Type()}
		b.emit(&Alloca{instBase: b.debug(pat.Loc, 0), Dest: slot})
		b.emit(&Store{instBase: b.debug(pat.Loc, 0), Dst: slot, Val: v})
		if pat.Entry != nil {
			b.vars[pat.Entry.ID] = slot
		}
	case *checked.PatAs:
		slot := &Var{Name: b.names.NewVar(pat.Name), T: v.Type()}
		b.emit(&Alloca{instBase: b.debug(pat.Loc, 0), Dest: slot})
		b.emit(&Store{instBase: b.debug(pat.Loc, 0), Dst: slot, Val: v})
		if pat.Entry != nil {
			b.vars[pat.Entry.ID] = slot
		}
		b.bindPattern(v, pat.Inner)
	case *checked.PatTuple:
		for i, el := range pat.Elems {
			f := b.newReg("f", b.lowerDt(el.Dt()))
			b.emit(&GetField{instBase: b.debug(pat.Loc, 0), Dest: f, Base: v, Index: i})
			b.bindPattern(f, el)
		}
	case *checked.PatRecord:
		for _, f := range pat.Fields {
			reg := b.newReg("f", b.lowerDt(f.Pattern.Dt()))
			b.emit(&GetField{instBase: b.debug(pat.Loc, 0), Dest: reg, Base: v, Index: f.Index})
			b.bindPattern(reg, f.Pattern)
		}
	case *checked.PatVariant:
		if pat.Inner != nil {
			payload := b.newReg("f", b.lowerDt(pat.Inner.Dt()))
			b.emit(&GetField{instBase: b.debug(pat.Loc, 0), Dest: payload, Base: v, Index: 1})
			b.bindPattern(payload, pat.Inner)
		}
	}
}

// patternTest emits an i1 test for whether v matches p.
func (b *Builder) patternTest(v Value, p checked.Pattern) Value {
	switch pat := p.(type) {
	case *checked.PatWildcard, *checked.PatBind:
		return &IntConst{V: 1, T: I1}
	case *checked.PatAs:
		return b.patternTest(v, pat.Inner)
	case *checked.PatLiteral:
		lit := b.literalValue(pat.Lit)
		dest := b.newReg("r", I1)
		op := "icmp eq"
		if _, ok := lit.Type().(*Float); ok {
			op = "fcmp eq"
		}
		b.emit(&BinOp{instBase: b.debug(pat.Loc, 0), Dest: dest, Op: op, L: v, R: lit})
		return dest
	case *checked.PatRange:
		var lo, hi Value
		if pat.Lo != nil {
			lo = b.literalValue(pat.Lo)
		}
		if pat.Hi != nil {
			hi = b.literalValue(pat.Hi)
		}
		result := Value(&IntConst{V: 1, T: I1})
		if lo != nil {
			ge := b.newReg("r", I1)
			b.emit(&BinOp{instBase: b.debug(pat.Loc, 0), Dest: ge, Op: "icmp sge", L: v, R: lo})
			result = ge
		}
		if hi != nil {
			le := b.newReg("r", I1)
			b.emit(&BinOp{instBase: b.debug(pat.Loc, 0), Dest: le, Op: "icmp sle", L: v, R: hi})
			if lo != nil {
				both := b.newReg("r", I1)
				b.emit(&BinOp{instBase: b.debug(pat.Loc, 0), Dest: both, Op: "and", L: result, R: le})
				result = both
			} else {
				result = le
			}
		}
		return result
	case *checked.PatVariant:
		tag := b.newReg("f", I32T)
		b.emit(&GetField{instBase: b.debug(pat.Loc, 0), Dest: tag, Base: v, Index: 0})
		dest := b.newReg("r", I1)
		b.emit(&BinOp{instBase: b.debug(pat.Loc, 0), Dest: dest, Op: "icmp eq",
			L: tag, R: &IntConst{V: int64(pat.Variant), T: I32T}})
		return dest
	}
	return &IntConst{V: 1, T: I1}
}

// guardInfo carries an arm's optional guard and its body lowering.
type guardInfo struct {
	guard checked.Expr
	body  func()
}

// lowerMatchCore lowers a match over n arms into a switch when every arm
// is a guard-free integer literal or variant pattern (the last arm may be
// irrefutable), and a test chain otherwise.
func (b *Builder) lowerMatchCore(scrutinee checked.Expr, n int, merge *Block,
	pat func(int) checked.Pattern, arm func(int) guardInfo) {

	v := b.lowerExpr(scrutinee)

	guardFree := true
	for i := 0; i < n; i++ {
		if arm(i).guard != nil {
			guardFree = false
			break
		}
	}
	if guardFree {
		if cases, defaultIdx, ok := switchShape(n, pat); ok {
			b.lowerSwitch(v, scrutinee, cases, defaultIdx, n, merge, pat, arm)
			return
		}
	}

	// Fallback: a chain of tests.
	for i := 0; i < n; i++ {
		info := arm(i)
		cond := b.patternTest(v, pat(i))
		body := b.newBlock("case")
		next := b.newBlock("next")
		b.emit(&JmpCond{instBase: b.debug(scrutinee.Location(), 0), Cond: cond, Then: body, Else: next})

		b.block = body
		b.bindPattern(v, pat(i))
		if info.guard != nil {
			g := b.lowerExpr(info.guard)
			bodyReal := b.newBlock("guarded")
			b.emit(&JmpCond{instBase: b.debug(info.guard.Location(), 0), Cond: g, Then: bodyReal, Else: next})
			b.block = bodyReal
		}
		info.body()
		b.emit(&Jmp{instBase: b.debug(scrutinee.Location(), 0), Target: merge})
		body.Limit.SetLimit(merge.ID)

		b.block = next
	}
	b.emit(&Jmp{instBase: b.debug(scrutinee.Location(), 0), Target: merge})
}

type switchCaseShape struct {
	index int
	lit   int64
}

// switchShape recognizes the all-literal (or all-variant) guard-free match
// that lowers to a switch terminator.
func switchShape(n int, pat func(int) checked.Pattern) ([]switchCaseShape, int, bool) {
	var cases []switchCaseShape
	defaultIdx := -1
	for i := 0; i < n; i++ {
		switch p := pat(i).(type) {
		case *checked.PatLiteral:
			switch p.Lit.Kind {
			case ast.LitInt32, ast.LitInt64, ast.LitSuffixed, ast.LitChar, ast.LitByte, ast.LitBool:
				lit := p.Lit.Int
				if p.Lit.Kind == ast.LitBool {
					lit = 0
					if p.Lit.Bool {
						lit = 1
					}
				}
				cases = append(cases, switchCaseShape{index: i, lit: lit})
			default:
				return nil, -1, false
			}
		case *checked.PatVariant:
			if p.Inner != nil && !checked.IsIrrefutable(p.Inner) {
				return nil, -1, false
			}
			cases = append(cases, switchCaseShape{index: i, lit: int64(p.Variant)})
		case *checked.PatWildcard, *checked.PatBind:
			if defaultIdx >= 0 || i != n-1 {
				return nil, -1, false
			}
			defaultIdx = i
		default:
			return nil, -1, false
		}
	}
	if len(cases) == 0 {
		return nil, -1, false
	}
	return cases, defaultIdx, true
}

func (b *Builder) lowerSwitch(v Value, scrutinee checked.Expr, cases []switchCaseShape,
	defaultIdx, n int, merge *Block, pat func(int) checked.Pattern, arm func(int) guardInfo) {

	// A variant match switches on the tag field.
	switchVal := v
	if _, isVariant := pat(cases[0].index).(*checked.PatVariant); isVariant {
		tag := b.newReg("f", I32T)
		b.emit(&GetField{instBase: b.debug(scrutinee.Location(), 0), Dest: tag, Base: v, Index: 0})
		switchVal = tag
	}

	blocks := make([]*Block, n)
	sw := &Switch{instBase: b.debug(scrutinee.Location(), 0), Val: switchVal}
	for _, c := range cases {
		blocks[c.index] = b.newBlock("case")
		sw.Cases = append(sw.Cases, SwitchCase{Lit: c.lit, Block: blocks[c.index]})
	}
	if defaultIdx >= 0 {
		blocks[defaultIdx] = b.newBlock("default")
		sw.Default = blocks[defaultIdx]
	} else {
		sw.Default = merge
	}
	b.emit(sw)

	for i := 0; i < n; i++ {
		if blocks[i] == nil {
			continue
		}
		b.block = blocks[i]
		b.bindPattern(v, pat(i))
		arm(i).body()
		b.emit(&Jmp{instBase: b.debug(scrutinee.Location(), 0), Target: merge})
		blocks[i].Limit.SetLimit(merge.ID)
	}
}

func (b *Builder) lowerTry(s *checked.Try) {
	tryBlock := b.newBlock("try")
	catchBlock := b.newBlock("catch")
	merge := b.newBlock("merge")
	tryBlock.Limit.SetLimit(merge.ID)
	catchBlock.Limit.SetLimit(merge.ID)

	b.emit(&Try{instBase: b.debug(s.Loc, 0), TryBlock: tryBlock, CatchBlock: catchBlock})

	b.block = tryBlock
	b.pushRegion()
	b.lowerStmts(s.Body)
	b.popRegion()
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: merge})

	b.block = catchBlock
	if s.HasCatch {
		b.pushRegion()
		b.lowerStmts(s.Catch)
		b.popRegion()
	}
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: merge})

	b.block = merge
}

func (b *Builder) lowerLabeledBlock(s *checked.Block) {
	exit := b.newBlock("exit")
	body := b.newBlock("block")
	body.Limit.SetLimit(exit.ID)

	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: body})
	b.block = body
	if s.Label != "" {
		b.loops = append(b.loops, loopCtx{label: s.Label, next: exit, exit: exit})
	}
	b.pushRegion()
	b.lowerStmts(s.Body)
	b.popRegion()
	if s.Label != "" {
		b.loops = b.loops[:len(b.loops)-1]
	}
	b.emit(&Jmp{instBase: b.debug(s.Loc, 0), Target: exit})
	b.block = exit
}
