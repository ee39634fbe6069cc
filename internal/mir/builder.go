package mir

import (
	"fmt"

	"github.com/lily-lang/lilyc/internal/ast"
	"github.com/lily-lang/lilyc/internal/checked"
	"github.com/lily-lang/lilyc/internal/position"
)

// Builder lowers checked declarations to MIR. It holds a cursor: the
// active function, the block under construction, the name manager, and
// the alloca map mirroring the checked scope chain.
type Builder struct {
	module *Module

	fun         *Fun
	block       *Block
	names       *NameManager
	vars        map[int]*Var // scope entry id → alloca
	consts      map[string]Value
	errCodes    map[string]int64
	loops       []loopCtx
	deferred    [][]checked.Stmt
	nextBlockID int
	lambdaSeq   int
	curReturn   checked.Dt
}

type loopCtx struct {
	label string
	next  *Block
	exit  *Block
}

// NewBuilder creates a builder with an empty module.
func NewBuilder() *Builder {
	return &Builder{
		module:   NewModule(),
		consts:   map[string]Value{},
		errCodes: map[string]int64{},
	}
}

// Lower lowers a package's checked declarations. It must only run when
// the package's error count is zero; any failure inside is an internal
// invariant violation.
func (b *Builder) Lower(decls []checked.Decl) *Module {
	for _, d := range decls {
		b.lowerDecl(d)
	}
	return b.module
}

func (b *Builder) lowerDecl(d checked.Decl) {
	switch decl := d.(type) {
	case *checked.Record:
		fields := make([]Dt, len(decl.Fields))
		for i, f := range decl.Fields {
			fields[i] = b.lowerDt(f.Type)
		}
		b.module.Items = append(b.module.Items, &Struct{Name: decl.GlobalName, Fields: fields})
		for _, m := range decl.Methods {
			b.lowerFun(m)
		}
	case *checked.Enum:
		// An enum lowers to {tag}, plus one i64 payload slot when any
		// variant carries a value.
		fields := []Dt{I32T}
		hasPayload := false
		for _, v := range decl.Variants {
			if v.Type != nil {
				hasPayload = true
			}
		}
		if hasPayload {
			fields = append(fields, I64T)
		}
		b.module.Items = append(b.module.Items, &Struct{Name: decl.GlobalName, Fields: fields})
		for _, m := range decl.Methods {
			b.lowerFun(m)
		}
	case *checked.Class:
		fields := make([]Dt, len(decl.Attributes))
		for i, f := range decl.Attributes {
			fields[i] = b.lowerDt(f.Type)
		}
		b.module.Items = append(b.module.Items, &Struct{Name: decl.GlobalName, Fields: fields})
		for _, m := range decl.Methods {
			b.lowerFun(m)
		}
	case *checked.Constant:
		val := b.constValue(decl.Init)
		if val == nil {
			// A runtime initializer lowers to a separate `<name>.init`
			// function and the constant item holds unit; nothing in the
			// pipeline calls the init function.
			init := &checked.Fun{
				Name:       decl.Name + ".init",
				GlobalName: decl.GlobalName + ".init",
				Return:     decl.Type,
				Body: []checked.Stmt{
					&checked.Return{Value: decl.Init, Loc: decl.Loc},
				},
				Loc: decl.Loc,
			}
			b.lowerFun(init)
			val = &UnitConst{}
		}
		b.consts[decl.GlobalName] = val
		b.module.Items = append(b.module.Items, &Const{Name: decl.GlobalName, Val: val})
	case *checked.ErrorDecl:
		code := int64(len(b.errCodes) + 1)
		b.errCodes[decl.GlobalName] = code
	case *checked.Module:
		for _, sub := range decl.Decls {
			b.lowerDecl(sub)
		}
	case *checked.Fun:
		b.lowerFun(decl)
	case *checked.Trait:
		for _, p := range decl.Prototypes {
			params := make([]Dt, len(p.Params))
			for i, t := range p.Params {
				params[i] = b.lowerDt(t)
			}
			b.module.Items = append(b.module.Items, &Prototype{
				Name:   decl.GlobalName + "." + p.Name,
				Params: params,
				Return: b.lowerDt(p.Return),
			})
		}
	}
}

// constValue lowers a constant-evaluable expression.
func (b *Builder) constValue(e checked.Expr) Value {
	switch v := e.(type) {
	case *checked.Literal:
		return b.literalValue(v)
	case *checked.TupleExpr:
		fields := make([]Value, len(v.Elems))
		for i, el := range v.Elems {
			fields[i] = b.constValue(el)
			if fields[i] == nil {
				return nil
			}
		}
		return &StructConst{Fields: fields, T: b.lowerDt(v.Type)}
	case *checked.ArrayExpr:
		elems := make([]Value, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = b.constValue(el)
			if elems[i] == nil {
				return nil
			}
		}
		return &ArrayConst{Elems: elems, T: b.lowerDt(v.Type)}
	}
	return nil
}

func (b *Builder) literalValue(lit *checked.Literal) Value {
	t := b.lowerDt(lit.Dt())
	switch lit.Kind {
	case ast.LitStr, ast.LitCStr, ast.LitBytes:
		return &StrConst{V: lit.Str, T: t}
	case ast.LitChar, ast.LitByte:
		var v int64
		for _, r := range lit.Str {
			v = int64(r)
			break
		}
		return &IntConst{V: v, T: t}
	case ast.LitBool:
		var v int64
		if lit.Bool {
			v = 1
		}
		return &IntConst{V: v, T: I1}
	case ast.LitFloat64:
		return &FloatConst{V: lit.Float, T: t}
	case ast.LitUnit, ast.LitNil, ast.LitUndef, ast.LitNone:
		return &UnitConst{}
	case ast.LitSuffixed:
		if ft, ok := t.(*Float); ok {
			return &FloatConst{V: lit.Float, T: ft}
		}
		if it, ok := t.(*Int); ok && !it.Signed {
			return &UintConst{V: lit.Uint, T: it}
		}
		return &IntConst{V: lit.Int, T: t}
	default:
		return &IntConst{V: lit.Int, T: t}
	}
}

// lowerDt maps a checked type onto its MIR representation.
func (b *Builder) lowerDt(t checked.Dt) Dt {
	switch dt := t.(type) {
	case *checked.Primitive:
		switch dt.Kind {
		case checked.I8:
			return &Int{Bits: 8, Signed: true}
		case checked.I16:
			return &Int{Bits: 16, Signed: true}
		case checked.I32:
			return &Int{Bits: 32, Signed: true}
		case checked.I64, checked.Isize:
			return &Int{Bits: 64, Signed: true}
		case checked.U8, checked.Byte:
			return &Int{Bits: 8}
		case checked.U16:
			return &Int{Bits: 16}
		case checked.U32:
			return &Int{Bits: 32}
		case checked.U64, checked.Usize:
			return &Int{Bits: 64}
		case checked.F32:
			return F32T
		case checked.F64:
			return F64T
		case checked.Bool:
			return I1
		case checked.Char:
			return &Int{Bits: 32}
		case checked.Str, checked.CStr, checked.Bytes:
			return BytePtr
		case checked.Unit, checked.Never:
			return UnitV
		default:
			return BytePtr
		}
	case *checked.Array:
		if dt.Kind == checked.ArraySized {
			return &ArrayT{Size: dt.Size, Elem: b.lowerDt(dt.Elem)}
		}
		return &Ptr{Elem: b.lowerDt(dt.Elem)}
	case *checked.Tuple:
		fields := make([]Dt, len(dt.Elems))
		for i, e := range dt.Elems {
			fields[i] = b.lowerDt(e)
		}
		return &StructT{Fields: fields}
	case *checked.List:
		return &Ptr{Elem: b.lowerDt(dt.Elem)}
	case *checked.Lambda:
		return BytePtr
	case *checked.Wrap:
		switch dt.Kind {
		case checked.WrapOptional:
			return &StructT{Fields: []Dt{I1, b.lowerDt(dt.Elem)}}
		default:
			return &Ptr{Elem: b.lowerDt(dt.Elem)}
		}
	case *checked.Result:
		return &StructT{Fields: []Dt{I1, b.lowerDt(dt.Ok), I32T}}
	case *checked.Custom:
		return &StructT{Name: dt.Name}
	case *checked.Range:
		elem := b.lowerDt(dt.Elem)
		return &StructT{Fields: []Dt{elem, elem}}
	}
	return UnitV
}

// --- function lowering ---

func (b *Builder) lowerFun(f *checked.Fun) {
	params := make([]Dt, len(f.Params))
	for i, p := range f.Params {
		params[i] = b.lowerDt(p.Type)
	}
	fun := &Fun{Name: f.GlobalName, Params: params, Return: b.lowerDt(f.Return)}
	b.fun = fun
	b.names = NewNameManager()
	b.vars = map[int]*Var{}
	b.loops = nil
	b.deferred = [][]checked.Stmt{nil}
	b.nextBlockID = 0
	b.curReturn = f.Return

	entry := b.newBlock("entry")
	b.block = entry

	b.lowerStmts(f.Body)

	// A fall-through end runs pending defers and returns unit.
	if !b.block.Terminated() {
		b.runAllDefers()
		scopeID := 0
		if f.Scope != nil {
			scopeID = f.Scope.ID
		}
		b.emit(&Ret{instBase: b.debug(f.Loc, scopeID)})
	}

	pruneUnreachable(fun)
	b.module.Items = append(b.module.Items, fun)
}

// pruneUnreachable drops blocks no terminator can reach, the only IR
// canonicalization the builder performs.
func pruneUnreachable(f *Fun) {
	if len(f.Blocks) == 0 {
		return
	}
	reachable := map[int]bool{}
	work := []*Block{f.Blocks[0]}
	reachable[f.Blocks[0].ID] = true
	for len(work) > 0 {
		blk := work[len(work)-1]
		work = work[:len(work)-1]
		for _, succ := range successors(blk) {
			if !reachable[succ.ID] {
				reachable[succ.ID] = true
				work = append(work, succ)
			}
		}
	}
	var kept []*Block
	for _, blk := range f.Blocks {
		if reachable[blk.ID] {
			kept = append(kept, blk)
		}
	}
	f.Blocks = kept
}

// successors lists the blocks a block's terminator can reach.
func successors(b *Block) []*Block {
	if len(b.Insts) == 0 {
		return nil
	}
	switch t := b.Insts[len(b.Insts)-1].(type) {
	case *Jmp:
		return []*Block{t.Target}
	case *JmpCond:
		return []*Block{t.Then, t.Else}
	case *Switch:
		out := make([]*Block, 0, len(t.Cases)+1)
		for _, c := range t.Cases {
			out = append(out, c.Block)
		}
		return append(out, t.Default)
	case *Try:
		return []*Block{t.TryBlock, t.CatchBlock}
	}
	return nil
}

func (b *Builder) newBlock(base string) *Block {
	blk := &Block{
		ID:    b.nextBlockID,
		Name:  fmt.Sprintf("%s%d", base, b.nextBlockID),
		Limit: &BlockLimit{},
	}
	if b.nextBlockID == 0 {
		blk.Name = "entry"
	}
	b.nextBlockID++
	b.fun.Blocks = append(b.fun.Blocks, blk)
	return blk
}

func (b *Builder) emit(i Inst) {
	if b.block.Terminated() {
		return
	}
	b.block.Insts = append(b.block.Insts, i)
}

func (b *Builder) debug(loc position.Location, scopeID int) instBase {
	idx := b.module.Debug.Intern(DebugRecord{
		File:  loc.File,
		Scope: scopeID,
		Line:  loc.StartLine,
		Col:   loc.StartCol,
	})
	return instBase{DebugInfo: idx}
}

func (b *Builder) newReg(base string, t Dt) *Reg {
	return &Reg{Name: b.names.NewReg(base), T: t}
}
