// Package scope implements the hierarchical symbol table. Each scope owns
// one container per symbol kind; names are unique per kind, so cross-kind
// shadowing (a type and a variable sharing a name) is allowed.
package scope

import (
	"fmt"
)

// Kind of a scope.
type Kind int

const (
	KindRoot Kind = iota
	KindModule
	KindFun
	KindBlock
	KindMatchArm
	KindRecord
	KindEnum
	KindClass
	KindTrait
	KindIf
	KindElse
	KindWhile
	KindFor
	KindLoop
	KindTry
	KindCatch
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModule:
		return "module"
	case KindFun:
		return "fun"
	case KindBlock:
		return "block"
	case KindMatchArm:
		return "match-arm"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindClass:
		return "class"
	case KindTrait:
		return "trait"
	case KindIf:
		return "if"
	case KindElse:
		return "else"
	case KindWhile:
		return "while"
	case KindFor:
		return "for"
	case KindLoop:
		return "loop"
	case KindTry:
		return "try"
	case KindCatch:
		return "catch"
	case KindLambda:
		return "lambda"
	}
	return "unknown"
}

// SymbolKind selects the container a name lives in.
type SymbolKind int

const (
	SymCapturedVariable SymbolKind = iota
	SymModule
	SymConstant
	SymEnum
	SymRecord
	SymAlias
	SymError
	SymEnumObject
	SymRecordObject
	SymClass
	SymTrait
	SymLabel
	SymVariable
	SymGeneric
	SymFun
	SymMethod
)

func (k SymbolKind) String() string {
	switch k {
	case SymCapturedVariable:
		return "captured variable"
	case SymModule:
		return "module"
	case SymConstant:
		return "constant"
	case SymEnum:
		return "enum"
	case SymRecord:
		return "record"
	case SymAlias:
		return "alias"
	case SymError:
		return "error"
	case SymEnumObject:
		return "enum object"
	case SymRecordObject:
		return "record object"
	case SymClass:
		return "class"
	case SymTrait:
		return "trait"
	case SymLabel:
		return "label"
	case SymVariable:
		return "variable"
	case SymGeneric:
		return "generic"
	case SymFun:
		return "fun"
	case SymMethod:
		return "method"
	}
	return "unknown"
}

// Entry is one symbol: a stable integer id plus a back-reference to the
// declaration node that produced it.
type Entry struct {
	ID   int
	Name string
	Kind SymbolKind
	Decl any
}

// Access describes how a symbol's owning scope is reached: its kind, the
// scope's local id, and the path of parent scope ids from the root.
type Access struct {
	Kind Kind
	ID   int
	Path []int
}

// Response is the typed result of a lookup.
type Response struct {
	Found  bool
	Entry  *Entry
	Scope  *Scope
	Access Access
}

// Catch marks a scope as an error-raising region with a handler.
type Catch struct {
	Name string
}

// Scope is one node of the scope tree.
type Scope struct {
	ID         int
	Kind       Kind
	Parent     *Scope
	Children   []*Scope
	Catch      *Catch
	containers map[SymbolKind]map[string]*Entry
	tree       *Tree
}

// Tree owns scope and entry id allocation for one package.
type Tree struct {
	Root        *Scope
	scopes      []*Scope
	nextScopeID int
	nextEntryID int
}

// ByID returns the scope with the given id, or nil.
func (t *Tree) ByID(id int) *Scope {
	if id < 0 || id >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// NewTree creates a tree with a fresh root scope.
func NewTree() *Tree {
	t := &Tree{}
	t.Root = t.NewScope(nil, KindRoot)
	return t
}

// NewScope creates a child of parent (nil only for the root).
func (t *Tree) NewScope(parent *Scope, kind Kind) *Scope {
	s := &Scope{
		ID:         t.nextScopeID,
		Kind:       kind,
		Parent:     parent,
		containers: map[SymbolKind]map[string]*Entry{},
		tree:       t,
	}
	t.nextScopeID++
	t.scopes = append(t.scopes, s)
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Add registers a symbol. A duplicate within the same kind is an error;
// the same name under a different kind is fine.
func (s *Scope) Add(kind SymbolKind, name string, decl any) (*Entry, error) {
	c, ok := s.containers[kind]
	if !ok {
		c = map[string]*Entry{}
		s.containers[kind] = c
	}
	if prev, ok := c[name]; ok {
		_ = prev
		return nil, fmt.Errorf("the name `%s` is already defined as a %s in this scope", name, kind)
	}
	e := &Entry{ID: s.tree.nextEntryID, Name: name, Kind: kind, Decl: decl}
	s.tree.nextEntryID++
	c[name] = e
	return e, nil
}

// Entries returns every symbol of the given kind in this scope. Order is
// unspecified; callers needing determinism sort by entry id.
func (s *Scope) Entries(kind SymbolKind) []*Entry {
	c, ok := s.containers[kind]
	if !ok {
		return nil
	}
	out := make([]*Entry, 0, len(c))
	for _, e := range c {
		out = append(out, e)
	}
	return out
}

// LookupLocal consults only this scope's container for kind.
func (s *Scope) LookupLocal(kind SymbolKind, name string) (*Entry, bool) {
	c, ok := s.containers[kind]
	if !ok {
		return nil, false
	}
	e, ok := c[name]
	return e, ok
}

// Lookup walks scopes outward consulting the kind-specific container.
func (s *Scope) Lookup(kind SymbolKind, name string) Response {
	for cur := s; cur != nil; cur = cur.Parent {
		if e, ok := cur.LookupLocal(kind, name); ok {
			return Response{Found: true, Entry: e, Scope: cur, Access: cur.AccessDescriptor()}
		}
	}
	return Response{}
}

// LookupAny walks outward trying each of the given kinds in order at every
// level, so an inner symbol of any kind shadows outer ones.
func (s *Scope) LookupAny(name string, kinds ...SymbolKind) Response {
	for cur := s; cur != nil; cur = cur.Parent {
		for _, k := range kinds {
			if e, ok := cur.LookupLocal(k, name); ok {
				return Response{Found: true, Entry: e, Scope: cur, Access: cur.AccessDescriptor()}
			}
		}
	}
	return Response{}
}

// AccessDescriptor computes the scope's access path from the root.
func (s *Scope) AccessDescriptor() Access {
	var path []int
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		path = append([]int{cur.ID}, path...)
	}
	return Access{Kind: s.Kind, ID: s.ID, Path: path}
}

// EnclosingCatch returns the innermost catch clause covering this scope.
func (s *Scope) EnclosingCatch() *Catch {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Catch != nil {
			return cur.Catch
		}
	}
	return nil
}

// EnclosingFun returns the innermost fun or lambda scope.
func (s *Scope) EnclosingFun() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == KindFun || cur.Kind == KindLambda {
			return cur
		}
	}
	return nil
}
