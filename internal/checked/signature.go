package checked

import (
	"sort"
	"strings"
)

// Signature is a cached (global name, generic substitution) → resolved
// type record. It is registered eagerly at declaration and reused on each
// instantiation.
type Signature struct {
	GlobalName string
	Generics   []string
	Subst      map[string]Dt
	Params     []Dt
	Return     Dt
}

// substKey builds a deterministic key for a substitution.
func substKey(subst map[string]Dt) string {
	names := make([]string, 0, len(subst))
	for n := range subst {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(subst[n].String())
		b.WriteByte(';')
	}
	return b.String()
}

// SignatureStore memoizes instantiated signatures by (global name,
// substitution) so repeated instantiations share one checked record.
type SignatureStore struct {
	byKey map[string]*Signature
}

// NewSignatureStore creates an empty store.
func NewSignatureStore() *SignatureStore {
	return &SignatureStore{byKey: map[string]*Signature{}}
}

// Instantiate returns the cached signature for the substitution, creating
// it by substituting into the base parameter and return types on a miss.
func (s *SignatureStore) Instantiate(globalName string, generics []string, params []Dt, ret Dt, subst map[string]Dt) *Signature {
	key := globalName + "|" + substKey(subst)
	if sig, ok := s.byKey[key]; ok {
		return sig
	}
	sig := &Signature{
		GlobalName: globalName,
		Generics:   generics,
		Subst:      subst,
		Return:     ret.Substitute(subst),
	}
	sig.Params = make([]Dt, len(params))
	for i, p := range params {
		sig.Params[i] = p.Substitute(subst)
	}
	s.byKey[key] = sig
	return sig
}

// Len returns the number of cached signatures.
func (s *SignatureStore) Len() int { return len(s.byKey) }
