package checked

import (
	"fmt"
	"strings"
)

// Operator is one registered operator overload. The signature lists the
// parameter types in order; the last entry is the return type.
type Operator struct {
	Name      string
	Signature []Dt
}

// Arity returns the number of operands.
func (o *Operator) Arity() int { return len(o.Signature) - 1 }

// Params returns the parameter types.
func (o *Operator) Params() []Dt { return o.Signature[:len(o.Signature)-1] }

// Return returns the return type.
func (o *Operator) Return() Dt { return o.Signature[len(o.Signature)-1] }

func (o *Operator) String() string {
	parts := make([]string, len(o.Signature))
	for i, dt := range o.Signature {
		parts[i] = dt.String()
	}
	return fmt.Sprintf("%s: %s", o.Name, strings.Join(parts, " -> "))
}

// signatureEquals compares two signatures component-wise.
func signatureEquals(a, b []Dt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// OperatorRegister is the package-wide register of user operators.
type OperatorRegister struct {
	operators []*Operator
}

// NewOperatorRegister creates an empty register.
func NewOperatorRegister() *OperatorRegister {
	return &OperatorRegister{}
}

// Add registers an operator. An operator with the same name and signature
// is a duplicate and is rejected.
func (r *OperatorRegister) Add(op *Operator) error {
	for _, o := range r.operators {
		if o.Name == op.Name && signatureEquals(o.Signature, op.Signature) {
			return fmt.Errorf("duplicate operator `%s`", op)
		}
	}
	r.operators = append(r.operators, op)
	return nil
}

// Search returns the operator with exactly the given name and signature.
func (r *OperatorRegister) Search(name string, signature []Dt) (*Operator, bool) {
	for _, o := range r.operators {
		if o.Name == name && signatureEquals(o.Signature, signature) {
			return o, true
		}
	}
	return nil, false
}

// CollectByName returns every operator with the given name and arity, in
// registration order.
func (r *OperatorRegister) CollectByName(name string, arity int) []*Operator {
	var out []*Operator
	for _, o := range r.operators {
		if o.Name == name && o.Arity() == arity {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of registered operators.
func (r *OperatorRegister) Len() int { return len(r.operators) }
