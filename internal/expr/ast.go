package expr

import "errors"

// ErrEvaluation marks any expression outside the supported grammar. Callers
// match it with errors.Is and degrade to a user-facing apology.
var ErrEvaluation = errors.New("expression outside supported grammar")

// Node is one node of the restricted expression tree. The grammar is closed:
// number literals, binary arithmetic, unary negation, calls into a fixed
// function allow-list, and named constants. Anything else never parses.
type Node interface {
	node()
}

// Number is a numeric literal
type Number struct {
	Value float64
}

// Binary is one of + - * / // % ^
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

// Unary is negation
type Unary struct {
	Operand Node
}

// Call invokes an allow-listed function
type Call struct {
	Name string
	Args []Node
}

// Constant references an allow-listed named constant (pi, e)
type Constant struct {
	Name string
}

func (Number) node()   {}
func (Binary) node()   {}
func (Unary) node()    {}
func (Call) node()     {}
func (Constant) node() {}
