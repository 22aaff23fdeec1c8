package lp

import "gonum.org/v1/gonum/floats"

// Solution holds the solved value of every variable of one problem, indexed by
// variable ID. Variables the backend did not report keep a zero value.
type Solution struct {
	values []float64
}

// NewSolution creates an all-zero solution for a problem with n variables.
func NewSolution(n int) *Solution {
	return &Solution{values: make([]float64, n)}
}

// Set records the solved value of v.
func (s *Solution) Set(v *Var, value float64) {
	s.values[v.ID] = value
}

// Value returns the solved value of v.
func (s *Solution) Value(v *Var) float64 {
	return s.values[v.ID]
}

// Eval evaluates a linear expression against the solution vector.
func (s *Solution) Eval(e Expr) float64 {
	if len(e.Terms) == 0 {
		return e.Const
	}
	coefs := make([]float64, len(e.Terms))
	vals := make([]float64, len(e.Terms))
	for i, t := range e.Terms {
		coefs[i] = t.Coef
		vals[i] = s.values[t.Var.ID]
	}
	return e.Const + floats.Dot(coefs, vals)
}
