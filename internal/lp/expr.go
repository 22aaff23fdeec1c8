package lp

import "sort"

// Term is a coefficient applied to a variable.
type Term struct {
	Var  *Var
	Coef float64
}

// Expr is a linear expression: a sum of terms plus a constant. Expressions are
// values; arithmetic methods return new expressions and never mutate their
// receivers, so partial expressions can be reused freely while building a
// model.
type Expr struct {
	Terms []Term
	Const float64
}

// Constant returns an expression holding only a constant.
func Constant(c float64) Expr { return Expr{Const: c} }

// Variable returns an expression holding a single variable with coefficient 1.
func Variable(v *Var) Expr { return Expr{Terms: []Term{{Var: v, Coef: 1}}} }

// Scaled returns coef*v as an expression.
func Scaled(v *Var, coef float64) Expr { return Expr{Terms: []Term{{Var: v, Coef: coef}}} }

// Sum adds any number of expressions.
func Sum(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		out = out.Plus(e)
	}
	return out
}

// SumVars adds any number of variables with coefficient 1.
func SumVars(vars ...*Var) Expr {
	terms := make([]Term, 0, len(vars))
	for _, v := range vars {
		terms = append(terms, Term{Var: v, Coef: 1})
	}
	return Expr{Terms: terms}
}

// Plus returns e + o.
func (e Expr) Plus(o Expr) Expr {
	terms := make([]Term, 0, len(e.Terms)+len(o.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, o.Terms...)
	return Expr{Terms: terms, Const: e.Const + o.Const}
}

// Minus returns e - o.
func (e Expr) Minus(o Expr) Expr { return e.Plus(o.Scale(-1)) }

// PlusConst returns e + c.
func (e Expr) PlusConst(c float64) Expr { return Expr{Terms: e.Terms, Const: e.Const + c} }

// Scale returns k*e.
func (e Expr) Scale(k float64) Expr {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Var: t.Var, Coef: t.Coef * k}
	}
	return Expr{Terms: terms, Const: e.Const * k}
}

// Coef returns the accumulated coefficient of v in e.
func (e Expr) Coef(v *Var) float64 {
	c := 0.0
	for _, t := range e.Terms {
		if t.Var == v {
			c += t.Coef
		}
	}
	return c
}

// canonical merges duplicate variables, drops zero coefficients and orders
// terms by variable index. Backends require each variable to appear at most
// once per row.
func (e Expr) canonical() Expr {
	if len(e.Terms) == 0 {
		return e
	}
	acc := make(map[int]float64, len(e.Terms))
	byID := make(map[int]*Var, len(e.Terms))
	for _, t := range e.Terms {
		acc[t.Var.ID] += t.Coef
		byID[t.Var.ID] = t.Var
	}
	ids := make([]int, 0, len(acc))
	for id, coef := range acc {
		if coef != 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	terms := make([]Term, 0, len(ids))
	for _, id := range ids {
		terms = append(terms, Term{Var: byID[id], Coef: acc[id]})
	}
	return Expr{Terms: terms, Const: e.Const}
}
