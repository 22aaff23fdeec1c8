package lp

// Big-M linearization primitives. Each primitive introduces one binary
// indicator variable and a handful of linear constraints that pin a result
// variable (or enforce an implication) at any optimum, provided M exceeds the
// largest feasible magnitude of the expressions involved. Callers size M per
// call site: too small makes the relaxation unsound, too large degrades the
// solver's numerics.

// implicationEpsilon separates "condition > 0" from "condition == 0" in
// EncodeImplication. The boundary is approximate; the financial quantities fed
// through it are continuous, so exact behavior at zero is not load-bearing.
const implicationEpsilon = 1e-4

// EncodeMin constrains result == min(a, b) at any optimum.
//
//	result <= a
//	result <= b
//	a <= result + M*y
//	b <= result + M*(1-y)
func EncodeMin(p *Problem, result *Var, a, b Expr, m float64, name string) {
	y := p.NewBinary(name + "_min_ind")
	r := Variable(result)
	p.AddLE(name+"_min_le_a", r, a)
	p.AddLE(name+"_min_le_b", r, b)
	p.AddLE(name+"_min_ge_a", a, r.Plus(Scaled(y, m)))
	p.AddLE(name+"_min_ge_b", b, r.Plus(Constant(m)).Minus(Scaled(y, m)))
}

// EncodeMax constrains result == max(a, b) at any optimum. The indicator picks
// the larger operand: y=1 admits a >= b, y=0 admits a < b.
func EncodeMax(p *Problem, result *Var, a, b Expr, m float64, name string) {
	y := p.NewBinary(name + "_max_ind")
	r := Variable(result)
	p.AddGE(name+"_max_ge_a", r, a)
	p.AddGE(name+"_max_ge_b", r, b)
	// Link y to whichever operand may be larger.
	p.AddGE(name+"_max_link1", a.Minus(b), Constant(-m).Plus(Scaled(y, m)))
	p.AddLE(name+"_max_link2", a.Minus(b), Scaled(y, m))
	// Force equality with the selected operand.
	p.AddLE(name+"_max_le_a", r, a.Plus(Constant(m)).Minus(Scaled(y, m)))
	p.AddLE(name+"_max_le_b", r, b.Plus(Scaled(y, m)))
}

// EncodeImplication models "condition > 0 implies consequence <= 0".
//
//	condition >= eps - M*(1-y)
//	condition <= M*y
//	consequence <= M*(1-y)
//
// With y=1 the condition must be (strictly) positive and the consequence is
// enforced; with y=0 the condition is pinned at or below zero and the
// consequence is relaxed.
func EncodeImplication(p *Problem, condition, consequence Expr, m float64, name string) {
	y := p.NewBinary(name + "_if_ind")
	p.AddGE(name+"_if_lower", condition, Constant(implicationEpsilon-m).Plus(Scaled(y, m)))
	p.AddLE(name+"_if_upper", condition, Scaled(y, m))
	p.AddLE(name+"_then", consequence, Constant(m).Minus(Scaled(y, m)))
}
