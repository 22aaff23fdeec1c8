// Package lp provides a small typed representation of linear and mixed-integer
// programs: variables, linear expressions, named constraints, and the big-M
// linearization primitives used by the plan model builder. Solving is delegated
// to an external backend (see internal/solver).
package lp

import (
	"fmt"
	"math"
)

// Sense is the optimization direction of a problem.
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "Minimize"
	}
	return "Maximize"
}

// Op is a constraint comparison operator.
type Op int

const (
	LE Op = iota // <=
	GE           // >=
	EQ           // ==
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "="
	}
}

// Var is a decision variable owned by exactly one Problem. Variables are
// created through Problem.NewVar and friends and are identified by a dense
// index, so solved values can live in a flat slice.
type Var struct {
	ID     int
	Name   string
	Lower  float64
	Upper  float64
	Binary bool
}

// Constraint is a normalized linear constraint: Expr Op RHS, with the
// expression's constant already folded into the right-hand side.
type Constraint struct {
	Name string
	Expr Expr
	Op   Op
	RHS  float64
}

// Problem accumulates variables, constraints and an objective. It is not safe
// for concurrent mutation; each solve attempt builds its own Problem.
type Problem struct {
	Name  string
	Sense Sense

	vars   []*Var
	cons   []*Constraint
	byName map[string]*Constraint
	obj    Expr
}

// New creates an empty problem.
func New(name string, sense Sense) *Problem {
	return &Problem{
		Name:   name,
		Sense:  sense,
		byName: make(map[string]*Constraint),
	}
}

// NewVar creates a continuous variable with bounds [0, +inf).
func (p *Problem) NewVar(name string) *Var {
	return p.addVar(&Var{Name: name, Lower: 0, Upper: math.Inf(1)})
}

// NewFreeVar creates a continuous variable with no bounds. Used for
// intermediate quantities that may legitimately go negative, e.g. the
// raw amount by which income overshoots a bracket floor.
func (p *Problem) NewFreeVar(name string) *Var {
	return p.addVar(&Var{Name: name, Lower: math.Inf(-1), Upper: math.Inf(1)})
}

// NewBinary creates a 0/1 indicator variable.
func (p *Problem) NewBinary(name string) *Var {
	return p.addVar(&Var{Name: name, Lower: 0, Upper: 1, Binary: true})
}

func (p *Problem) addVar(v *Var) *Var {
	v.ID = len(p.vars)
	p.vars = append(p.vars, v)
	return v
}

// AddConstraint adds lhs (op) rhs as a named constraint. The two expressions
// are folded into canonical form with all terms on the left and a scalar on
// the right.
func (p *Problem) AddConstraint(name string, lhs Expr, op Op, rhs Expr) *Constraint {
	folded := lhs.Minus(rhs).canonical()
	c := &Constraint{
		Name: name,
		Expr: Expr{Terms: folded.Terms},
		Op:   op,
		RHS:  -folded.Const,
	}
	p.cons = append(p.cons, c)
	p.byName[name] = c
	return c
}

// AddLE adds lhs <= rhs.
func (p *Problem) AddLE(name string, lhs, rhs Expr) *Constraint {
	return p.AddConstraint(name, lhs, LE, rhs)
}

// AddGE adds lhs >= rhs.
func (p *Problem) AddGE(name string, lhs, rhs Expr) *Constraint {
	return p.AddConstraint(name, lhs, GE, rhs)
}

// AddEQ adds lhs == rhs.
func (p *Problem) AddEQ(name string, lhs, rhs Expr) *Constraint {
	return p.AddConstraint(name, lhs, EQ, rhs)
}

// SetObjective replaces the objective expression.
func (p *Problem) SetObjective(e Expr) {
	p.obj = e.canonical()
}

// Objective returns the current objective expression.
func (p *Problem) Objective() Expr { return p.obj }

// Vars returns all variables in creation order.
func (p *Problem) Vars() []*Var { return p.vars }

// Constraints returns all constraints in creation order.
func (p *Problem) Constraints() []*Constraint { return p.cons }

// Constraint returns the constraint with the given name, or nil.
func (p *Problem) Constraint(name string) *Constraint { return p.byName[name] }

// NumBinaries reports how many binary indicator variables the problem holds.
func (p *Problem) NumBinaries() int {
	n := 0
	for _, v := range p.vars {
		if v.Binary {
			n++
		}
	}
	return n
}

// Validate performs cheap structural checks before the problem is handed to a
// backend: every constraint must reference at least one variable, and all
// referenced variables must belong to this problem.
func (p *Problem) Validate() error {
	for _, c := range p.cons {
		if len(c.Expr.Terms) == 0 {
			return fmt.Errorf("constraint %q has no variables", c.Name)
		}
		for _, t := range c.Expr.Terms {
			if t.Var.ID >= len(p.vars) || p.vars[t.Var.ID] != t.Var {
				return fmt.Errorf("constraint %q references foreign variable %q", c.Name, t.Var.Name)
			}
		}
	}
	return nil
}
