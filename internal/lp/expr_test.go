package lp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprArithmetic(t *testing.T) {
	p := New("test", Maximize)
	x := p.NewVar("x")
	y := p.NewVar("y")

	e := Variable(x).Plus(Scaled(y, 2)).PlusConst(5)
	assert.Equal(t, 1.0, e.Coef(x))
	assert.Equal(t, 2.0, e.Coef(y))
	assert.Equal(t, 5.0, e.Const)

	// Receivers must not be mutated by arithmetic.
	e2 := e.Minus(Variable(x)).Scale(3)
	assert.Equal(t, 1.0, e.Coef(x))
	assert.Equal(t, 0.0, e2.Coef(x))
	assert.Equal(t, 6.0, e2.Coef(y))
	assert.Equal(t, 15.0, e2.Const)
}

func TestExprCanonicalMergesAndSorts(t *testing.T) {
	p := New("test", Maximize)
	x := p.NewVar("x")
	y := p.NewVar("y")

	e := Variable(y).Plus(Variable(x)).Plus(Scaled(x, 2)).Minus(Scaled(y, 1)).canonical()
	require.Len(t, e.Terms, 1, "y cancels, x merges")
	assert.Same(t, x, e.Terms[0].Var)
	assert.Equal(t, 3.0, e.Terms[0].Coef)
}

func TestAddConstraintFoldsConstants(t *testing.T) {
	p := New("test", Maximize)
	x := p.NewVar("x")

	// x + 10 <= 2x + 25 becomes -x <= 15.
	c := p.AddLE("fold", Variable(x).PlusConst(10), Scaled(x, 2).PlusConst(25))
	assert.Equal(t, 15.0, c.RHS)
	assert.Equal(t, -1.0, c.Expr.Coef(x))
	assert.Equal(t, 0.0, c.Expr.Const)
	assert.Same(t, c, p.Constraint("fold"))
}

func TestValidateRejectsEmptyConstraint(t *testing.T) {
	p := New("test", Maximize)
	x := p.NewVar("x")
	p.AddEQ("degenerate", Variable(x), Variable(x))
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate")
}

func TestSolutionEval(t *testing.T) {
	p := New("test", Maximize)
	x := p.NewVar("x")
	y := p.NewVar("y")

	sol := NewSolution(len(p.Vars()))
	sol.Set(x, 3)
	sol.Set(y, 4)

	e := Scaled(x, 2).Plus(Variable(y)).PlusConst(1)
	assert.InDelta(t, 11.0, sol.Eval(e), 1e-12)
	assert.Equal(t, 7.0, sol.Eval(Constant(7)))
}

func TestWriteLP(t *testing.T) {
	p := New("demo", Maximize)
	x := p.NewVar("x")
	y := p.NewFreeVar("y-raw")
	b := p.NewBinary("pick")
	p.SetObjective(Variable(x).Plus(Scaled(y, 0.5)))
	p.AddLE("cap", Variable(x).Plus(Variable(y)), Constant(10))
	p.AddGE("floor", Variable(x), Scaled(b, 2))

	var sb strings.Builder
	require.NoError(t, p.WriteLP(&sb))
	out := sb.String()

	assert.Contains(t, out, "Maximize")
	assert.Contains(t, out, "obj: + x + 0.5 y_raw")
	assert.Contains(t, out, "cap: + x + y_raw <= 10")
	assert.Contains(t, out, "floor: + x - 2 pick >= 0")
	assert.Contains(t, out, " y_raw free")
	assert.Contains(t, out, "Binaries")
	assert.Contains(t, out, " pick")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "End"))
}

func TestWriteLPTermlessObjective(t *testing.T) {
	p := New("demo", Minimize)
	x := p.NewVar("x")
	p.AddGE("floor", Variable(x), Constant(1))
	p.SetObjective(Constant(42))

	var sb strings.Builder
	require.NoError(t, p.WriteLP(&sb))
	// The constant is dropped; a zero-weight term keeps the section valid.
	assert.Contains(t, sb.String(), "obj: + 0 x")
}
