package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// termsPerLine keeps emitted rows comfortably under the line-length limits of
// LP file readers.
const termsPerLine = 8

var nameSanitizer = strings.NewReplacer(
	" ", "_", "-", "_", "+", "_", "*", "_", "/", "_",
	"[", "(", "]", ")", ":", "_",
)

func sanitizeName(s string) string {
	if s == "" {
		return "_"
	}
	return nameSanitizer.Replace(s)
}

func fmtNum(f float64) string { return fmt.Sprintf("%.12g", f) }

// LPName returns the sanitized identifier a variable carries inside an LP file
// and in the backend's solution file.
func LPName(v *Var) string { return sanitizeName(v.Name) }

// WriteLP serializes the problem in CPLEX LP file format, the format the CBC
// command-line backend consumes. Every variable is declared (via the Bounds or
// Binaries section) even if unreferenced, so the solution file reports a value
// for each one. A constant term in the objective is dropped: it does not move
// the argmax, and achieved objective values are recomputed from the solution
// vector rather than read back from the solver.
func (p *Problem) WriteLP(w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ %s\n", p.Name)
	fmt.Fprintf(bw, "%s\n", p.Sense)

	obj := p.obj.canonical()
	if len(obj.Terms) == 0 && len(p.vars) > 0 {
		// A term-less objective is not representable; pin it to an arbitrary
		// variable with zero weight.
		obj = Scaled(p.vars[0], 0)
	}
	writeExprLines(bw, "obj", obj.Terms)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range p.cons {
		writeConstraint(bw, c)
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range p.vars {
		if v.Binary {
			continue
		}
		writeBound(bw, v)
	}

	if p.NumBinaries() > 0 {
		fmt.Fprintln(bw, "Binaries")
		n := 0
		for _, v := range p.vars {
			if !v.Binary {
				continue
			}
			fmt.Fprintf(bw, " %s", sanitizeName(v.Name))
			n++
			if n%termsPerLine == 0 {
				fmt.Fprintln(bw)
			}
		}
		if n%termsPerLine != 0 {
			fmt.Fprintln(bw)
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeExprLines(w io.Writer, label string, terms []Term) {
	fmt.Fprintf(w, "%s:", label)
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			fmt.Fprintf(w, "\n ")
		}
		writeTerm(w, t)
	}
	fmt.Fprintln(w)
}

func writeTerm(w io.Writer, t Term) {
	coef := t.Coef
	sign := "+"
	if coef < 0 {
		sign = "-"
		coef = -coef
	}
	if coef == 1 {
		fmt.Fprintf(w, " %s %s", sign, sanitizeName(t.Var.Name))
	} else {
		fmt.Fprintf(w, " %s %s %s", sign, fmtNum(coef), sanitizeName(t.Var.Name))
	}
}

func writeConstraint(w io.Writer, c *Constraint) {
	fmt.Fprintf(w, "%s:", sanitizeName(c.Name))
	for i, t := range c.Expr.Terms {
		if i > 0 && i%termsPerLine == 0 {
			fmt.Fprintf(w, "\n ")
		}
		writeTerm(w, t)
	}
	fmt.Fprintf(w, " %s %s\n", c.Op, fmtNum(c.RHS))
}

func writeBound(w io.Writer, v *Var) {
	lowerZero := v.Lower == 0
	upperInf := math.IsInf(v.Upper, 1)
	switch {
	case math.IsInf(v.Lower, -1) && upperInf:
		fmt.Fprintf(w, " %s free\n", sanitizeName(v.Name))
	case upperInf:
		fmt.Fprintf(w, " %s >= %s\n", sanitizeName(v.Name), fmtNum(v.Lower))
	case lowerZero:
		fmt.Fprintf(w, " %s <= %s\n", sanitizeName(v.Name), fmtNum(v.Upper))
	default:
		fmt.Fprintf(w, " %s <= %s <= %s\n", fmtNum(v.Lower), sanitizeName(v.Name), fmtNum(v.Upper))
	}
}
