package solver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drawplan/drawplan/internal/lp"
)

// parseSolution reads a CBC solution file. The first line is a status banner,
// e.g.
//
//	Optimal - objective value 1234.56
//	Stopped on time limit - objective value 1000.00
//	Infeasible - objective value 0.00
//	Unbounded
//
// followed by one row per variable: index, name, value, reduced cost. Rows of
// constraint-violating variables are prefixed with "**" in infeasible files.
func parseSolution(r io.Reader, prob *lp.Problem) (*lp.Solution, Status, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, StatusNotSolved, fmt.Errorf("empty solution file")
	}
	status, err := parseBanner(sc.Text())
	if err != nil {
		return nil, StatusNotSolved, err
	}
	if !status.Usable() {
		return nil, status, nil
	}

	byName := make(map[string]*lp.Var, len(prob.Vars()))
	for _, v := range prob.Vars() {
		byName[lp.LPName(v)] = v
	}

	sol := lp.NewSolution(len(prob.Vars()))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}
		v, ok := byName[fields[1]]
		if !ok {
			// cbc sometimes reports its own artificial columns; skip them.
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, status, fmt.Errorf("bad value for %s: %w", fields[1], err)
		}
		sol.Set(v, value)
	}
	if err := sc.Err(); err != nil {
		return nil, status, fmt.Errorf("read solution file: %w", err)
	}
	return sol, status, nil
}

func parseBanner(line string) (Status, error) {
	banner := strings.TrimSpace(line)
	lower := strings.ToLower(banner)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal, nil
	case strings.HasPrefix(lower, "infeasible"),
		strings.HasPrefix(lower, "integer infeasible"):
		return StatusInfeasible, nil
	case strings.HasPrefix(lower, "unbounded"):
		return StatusUnbounded, nil
	case strings.HasPrefix(lower, "stopped"):
		// Time limit or user interrupt; the rows that follow hold the best
		// incumbent found so far.
		return StatusNotSolved, nil
	default:
		return StatusNotSolved, fmt.Errorf("unrecognized solver status %q", banner)
	}
}
