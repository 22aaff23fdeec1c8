// Package solver drives the external COIN-OR CBC mixed-integer solver over a
// file-based interface: the problem is written in LP format to a scratch file,
// cbc is invoked as a subprocess, and its solution file is parsed back into a
// value per variable.
package solver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/drawplan/drawplan/internal/lp"
)

// Status is the outcome of one solve attempt, mirroring the status line CBC
// writes at the top of its solution file.
type Status int

const (
	// StatusOptimal means the solver certified an optimum within its gap
	// tolerance.
	StatusOptimal Status = iota
	// StatusNotSolved means the solver stopped early (time limit); the
	// returned incumbent, if any, is feasible but not certified optimal.
	StatusNotSolved
	// StatusInfeasible means the problem has no feasible region. Retrying
	// with a looser tolerance cannot fix this.
	StatusInfeasible
	// StatusUnbounded means the objective can grow without limit.
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusNotSolved:
		return "Not Solved"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Usable reports whether a solution vector accompanying this status can be
// handed to the results extractor. A timed-out incumbent is usable; the caller
// decides whether to accept it.
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusNotSolved
}

// Options tune a single solve attempt.
type Options struct {
	// TimeLimit bounds the attempt's wall clock. Zero means no limit.
	TimeLimit time.Duration
	// RelativeGap is CBC's allowable relative optimality gap ("ratio").
	// Zero leaves the solver default in place.
	RelativeGap float64
}

// CBC invokes the cbc binary. The zero value is usable and finds cbc on PATH.
type CBC struct {
	// Path is the cbc executable. Empty means "cbc".
	Path string
	// Threads is the worker count handed to the solver's own search. The
	// solver's internal parallelism is opaque to the rest of the system.
	Threads int
	// Verbose streams solver chatter to Output.
	Verbose bool
	// Output receives solver stdout when Verbose is set. Defaults to
	// os.Stderr.
	Output io.Writer
	// ScratchDir receives the temporary model/solution files. Empty means
	// the system temp dir.
	ScratchDir string
}

func (c *CBC) executable() string {
	if c.Path != "" {
		return c.Path
	}
	return "cbc"
}

// Solve writes the problem to disk, runs cbc and parses the solution file.
// Statuses other than Optimal are not errors; an error indicates the solver
// could not be run or its output could not be understood.
func (c *CBC) Solve(ctx context.Context, prob *lp.Problem, opts Options) (*lp.Solution, Status, error) {
	dir := c.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	// A unique stem per attempt: concurrent requests must not collide.
	stem := filepath.Join(dir, "drawplan-"+uuid.NewString())
	lpPath := stem + ".lp"
	solPath := stem + ".sol"
	defer os.Remove(lpPath)
	defer os.Remove(solPath)

	f, err := os.Create(lpPath)
	if err != nil {
		return nil, StatusNotSolved, fmt.Errorf("create model file: %w", err)
	}
	if err := prob.WriteLP(f); err != nil {
		f.Close()
		return nil, StatusNotSolved, fmt.Errorf("write model: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, StatusNotSolved, fmt.Errorf("close model file: %w", err)
	}

	args := c.arguments(lpPath, solPath, opts)
	if opts.TimeLimit > 0 {
		// Leave cbc a grace window to write out its incumbent before the
		// process-level deadline fires.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit+30*time.Second)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.executable(), args...)
	if c.Verbose {
		out := c.Output
		if out == nil {
			out = os.Stderr
		}
		cmd.Stdout = out
		cmd.Stderr = out
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, StatusNotSolved, fmt.Errorf("solver killed: %w", ctx.Err())
		}
		return nil, StatusNotSolved, fmt.Errorf("run %s: %w", c.executable(), err)
	}

	sf, err := os.Open(solPath)
	if err != nil {
		return nil, StatusNotSolved, fmt.Errorf("open solution file: %w", err)
	}
	defer sf.Close()
	return parseSolution(sf, prob)
}

// arguments assembles the cbc command line. The verb "branch" requests a full
// branch-and-bound solve; "printingOptions all" makes cbc report every
// variable, including the zeros.
func (c *CBC) arguments(lpPath, solPath string, opts Options) []string {
	args := []string{lpPath}
	if opts.TimeLimit > 0 {
		args = append(args, "sec", strconv.FormatFloat(opts.TimeLimit.Seconds(), 'f', 0, 64), "timeMode", "elapsed")
	}
	if opts.RelativeGap > 0 {
		args = append(args, "ratio", strconv.FormatFloat(opts.RelativeGap, 'g', -1, 64))
	}
	if c.Threads > 0 {
		args = append(args, "threads", strconv.Itoa(c.Threads))
	}
	args = append(args, "branch", "printingOptions", "all", "solution", solPath)
	return args
}
