package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/drawplan/drawplan/internal/domain"
	"github.com/drawplan/drawplan/internal/lp"
	"github.com/drawplan/drawplan/internal/solver"
)

// DefaultTolerances is the relaxation ladder: each entry is the fraction of
// the true optimum a solution must certifiably reach before it is accepted.
// The first rung is exact; when the solver times out at one rung the whole
// model is rebuilt and retried at the next, looser one.
var DefaultTolerances = []float64{1, 0.9999, 0.999, 0.99}

// DefaultTimeLimit bounds each solve attempt when the caller sets none.
const DefaultTimeLimit = 180 * time.Second

// Solver is the backend a Planner drives. *solver.CBC satisfies it.
type Solver interface {
	Solve(ctx context.Context, prob *lp.Problem, opts solver.Options) (*lp.Solution, solver.Status, error)
}

// Planner runs the full pipeline: build the model, solve each objective in
// priority order, retry on timeout with looser tolerances, and extract the
// accepted solution.
type Planner struct {
	Solver     Solver
	Logger     Logger
	Tolerances []float64
}

// NewPlanner returns a Planner over the given backend with default tolerances
// and no logging.
func NewPlanner(s Solver) *Planner {
	return &Planner{Solver: s, Logger: NopLogger{}, Tolerances: DefaultTolerances}
}

// Plan solves the household's drawdown schedule under the given run options.
// Infeasible and unbounded outcomes are reported in the result's status, not
// as errors; errors mean the solver could not be run at all.
func (pl *Planner) Plan(ctx context.Context, h *domain.Household, cfg domain.RunConfig) (*domain.PlanResult, error) {
	log := pl.Logger
	if log == nil {
		log = NopLogger{}
	}
	tolerances := pl.Tolerances
	if len(tolerances) == 0 {
		tolerances = DefaultTolerances
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Objective.Validate(); err != nil {
		return nil, err
	}

	// A zero-year horizon has nothing to optimize.
	if h.NumYears == 0 {
		return &domain.PlanResult{
			Status:        domain.PlanOptimal,
			SpendingFloor: cfg.Objective.Value,
		}, nil
	}

	opts := solver.Options{TimeLimit: cfg.TimeLimit}
	if opts.TimeLimit == 0 {
		opts.TimeLimit = DefaultTimeLimit
	}

	var (
		bestModel *Model
		bestSol   *lp.Solution
		bestTol   float64
	)
	for _, tol := range tolerances {
		// Rebuild from scratch: sequential solving mutates the problem with
		// objective-lock constraints.
		m, err := Build(h, cfg)
		if err != nil {
			return nil, err
		}
		opts.RelativeGap = 1 - tol

		log.Infof("solving %s objective with %d vars, %d constraints, %d binaries at tolerance %g",
			cfg.Objective.Kind, len(m.Prob.Vars()), len(m.Prob.Constraints()), m.Prob.NumBinaries(), tol)

		sol, status, err := pl.solveSequential(ctx, m, tol, opts, log)
		if err != nil {
			return nil, err
		}
		switch status {
		case solver.StatusOptimal:
			return m.Extract(sol, domain.PlanOptimal, tol), nil
		case solver.StatusInfeasible:
			log.Warnf("model infeasible; the spending floor cannot be met")
			return &domain.PlanResult{Status: domain.PlanInfeasible}, nil
		case solver.StatusUnbounded:
			return &domain.PlanResult{Status: domain.PlanUnbounded}, nil
		default:
			if sol != nil {
				bestModel, bestSol, bestTol = m, sol, tol
			}
			log.Warnf("solver hit the time limit at tolerance %g, retrying looser", tol)
		}
	}

	if bestSol != nil {
		log.Warnf("accepting a timed-out incumbent; the plan may be slightly suboptimal")
		return bestModel.Extract(bestSol, domain.PlanNotSolved, bestTol), nil
	}
	return &domain.PlanResult{Status: domain.PlanNotSolved}, nil
}

// solveSequential optimizes the model's objectives in priority order. After
// each solved stage the achieved value is locked in as a constraint, slightly
// relaxed by the tolerance, so later stages only choose among near-winners of
// earlier ones.
func (pl *Planner) solveSequential(ctx context.Context, m *Model, tol float64, opts solver.Options, log Logger) (*lp.Solution, solver.Status, error) {
	objectives := m.Objectives()
	var (
		sol    *lp.Solution
		status solver.Status
	)
	for i, obj := range objectives {
		m.Prob.SetObjective(obj)
		var err error
		sol, status, err = pl.Solver.Solve(ctx, m.Prob, opts)
		if err != nil {
			return nil, status, fmt.Errorf("objective stage %d: %w", i, err)
		}
		if !status.Usable() || sol == nil {
			return sol, status, nil
		}
		if i == len(objectives)-1 {
			break
		}
		achieved := sol.Eval(obj)
		bound := achieved * tol
		if achieved < 0 {
			bound = achieved * (2 - tol)
		}
		log.Debugf("objective stage %d achieved %g, locking at %g", i, achieved, bound)
		m.Prob.AddGE(fmt.Sprintf("Objective_Lock_%d", i), obj, lp.Constant(bound))
	}
	return sol, status, nil
}
