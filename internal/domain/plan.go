package domain

import (
	"fmt"
	"time"
)

// ObjectiveKind selects which of the three mutually exclusive objectives the
// model builder constructs.
type ObjectiveKind int

const (
	// MaxSpend maximizes the sustainable inflation-adjusted spending floor.
	MaxSpend ObjectiveKind = iota
	// MaxAssets fixes the spending floor and maximizes discounted
	// end-of-plan assets.
	MaxAssets
	// MinTaxes fixes the spending floor and minimizes discounted lifetime
	// tax plus healthcare payments.
	MinTaxes
)

func (k ObjectiveKind) String() string {
	switch k {
	case MaxSpend:
		return "max-spend"
	case MaxAssets:
		return "max-assets"
	case MinTaxes:
		return "min-taxes"
	default:
		return fmt.Sprintf("ObjectiveKind(%d)", int(k))
	}
}

// Objective is the run's goal: a kind plus, for the fixed-floor kinds, the
// yearly spending amount in today's dollars.
type Objective struct {
	Kind  ObjectiveKind `json:"kind"`
	Value float64       `json:"value,omitempty"`
}

// Validate rejects fixed-floor objectives without a positive floor.
func (o Objective) Validate() error {
	switch o.Kind {
	case MaxSpend:
		return nil
	case MaxAssets, MinTaxes:
		if o.Value <= 0 {
			return fmt.Errorf("%s objective requires a positive spending floor, got %g", o.Kind, o.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown objective kind %d", int(o.Kind))
	}
}

// RunConfig carries the per-invocation options recognized by the solve
// pipeline.
type RunConfig struct {
	Objective                Objective     `json:"objective"`
	TimeLimit                time.Duration `json:"time_limit,omitempty"`
	PessimisticTaxes         bool          `json:"pessimistic_taxes,omitempty"`
	PessimisticHealthcare    bool          `json:"pessimistic_healthcare,omitempty"`
	NoConversions            bool          `json:"no_conversions,omitempty"`
	NoConversionsAfterSocSec bool          `json:"no_conversions_after_socsec,omitempty"`
	Verbose                  bool          `json:"verbose,omitempty"`

	// Solver knobs; zero values use the backend defaults.
	SolverPath string `json:"-"`
	Threads    int    `json:"threads,omitempty"`
}

// PlanStatus is the outcome reported to the caller.
type PlanStatus string

const (
	PlanOptimal PlanStatus = "Optimal"
	// PlanNotSolved means the solver hit its time limit on every tolerance;
	// the reported plan is the best incumbent and may be slightly
	// suboptimal.
	PlanNotSolved  PlanStatus = "NotSolved"
	PlanInfeasible PlanStatus = "Infeasible"
	PlanUnbounded  PlanStatus = "Unbounded"
)

// YearRecord is one year of the solved plan, in today's dollars.
type YearRecord struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	BrokerageBalance  float64 `json:"brokerage_balance"`
	BrokerageWithdraw float64 `json:"brokerage_withdraw"`
	DeferredBalance   float64 `json:"ira_balance"`
	DeferredWithdraw  float64 `json:"ira_withdraw"`
	TaxFreeBalance    float64 `json:"roth_balance"`
	TaxFreeWithdraw   float64 `json:"roth_withdraw"`
	Conversion        float64 `json:"ira_to_roth"`

	OrdinaryIncome      float64 `json:"ordinary_income"`
	StateOrdinaryIncome float64 `json:"state_ordinary_income"`
	FederalAGI          float64 `json:"fed_agi"`
	FederalTax          float64 `json:"fed_tax"`
	StateTax            float64 `json:"state_tax"`
	TotalTax            float64 `json:"total_tax"`

	CapGainsDistribution float64 `json:"capital_gains_distribution"`
	SpendableCGD         float64 `json:"cgd_spendable"`
	TotalCapGains        float64 `json:"total_capital_gains"`

	RequiredRMD    float64 `json:"required_rmd"`
	SocialSecurity float64 `json:"social_security"`
	HealthPayment  float64 `json:"health_payment"`
	HealthSubsidy  float64 `json:"health_subsidy"`

	Spending float64 `json:"spending"`
	Excess   float64 `json:"excess"`

	// Per-bracket allocation vectors, for verifying bracket-filling order.
	BracketAlloc         []float64 `json:"tax_brackets"`
	StateBracketAlloc    []float64 `json:"state_tax_brackets"`
	CapGainsBracketAlloc []float64 `json:"cg_tax_brackets"`
}

// PlanResult is the full solve outcome handed to the presentation layers.
type PlanResult struct {
	Status PlanStatus `json:"status"`
	// Tolerance is the relative-optimality tolerance at which the accepted
	// solution was found.
	Tolerance       float64      `json:"tolerance,omitempty"`
	SpendingFloor   float64      `json:"spending_floor"`
	EndOfPlanAssets float64      `json:"endofplan_assets"`
	Years           []YearRecord `json:"years"`
}
