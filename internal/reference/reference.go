// Package reference loads the embedded tax reference tables: federal brackets
// per filing status, state tables, federal poverty lines and the RMD
// life-expectancy factors. The tables are loaded once at startup and injected
// into the model builder as immutable data.
package reference

import (
	"embed"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/drawplan/drawplan/internal/domain"
)

//go:embed data/federal.yaml data/state.yaml
var dataFS embed.FS

// Federal holds the federal parameters for one filing status.
type Federal struct {
	StandardDeduction float64
	NIIThreshold      float64
	Brackets          domain.TaxTable
	CapitalGains      domain.TaxTable
}

// State holds one state's parameters for one filing status.
type State struct {
	StandardDeduction     float64
	TaxesSocialSecurity   bool
	TaxesRetirementIncome bool
	Brackets              domain.TaxTable
}

// Tables is the full immutable reference set.
type Tables struct {
	RMDFactors []float64

	federal     map[string]Federal
	states      map[string]map[string]State
	povertyLine map[string]map[int]float64
}

type bracketYAML struct {
	Rate  float64 `yaml:"rate"`
	Lower float64 `yaml:"lower"`
}

type federalFileYAML struct {
	RMDFactors   []float64 `yaml:"rmd_factors"`
	FilingStatus map[string]struct {
		StandardDeduction float64       `yaml:"standard_deduction"`
		NIIThreshold      float64       `yaml:"nii_threshold"`
		Brackets          []bracketYAML `yaml:"brackets"`
		CapitalGains      []bracketYAML `yaml:"capital_gains_brackets"`
	} `yaml:"filing_status"`
	PovertyLine map[string]map[int]float64 `yaml:"poverty_line"`
}

type stateFileYAML struct {
	States map[string]map[string]struct {
		StandardDeduction     float64       `yaml:"standard_deduction"`
		TaxesSocialSecurity   bool          `yaml:"tax_social_security"`
		TaxesRetirementIncome bool          `yaml:"tax_retirement_income"`
		Brackets              []bracketYAML `yaml:"brackets"`
	} `yaml:"states"`
}

// Load parses the embedded reference data.
func Load() (*Tables, error) {
	fedRaw, err := dataFS.ReadFile("data/federal.yaml")
	if err != nil {
		return nil, fmt.Errorf("read federal reference data: %w", err)
	}
	var fed federalFileYAML
	if err := yaml.Unmarshal(fedRaw, &fed); err != nil {
		return nil, fmt.Errorf("parse federal reference data: %w", err)
	}

	stRaw, err := dataFS.ReadFile("data/state.yaml")
	if err != nil {
		return nil, fmt.Errorf("read state reference data: %w", err)
	}
	var st stateFileYAML
	if err := yaml.Unmarshal(stRaw, &st); err != nil {
		return nil, fmt.Errorf("parse state reference data: %w", err)
	}

	t := &Tables{
		RMDFactors:  fed.RMDFactors,
		federal:     make(map[string]Federal, len(fed.FilingStatus)),
		states:      make(map[string]map[string]State, len(st.States)),
		povertyLine: fed.PovertyLine,
	}
	if len(t.RMDFactors) == 0 {
		return nil, fmt.Errorf("federal reference data has no RMD factors")
	}

	for status, f := range fed.FilingStatus {
		brackets, err := toTaxTable(f.Brackets, "federal "+status)
		if err != nil {
			return nil, err
		}
		cg, err := toTaxTable(f.CapitalGains, "capital gains "+status)
		if err != nil {
			return nil, err
		}
		t.federal[status] = Federal{
			StandardDeduction: f.StandardDeduction,
			NIIThreshold:      f.NIIThreshold,
			Brackets:          brackets,
			CapitalGains:      cg,
		}
	}

	for abbr, byStatus := range st.States {
		t.states[abbr] = make(map[string]State, len(byStatus))
		for status, s := range byStatus {
			brackets, err := toTaxTable(s.Brackets, abbr+" "+status)
			if err != nil {
				return nil, err
			}
			t.states[abbr][status] = State{
				StandardDeduction:     s.StandardDeduction,
				TaxesSocialSecurity:   s.TaxesSocialSecurity,
				TaxesRetirementIncome: s.TaxesRetirementIncome,
				Brackets:              brackets,
			}
		}
	}
	return t, nil
}

// toTaxTable converts (percent rate, lower bound) rows into a validated
// contiguous table, deriving each upper bound from the next row's lower bound.
func toTaxTable(rows []bracketYAML, label string) (domain.TaxTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no brackets", label)
	}
	sorted := append([]bracketYAML(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })
	table := make(domain.TaxTable, len(sorted))
	for i, r := range sorted {
		upper := math.Inf(1)
		if i+1 < len(sorted) {
			upper = sorted[i+1].Lower
		}
		table[i] = domain.TaxBracket{Rate: r.Rate / 100, Lower: r.Lower, Upper: upper}
	}
	if err := table.Validate(label); err != nil {
		return nil, err
	}
	return table, nil
}

// Federal returns the federal parameters for a filing status.
func (t *Tables) Federal(status string) (Federal, error) {
	f, ok := t.federal[status]
	if !ok {
		return Federal{}, fmt.Errorf("unknown filing status %q", status)
	}
	return f, nil
}

// State returns a state's parameters. The second return is false when the
// state is not in the tables; callers typically fall back to a zero-tax table.
func (t *Tables) State(abbr, status string) (State, bool) {
	byStatus, ok := t.states[abbr]
	if !ok {
		return State{}, false
	}
	s, ok := byStatus[status]
	return s, ok
}

// NoStateTax is the fallback for states without reference data: a single
// zero-rate bracket and no deductions.
func NoStateTax() State {
	return State{
		Brackets: domain.TaxTable{{Rate: 0, Lower: 0, Upper: math.Inf(1)}},
	}
}

// PovertyLine returns the federal poverty line for a household of the given
// size in the given state (AK and HI have their own tables). Sizes beyond the
// table clamp to the largest entry; zero covered people yields zero.
func (t *Tables) PovertyLine(stateAbbr string, covered int) float64 {
	if covered <= 0 {
		return 0
	}
	table, ok := t.povertyLine[stateAbbr]
	if !ok {
		table = t.povertyLine["default"]
	}
	if len(table) == 0 {
		return 0
	}
	if amt, ok := table[covered]; ok {
		return amt
	}
	largest, amt := 0, 0.0
	for n, a := range table {
		if n > largest {
			largest, amt = n, a
		}
	}
	return amt
}
