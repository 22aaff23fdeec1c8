// Package config parses and validates the household configuration file and
// derives the immutable year-indexed Household the model builder consumes.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Stream is one named income or expense stream. Age is an agespan string
// ("62", "65-", "62-70,75"). Amounts are in today's dollars; Inflation grows
// the amount from the household's start age.
type Stream struct {
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Age       string          `yaml:"age" json:"age"`
	Inflation bool            `yaml:"inflation" json:"inflation"`
	// Taxable defaults to false, except for the social_security stream
	// which is always partially taxable.
	Taxable *bool `yaml:"taxable" json:"taxable"`
	// StateTaxable defaults to the federal taxability.
	StateTaxable *bool           `yaml:"state_taxable" json:"state_taxable"`
	Ceiling      decimal.Decimal `yaml:"ceiling" json:"ceiling"`
}

// AfterTaxSection configures the taxable brokerage account. Distributions is
// the annual capital-gains distribution yield in percent.
type AfterTaxSection struct {
	Balance       decimal.Decimal `yaml:"balance" json:"balance"`
	Basis         decimal.Decimal `yaml:"basis" json:"basis"`
	Distributions decimal.Decimal `yaml:"distributions" json:"distributions"`
}

// IRASection configures the pre-tax deferred account.
type IRASection struct {
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
}

// ContributionEntry is one historical tax-free-account contribution.
type ContributionEntry struct {
	Age    int             `yaml:"age" json:"age"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// RothSection configures the tax-free account.
type RothSection struct {
	Balance       decimal.Decimal     `yaml:"balance" json:"balance"`
	Contributions []ContributionEntry `yaml:"contributions" json:"contributions"`
}

// ACASection configures marketplace health coverage for the pre-65 years.
// Premium and SLCSP are monthly amounts.
type ACASection struct {
	Premium decimal.Decimal `yaml:"premium" json:"premium"`
	SLCSP   decimal.Decimal `yaml:"slcsp" json:"slcsp"`
	Covered int             `yaml:"covered" json:"covered"`
}

// TaxesSection selects the reference tax tables.
type TaxesSection struct {
	FilingStatus string `yaml:"filing_status" json:"filing_status"`
	State        string `yaml:"state" json:"state"`
}

// File is the on-disk household configuration.
type File struct {
	StartAge    int `yaml:"start_age" json:"start_age"`
	BirthMonth  int `yaml:"birth_month" json:"birth_month"`
	EndAge      int `yaml:"end_age" json:"end_age"`
	CurrentYear int `yaml:"current_year" json:"current_year"`

	// Inflation and Returns are annual percentages (2.5 means 2.5%).
	Inflation decimal.Decimal `yaml:"inflation" json:"inflation"`
	Returns   decimal.Decimal `yaml:"returns" json:"returns"`

	Taxes    TaxesSection      `yaml:"taxes" json:"taxes"`
	AfterTax *AfterTaxSection  `yaml:"aftertax" json:"aftertax"`
	IRA      *IRASection       `yaml:"ira" json:"ira"`
	Roth     *RothSection      `yaml:"roth" json:"roth"`
	Income   map[string]Stream `yaml:"income" json:"income"`
	Expense  map[string]Stream `yaml:"expense" json:"expense"`
	ACA      *ACASection       `yaml:"aca" json:"aca"`
}

// Parser loads and validates household configuration files.
type Parser struct{}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadFromFile reads, parses and validates a YAML configuration file.
func (p *Parser) LoadFromFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return p.Parse(data)
}

// Parse parses and validates configuration bytes.
func (p *Parser) Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return p.Normalize(&f)
}

// Normalize applies defaults to and validates an already-decoded File, e.g.
// one arriving as a JSON request body.
func (p *Parser) Normalize(f *File) (*File, error) {
	p.applyDefaults(f)
	if err := p.Validate(f); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return f, nil
}

func (p *Parser) applyDefaults(f *File) {
	if f.BirthMonth == 0 {
		f.BirthMonth = 1
	}
	if f.EndAge == 0 {
		f.EndAge = f.StartAge + 5
		if f.EndAge < 96 {
			f.EndAge = 96
		}
	}
	if f.CurrentYear == 0 {
		f.CurrentYear = time.Now().Year()
	}
	if f.Returns.IsZero() {
		f.Returns = decimal.NewFromInt(6)
	}
	if f.Taxes.FilingStatus == "" {
		f.Taxes.FilingStatus = "MFJ"
	}
	if f.AfterTax == nil {
		f.AfterTax = &AfterTaxSection{}
	}
	if f.IRA == nil {
		f.IRA = &IRASection{}
	}
	if f.Roth == nil {
		f.Roth = &RothSection{}
	}
	if f.ACA != nil && f.ACA.Covered == 0 {
		f.ACA.Covered = 1
	}
}

// Validate checks the configuration before any model is built. Violations are
// input errors: surfaced immediately, never retried.
func (p *Parser) Validate(f *File) error {
	if f.StartAge < 18 || f.StartAge > 110 {
		return fmt.Errorf("start age %d outside 18..110", f.StartAge)
	}
	if f.BirthMonth < 1 || f.BirthMonth > 12 {
		return fmt.Errorf("birth month %d outside 1..12", f.BirthMonth)
	}
	if f.EndAge < f.StartAge {
		return fmt.Errorf("end age %d before start age %d", f.EndAge, f.StartAge)
	}
	if f.Inflation.LessThan(decimal.NewFromInt(-10)) || f.Inflation.GreaterThan(decimal.NewFromInt(20)) {
		return fmt.Errorf("inflation must be between -10%% and 20%%, got %s%%", f.Inflation)
	}
	if f.Returns.LessThan(decimal.NewFromInt(-10)) || f.Returns.GreaterThan(decimal.NewFromInt(30)) {
		return fmt.Errorf("returns must be between -10%% and 30%%, got %s%%", f.Returns)
	}
	if f.AfterTax.Balance.IsNegative() {
		return fmt.Errorf("aftertax balance cannot be negative")
	}
	if f.AfterTax.Basis.IsNegative() || f.AfterTax.Basis.GreaterThan(f.AfterTax.Balance) {
		return fmt.Errorf("aftertax basis %s outside [0, balance %s]", f.AfterTax.Basis, f.AfterTax.Balance)
	}
	if f.AfterTax.Distributions.IsNegative() || f.AfterTax.Distributions.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("aftertax distributions must be a percentage in [0,100)")
	}
	if f.IRA.Balance.IsNegative() {
		return fmt.Errorf("ira balance cannot be negative")
	}
	if f.Roth.Balance.IsNegative() {
		return fmt.Errorf("roth balance cannot be negative")
	}
	for i, c := range f.Roth.Contributions {
		if c.Age < 0 || c.Age > f.StartAge {
			return fmt.Errorf("roth contribution %d: age %d outside 0..%d", i, c.Age, f.StartAge)
		}
		if c.Amount.IsNegative() {
			return fmt.Errorf("roth contribution %d: amount cannot be negative", i)
		}
	}
	for name, s := range f.Income {
		if err := p.validateStream(name, s); err != nil {
			return err
		}
	}
	for name, s := range f.Expense {
		if err := p.validateStream(name, s); err != nil {
			return err
		}
	}
	if f.ACA != nil {
		if f.ACA.Premium.IsNegative() || f.ACA.SLCSP.IsNegative() {
			return fmt.Errorf("aca premium and slcsp cannot be negative")
		}
		if f.ACA.Covered < 1 {
			return fmt.Errorf("aca covered people must be at least 1")
		}
	}
	switch f.Taxes.FilingStatus {
	case "MFJ", "Single":
	default:
		return fmt.Errorf("unsupported filing status %q", f.Taxes.FilingStatus)
	}
	return nil
}

func (p *Parser) validateStream(name string, s Stream) error {
	if s.Amount.IsNegative() {
		return fmt.Errorf("stream %s: amount cannot be negative", name)
	}
	if s.Age == "" {
		return fmt.Errorf("stream %s: age span is required", name)
	}
	if s.Ceiling.IsNegative() {
		return fmt.Errorf("stream %s: ceiling cannot be negative", name)
	}
	return nil
}
