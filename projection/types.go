/*
Package projection provides the scenario-based financial projection engine.

PURPOSE:
  This package contains the domain types and algorithms that turn a prior
  year's actual monthly financials into three forward-looking annual
  scenarios (previsto, medio, maximo), subject to per-month manual
  overrides, configurable named revenue streams and marketing cost
  components, and reconciliation with real transaction history.

KEY CONCEPTS IN THIS FILE (types.go):
  - MonthlySeries: exactly 12 monetary values, index 0 = January
  - NullableMonthlySeries: same shape, each slot set or unset (overrides)
  - GrowthRates: the three annual percentages (minimo, medio, maximo)
  - Config: the ordered list of revenue streams and marketing components
  - BaseYear: last year's actuals + growth + manual overrides
  - Snapshot: the full derived output, persisted for fast reads

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Purity: Derivation is a pure function of Config + BaseYear (calc.go)
  3. Full replace: Config and BaseYear are replaced wholesale on update;
     anything omitted from an update payload is deleted, not merged
  4. Explicit recompute: the Snapshot is only written by Recompute; every
     mutating Engine call concludes with one so reads cannot go stale

USAGE:
  base := projection.BaseYear{...}
  snap := projection.Compute(cfg, base)
  fmt.Println(snap.Budget.Previsto[0])

SEE ALSO:
  - calc.go: Scenario derivation rules
  - engine.go: Orchestrating Engine (the access API)
  - store.go: Persistence interfaces
*/
package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SERIES - Twelve months of monetary values
// =============================================================================

// MonthsPerYear is the fixed length of every series.
const MonthsPerYear = 12

// MonthlySeries holds one value per month, index 0 = January.
type MonthlySeries [MonthsPerYear]decimal.Decimal

// NullableMonthlySeries holds an optional value per month. An unset slot
// means "no manual override for that month".
type NullableMonthlySeries [MonthsPerYear]decimal.NullDecimal

// SeriesFromFloats normalizes an arbitrary-length slice into a canonical
// series: extra months are truncated, missing months default to zero.
func SeriesFromFloats(values []float64) MonthlySeries {
	var s MonthlySeries
	for i := 0; i < MonthsPerYear && i < len(values); i++ {
		s[i] = decimal.NewFromFloat(values[i])
	}
	return s
}

// NullableSeriesFromFloats normalizes a slice of optional values. Nil
// entries stay unset; extra months are truncated.
func NullableSeriesFromFloats(values []*float64) NullableMonthlySeries {
	var s NullableMonthlySeries
	for i := 0; i < MonthsPerYear && i < len(values); i++ {
		if values[i] != nil {
			s[i] = decimal.NewNullDecimal(decimal.NewFromFloat(*values[i]))
		}
	}
	return s
}

// Floats converts a series to float64 values for the API boundary.
func (s MonthlySeries) Floats() []float64 {
	out := make([]float64, MonthsPerYear)
	for i, v := range s {
		out[i] = v.InexactFloat64()
	}
	return out
}

// Floats converts a nullable series to optional float64 values.
func (s NullableMonthlySeries) Floats() []*float64 {
	out := make([]*float64, MonthsPerYear)
	for i, v := range s {
		if v.Valid {
			f := v.Decimal.InexactFloat64()
			out[i] = &f
		}
	}
	return out
}

// IsZero reports whether every month is zero.
func (s MonthlySeries) IsZero() bool {
	for _, v := range s {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// Add returns the elementwise sum of two series.
func (s MonthlySeries) Add(other MonthlySeries) MonthlySeries {
	var out MonthlySeries
	for i := range s {
		out[i] = s[i].Add(other[i])
	}
	return out
}

// Sub returns the elementwise difference of two series.
func (s MonthlySeries) Sub(other MonthlySeries) MonthlySeries {
	var out MonthlySeries
	for i := range s {
		out[i] = s[i].Sub(other[i])
	}
	return out
}

// Scale multiplies every month by the given factor.
func (s MonthlySeries) Scale(factor decimal.Decimal) MonthlySeries {
	var out MonthlySeries
	for i := range s {
		out[i] = s[i].Mul(factor)
	}
	return out
}

// Equal reports elementwise equality.
func (s MonthlySeries) Equal(other MonthlySeries) bool {
	for i := range s {
		if !s[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Apply overlays the set slots of the override onto the series. Unset
// slots keep the derived value; set slots win unconditionally.
func (s MonthlySeries) Apply(override NullableMonthlySeries) MonthlySeries {
	out := s
	for i, ov := range override {
		if ov.Valid {
			out[i] = ov.Decimal
		}
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

type Scenario string

const (
	ScenarioPrevisto Scenario = "previsto" // conservative
	ScenarioMedio    Scenario = "medio"    // average
	ScenarioMaximo   Scenario = "maximo"   // upper bound
)

// Scenarios lists all scenarios in derivation order.
var Scenarios = []Scenario{ScenarioPrevisto, ScenarioMedio, ScenarioMaximo}

// ValidScenario reports whether s names a known scenario.
func ValidScenario(s Scenario) bool {
	return s == ScenarioPrevisto || s == ScenarioMedio || s == ScenarioMaximo
}

// ScenarioSeries is the output shape for every derived category.
type ScenarioSeries struct {
	Previsto MonthlySeries
	Medio    MonthlySeries
	Maximo   MonthlySeries
}

// For returns the series for the requested scenario.
func (ss ScenarioSeries) For(s Scenario) MonthlySeries {
	switch s {
	case ScenarioMedio:
		return ss.Medio
	case ScenarioMaximo:
		return ss.Maximo
	default:
		return ss.Previsto
	}
}

// ScenarioOverrides groups the three override series of one category.
type ScenarioOverrides struct {
	Previsto NullableMonthlySeries
	Medio    NullableMonthlySeries
	Maximo   NullableMonthlySeries
}

// For returns the override series for the requested scenario.
func (so ScenarioOverrides) For(s Scenario) NullableMonthlySeries {
	switch s {
	case ScenarioMedio:
		return so.Medio
	case ScenarioMaximo:
		return so.Maximo
	default:
		return so.Previsto
	}
}

// =============================================================================
// GROWTH RATES
// =============================================================================

// GrowthRates holds the three global annual growth percentages.
// A percentage p converts to the multiplicative factor 1 + p/100.
type GrowthRates struct {
	Minimo decimal.Decimal
	Medio  decimal.Decimal
	Maximo decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Factor converts the percentage for the given scenario into a
// multiplicative factor. Previsto maps to the minimo rate.
func (g GrowthRates) Factor(s Scenario) decimal.Decimal {
	var p decimal.Decimal
	switch s {
	case ScenarioMedio:
		p = g.Medio
	case ScenarioMaximo:
		p = g.Maximo
	default:
		p = g.Minimo
	}
	return decimal.NewFromInt(1).Add(p.Div(hundred))
}

// =============================================================================
// CONFIGURATION - Revenue streams and marketing components
// =============================================================================

// RevenueStream is a named, orderable, activatable partition of revenue.
// DisplayOrder matters for display only; Active=false removes the stream
// from totals but its historical series are retained, not deleted.
type RevenueStream struct {
	ID           string
	Name         string
	DisplayOrder int
	Active       bool
}

// MktComponent is a named, orderable, activatable partition of marketing
// spend, with the same activation semantics as RevenueStream.
type MktComponent struct {
	ID           string
	Name         string
	DisplayOrder int
	Active       bool
}

// Config is the full projection configuration.
type Config struct {
	RevenueStreams []RevenueStream
	MktComponents  []MktComponent
}

// ActiveStreams returns the streams included in totals.
func (c Config) ActiveStreams() []RevenueStream {
	var out []RevenueStream
	for _, s := range c.RevenueStreams {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// ActiveComponents returns the marketing components included in totals.
func (c Config) ActiveComponents() []MktComponent {
	var out []MktComponent
	for _, m := range c.MktComponents {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// FirstActiveStream returns the classification fallback stream.
func (c Config) FirstActiveStream() (RevenueStream, bool) {
	for _, s := range c.RevenueStreams {
		if s.Active {
			return s, true
		}
	}
	return RevenueStream{}, false
}

// FirstComponent returns the catch-all marketing component.
func (c Config) FirstComponent() (MktComponent, bool) {
	if len(c.MktComponents) == 0 {
		return MktComponent{}, false
	}
	return c.MktComponents[0], true
}

// DefaultConfig returns the configuration seeded on first run.
func DefaultConfig() Config {
	return Config{
		RevenueStreams: []RevenueStream{
			{ID: "vendas", Name: "Vendas", DisplayOrder: 1, Active: true},
			{ID: "servicos", Name: "Serviços", DisplayOrder: 2, Active: true},
			{ID: "assinaturas", Name: "Assinaturas", DisplayOrder: 3, Active: true},
		},
		MktComponents: []MktComponent{
			{ID: "trafego-pago", Name: "Tráfego Pago", DisplayOrder: 1, Active: true},
			{ID: "social", Name: "Social", DisplayOrder: 2, Active: true},
			{ID: "eventos", Name: "Eventos", DisplayOrder: 3, Active: true},
		},
	}
}

// =============================================================================
// BASE YEAR - Prior-year actuals, growth, and manual overrides
// =============================================================================

// BaseYearData holds last year's actual monthly figures. One entry should
// exist per configured stream/component id; missing ids are treated as
// all-zero, and ids absent from the current configuration are retained
// (orphaned) for later reactivation.
type BaseYearData struct {
	FixedExpenses    MonthlySeries
	VariableExpenses MonthlySeries
	Investments      MonthlySeries
	RevenueStreams   map[string]MonthlySeries
	MktComponents    map[string]MonthlySeries
}

// StreamSeries returns the prior-year series for a stream, or an all-zero
// series when none is stored.
func (b BaseYearData) StreamSeries(id string) MonthlySeries {
	return b.RevenueStreams[id]
}

// ComponentSeries returns the prior-year series for a component, or an
// all-zero series when none is stored.
func (b BaseYearData) ComponentSeries(id string) MonthlySeries {
	return b.MktComponents[id]
}

// ManualOverrides holds every per-month, per-scenario manual value. A set
// slot is authoritative and wins over any derived value for that month.
type ManualOverrides struct {
	FixedExpenses    ScenarioOverrides
	VariableExpenses ScenarioOverrides
	Investments      ScenarioOverrides
	Mkt              ScenarioOverrides
	Revenue          map[string]ScenarioOverrides
}

// StreamOverrides returns the overrides for a stream, empty when unset.
func (m ManualOverrides) StreamOverrides(id string) ScenarioOverrides {
	return m.Revenue[id]
}

// BaseYear is the full input state of the projection calculator.
type BaseYear struct {
	Growth    GrowthRates
	PrevYear  BaseYearData
	Overrides ManualOverrides
	UpdatedAt time.Time
}

// Normalize ensures the nested maps are non-nil so that full-replace
// persistence and calculation can range over them safely.
func (b *BaseYear) Normalize() {
	if b.PrevYear.RevenueStreams == nil {
		b.PrevYear.RevenueStreams = make(map[string]MonthlySeries)
	}
	if b.PrevYear.MktComponents == nil {
		b.PrevYear.MktComponents = make(map[string]MonthlySeries)
	}
	if b.Overrides.Revenue == nil {
		b.Overrides.Revenue = make(map[string]ScenarioOverrides)
	}
}

// =============================================================================
// SNAPSHOT - The persisted derived output
// =============================================================================

// Snapshot is the full computed output of one recompute: the growth rates
// and active configuration it was derived from plus a ScenarioSeries for
// every derived category. It is written only by Recompute and read by
// every accessor, so reads never trigger recomputation.
type Snapshot struct {
	Growth GrowthRates
	Config Config

	FixedExpenses    ScenarioSeries
	VariableExpenses ScenarioSeries
	Investments      ScenarioSeries

	// Per-stream detail for active streams, plus the active-only total.
	Revenue      map[string]ScenarioSeries
	RevenueTotal ScenarioSeries

	// Per-component detail for active components, plus the total.
	Mkt      map[string]ScenarioSeries
	MktTotal ScenarioSeries

	Budget ScenarioSeries
	Result ScenarioSeries

	UpdatedAt time.Time
}
