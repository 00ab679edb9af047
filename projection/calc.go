/*
calc.go - Pure scenario derivation

PURPOSE:
  Compute turns {Config, BaseYear} into a Snapshot. It touches no store
  and has no side effects, so two calls with the same inputs produce
  identical output. The Engine persists the result atomically.

DERIVATION RULES (per category):
  Fixed expenses     Quarterly escalation chain seeded from prior-year
                     December, NOT the growth rates. Overrides cascade:
                     each scenario seeds the next from its post-override
                     series.
  Variable expenses  Prior-year series scaled by the growth factor per
  Investments        scenario; overrides applied independently.
  Revenue            As variable, per active stream, with per-stream
                     overrides, then summed across active streams.
  Marketing          Active-component prior-year sum. Previsto takes NO
                     growth factor (only the override); medio and maximo
                     scale the sum before their overrides. The previsto
                     asymmetry is intentional engine behavior, pinned by
                     test.
  Budget             fixed + variable + investments + mktTotal
  Result             revenueTotal - budget

INVARIANTS:
  - budget and result identities hold elementwise for every scenario
  - totals only sum over currently-active streams/components
  - a set override slot equals the effective value exactly

SEE ALSO:
  - types.go: Input/output shapes
  - engine.go: recompute orchestration and snapshot persistence
*/
package projection

import "github.com/shopspring/decimal"

// quarterlyEscalation is the fixed-expense escalation rate per quarter,
// also applied between scenarios and to the December seed.
var quarterlyEscalation = decimal.RequireFromString("1.1")

// Compute derives the full projection snapshot from the configuration and
// base-year state. It is a pure function; UpdatedAt is left to the caller.
func Compute(cfg Config, base BaseYear) Snapshot {
	base.Normalize()

	snap := Snapshot{
		Growth:  base.Growth,
		Config:  cfg,
		Revenue: make(map[string]ScenarioSeries),
		Mkt:     make(map[string]ScenarioSeries),
	}

	snap.FixedExpenses = fixedExpenseScenarios(base.PrevYear.FixedExpenses, base.Overrides.FixedExpenses)
	snap.VariableExpenses = growthScenarios(base.PrevYear.VariableExpenses, base.Growth, base.Overrides.VariableExpenses)
	snap.Investments = growthScenarios(base.PrevYear.Investments, base.Growth, base.Overrides.Investments)

	for _, stream := range cfg.ActiveStreams() {
		series := growthScenarios(
			base.PrevYear.StreamSeries(stream.ID),
			base.Growth,
			base.Overrides.StreamOverrides(stream.ID),
		)
		snap.Revenue[stream.ID] = series
		snap.RevenueTotal = addScenarios(snap.RevenueTotal, series)
	}

	snap.Mkt, snap.MktTotal = mktScenarios(cfg, base)

	snap.Budget = addScenarios(
		addScenarios(snap.FixedExpenses, snap.VariableExpenses),
		addScenarios(snap.Investments, snap.MktTotal),
	)
	snap.Result = subScenarios(snap.RevenueTotal, snap.Budget)

	return snap
}

// fixedExpenseScenarios builds the quarterly escalation chain.
//
// Seed = December of the prior year x 1.10. Months 0-2 = seed, then each
// quarter multiplies by 1.10 again. That raw series is the auto previsto;
// the previsto override yields the effective previsto, which seeds the
// auto medio (x1.10), and so on to maximo. The cascade runs through the
// post-override series, never the raw auto one.
func fixedExpenseScenarios(prevYear MonthlySeries, overrides ScenarioOverrides) ScenarioSeries {
	seed := prevYear[MonthsPerYear-1].Mul(quarterlyEscalation)

	var auto MonthlySeries
	value := seed
	for month := 0; month < MonthsPerYear; month++ {
		if month > 0 && month%3 == 0 {
			value = value.Mul(quarterlyEscalation)
		}
		auto[month] = value
	}

	previsto := auto.Apply(overrides.Previsto)
	medio := previsto.Scale(quarterlyEscalation).Apply(overrides.Medio)
	maximo := medio.Scale(quarterlyEscalation).Apply(overrides.Maximo)

	return ScenarioSeries{Previsto: previsto, Medio: medio, Maximo: maximo}
}

// growthScenarios scales the prior-year series by the growth factor of
// each scenario independently, then applies that scenario's override.
// There is no cascading between scenarios.
func growthScenarios(prevYear MonthlySeries, growth GrowthRates, overrides ScenarioOverrides) ScenarioSeries {
	var out ScenarioSeries
	out.Previsto = prevYear.Scale(growth.Factor(ScenarioPrevisto)).Apply(overrides.Previsto)
	out.Medio = prevYear.Scale(growth.Factor(ScenarioMedio)).Apply(overrides.Medio)
	out.Maximo = prevYear.Scale(growth.Factor(ScenarioMaximo)).Apply(overrides.Maximo)
	return out
}

// mktScenarios derives per-component detail and the marketing totals.
//
// The base sum is the prior-year values summed across active components
// with no growth applied. Previsto applies the override directly to that
// raw sum; medio and maximo scale it by their growth factors first. The
// per-component detail mirrors the pre-override totals rule, since no
// component-level overrides exist.
func mktScenarios(cfg Config, base BaseYear) (map[string]ScenarioSeries, ScenarioSeries) {
	detail := make(map[string]ScenarioSeries)

	var baseSum MonthlySeries
	medioFactor := base.Growth.Factor(ScenarioMedio)
	maximoFactor := base.Growth.Factor(ScenarioMaximo)

	for _, component := range cfg.ActiveComponents() {
		series := base.PrevYear.ComponentSeries(component.ID)
		detail[component.ID] = ScenarioSeries{
			Previsto: series,
			Medio:    series.Scale(medioFactor),
			Maximo:   series.Scale(maximoFactor),
		}
		baseSum = baseSum.Add(series)
	}

	total := ScenarioSeries{
		Previsto: baseSum.Apply(base.Overrides.Mkt.Previsto),
		Medio:    baseSum.Scale(medioFactor).Apply(base.Overrides.Mkt.Medio),
		Maximo:   baseSum.Scale(maximoFactor).Apply(base.Overrides.Mkt.Maximo),
	}

	return detail, total
}

func addScenarios(a, b ScenarioSeries) ScenarioSeries {
	return ScenarioSeries{
		Previsto: a.Previsto.Add(b.Previsto),
		Medio:    a.Medio.Add(b.Medio),
		Maximo:   a.Maximo.Add(b.Maximo),
	}
}

func subScenarios(a, b ScenarioSeries) ScenarioSeries {
	return ScenarioSeries{
		Previsto: a.Previsto.Sub(b.Previsto),
		Medio:    a.Medio.Sub(b.Medio),
		Maximo:   a.Maximo.Sub(b.Maximo),
	}
}
