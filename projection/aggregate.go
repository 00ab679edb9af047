/*
aggregate.go - Base-year rebuild from transaction history

PURPOSE:
  Classifies a year's worth of raw financial transactions into the
  base-year monthly buckets. The transaction list comes from the
  surrounding application (the transaction collaborator); the engine only
  consumes it.

ALGORITHM:
  1. Discard records outside the target year
  2. Revenue -> resolve a stream id by keyword match (fallback: first
     active stream), add into that stream's month bucket
  3. Expenses -> fixed / variable / investment / first marketing
     component by category keywords, variable as catch-all
  4. Merge the buckets into the existing base, replacing only the
     touched series and preserving the rest

  The Engine wraps this with ReplaceBase + Recompute, so a rebuild is
  never a pure aggregation step at the API boundary.

SEE ALSO:
  - classifier.go: The bucket decision
  - engine.go: RebuildBaseFromTransactions
*/
package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - Raw record from the collaborator
// =============================================================================

// Transaction is a raw financial record as the surrounding application
// stores it: a date, a signed type string such as "receita"/"despesa", a
// free-text category, and an amount.
type Transaction struct {
	ID          string
	OccurredAt  time.Time
	Type        string
	Category    string
	Description string
	Amount      decimal.Decimal
}

// LastCalendarYear is the default target year for a rebuild.
func LastCalendarYear(now time.Time) int {
	return now.Year() - 1
}

// =============================================================================
// AGGREGATION
// =============================================================================

// yearBuckets accumulates the monthly sums of one rebuild pass and tracks
// which series received at least one transaction.
type yearBuckets struct {
	fixed, variable, investments MonthlySeries
	revenue                      map[string]MonthlySeries
	mkt                          map[string]MonthlySeries

	fixedTouched, variableTouched, investmentsTouched bool
}

// AggregateYear classifies every transaction of the target year into
// monthly buckets and merges them into a copy of the given base data.
// Only the touched series are replaced; everything else is preserved.
// Transactions the classifier ignores and records outside the target
// year contribute nothing.
func AggregateYear(cfg Config, prev BaseYearData, txs []Transaction, year int, classifier Classifier) BaseYearData {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}

	buckets := yearBuckets{
		revenue: make(map[string]MonthlySeries),
		mkt:     make(map[string]MonthlySeries),
	}

	for _, tx := range txs {
		if tx.OccurredAt.Year() != year {
			continue
		}
		month := int(tx.OccurredAt.Month()) - 1
		if month < 0 || month >= MonthsPerYear {
			continue
		}

		switch classifier.Classify(tx.Type, tx.Category) {
		case BucketRevenue:
			streamID, ok := ResolveStream(cfg, tx.Category)
			if !ok {
				continue
			}
			series := buckets.revenue[streamID]
			series[month] = series[month].Add(tx.Amount)
			buckets.revenue[streamID] = series
		case BucketFixedExpense:
			buckets.fixed[month] = buckets.fixed[month].Add(tx.Amount)
			buckets.fixedTouched = true
		case BucketVariableExpense:
			buckets.variable[month] = buckets.variable[month].Add(tx.Amount)
			buckets.variableTouched = true
		case BucketInvestment:
			buckets.investments[month] = buckets.investments[month].Add(tx.Amount)
			buckets.investmentsTouched = true
		case BucketMarketing:
			component, ok := cfg.FirstComponent()
			if !ok {
				continue
			}
			series := buckets.mkt[component.ID]
			series[month] = series[month].Add(tx.Amount)
			buckets.mkt[component.ID] = series
		}
	}

	return mergeBuckets(prev, buckets)
}

func mergeBuckets(prev BaseYearData, buckets yearBuckets) BaseYearData {
	next := BaseYearData{
		FixedExpenses:    prev.FixedExpenses,
		VariableExpenses: prev.VariableExpenses,
		Investments:      prev.Investments,
		RevenueStreams:   make(map[string]MonthlySeries, len(prev.RevenueStreams)),
		MktComponents:    make(map[string]MonthlySeries, len(prev.MktComponents)),
	}
	for id, series := range prev.RevenueStreams {
		next.RevenueStreams[id] = series
	}
	for id, series := range prev.MktComponents {
		next.MktComponents[id] = series
	}

	if buckets.fixedTouched {
		next.FixedExpenses = buckets.fixed
	}
	if buckets.variableTouched {
		next.VariableExpenses = buckets.variable
	}
	if buckets.investmentsTouched {
		next.Investments = buckets.investments
	}
	for id, series := range buckets.revenue {
		next.RevenueStreams[id] = series
	}
	for id, series := range buckets.mkt {
		next.MktComponents[id] = series
	}

	return next
}
