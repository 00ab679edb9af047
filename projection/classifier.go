/*
classifier.go - Transaction classification

PURPOSE:
  Maps a raw transaction's (type, category) pair onto one of the engine's
  base-year buckets. Classification is free-text keyword matching, which
  is inherently fragile, so it lives behind a small interface: the
  aggregation loop never inspects strings itself, and alternate policies
  (learned mappings, per-company keyword tables) can be swapped in.

MATCHING RULES (KeywordClassifier):
  type contains "receita"  -> revenue
  type contains "despesa"  -> category contains "fixo"/"fixa"       -> fixed
                              category contains "variavel"/"variável" -> variable
                              category contains "investimento"      -> investment
                              category contains "mkt"/"marketing"   -> marketing
                              anything else                         -> variable
  anything else            -> ignored

  All matching is case-insensitive.

SEE ALSO:
  - aggregate.go: The loop that consumes Bucket values
*/
package projection

import "strings"

// Bucket identifies which base-year series a transaction feeds.
type Bucket int

const (
	// BucketIgnore marks transactions that do not feed the base year.
	BucketIgnore Bucket = iota
	BucketRevenue
	BucketFixedExpense
	BucketVariableExpense
	BucketInvestment
	BucketMarketing
)

func (b Bucket) String() string {
	switch b {
	case BucketRevenue:
		return "revenue"
	case BucketFixedExpense:
		return "fixed_expense"
	case BucketVariableExpense:
		return "variable_expense"
	case BucketInvestment:
		return "investment"
	case BucketMarketing:
		return "marketing"
	default:
		return "ignore"
	}
}

// Classifier decides which bucket a transaction belongs to. It must be a
// pure function of its inputs.
type Classifier interface {
	Classify(txType, category string) Bucket
}

// KeywordClassifier is the default keyword-matching classification policy.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(txType, category string) Bucket {
	txType = strings.ToLower(txType)
	category = strings.ToLower(category)

	switch {
	case strings.Contains(txType, "receita"):
		return BucketRevenue
	case strings.Contains(txType, "despesa"):
		switch {
		case strings.Contains(category, "fixo"), strings.Contains(category, "fixa"):
			return BucketFixedExpense
		case strings.Contains(category, "variável"), strings.Contains(category, "variavel"):
			return BucketVariableExpense
		case strings.Contains(category, "investimento"):
			return BucketInvestment
		case strings.Contains(category, "mkt"), strings.Contains(category, "marketing"):
			return BucketMarketing
		default:
			// Unrecognized expense categories land in variable (catch-all).
			return BucketVariableExpense
		}
	default:
		return BucketIgnore
	}
}

// ResolveStream keyword-matches a revenue category against the configured
// stream names and returns the matching stream id. When nothing matches,
// the first active stream is the fallback; ok is false only when no
// active stream exists at all.
func ResolveStream(cfg Config, category string) (string, bool) {
	category = strings.ToLower(category)
	for _, stream := range cfg.ActiveStreams() {
		name := strings.ToLower(stream.Name)
		if name != "" && strings.Contains(category, name) {
			return stream.ID, true
		}
	}
	if first, ok := cfg.FirstActiveStream(); ok {
		return first.ID, true
	}
	return "", false
}
