// Package batch implements the partial-continue aggregation used by every
// multi-item ledger call: size bounds are checked fail-fast before any state
// is touched, then each item is attempted independently and failures are
// recorded per id without unwinding earlier successes.
package batch

import "github.com/lumenarts/mint-ledger/internal/domain"

// DefaultCeiling is the fixed upper bound on non-mint batch sizes
const DefaultCeiling = 30

// Failure records one item that could not be processed
type Failure struct {
	TokenNumber string `json:"token_number"`
	Reason      string `json:"reason"`
}

// Result separates a batch's ids into succeeded and failed groups, preserving
// call order within each group.
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Ok records a successfully processed id
func (r *Result) Ok(tokenNumber string) {
	r.Succeeded = append(r.Succeeded, tokenNumber)
}

// Fail records a failed id with its machine-readable reason
func (r *Result) Fail(tokenNumber string, err error) {
	r.Failed = append(r.Failed, Failure{TokenNumber: tokenNumber, Reason: domain.Code(err)})
}

// Clean reports whether every item succeeded
func (r *Result) Clean() bool {
	return len(r.Failed) == 0
}

// ValidateSize bounds-checks a batch before any item is touched
func ValidateSize(n, ceiling int) error {
	if n == 0 {
		return domain.ErrEmptyBatch
	}
	if n > ceiling {
		return domain.ErrBatchTooLarge
	}
	return nil
}

// Run applies fn to each id in order, aggregating per-item outcomes. A failed
// id never stops the iteration; whatever fn committed for earlier ids stays
// committed.
func Run(tokenNumbers []string, fn func(tokenNumber string) error) Result {
	var result Result
	for _, tokenNumber := range tokenNumbers {
		if err := fn(tokenNumber); err != nil {
			result.Fail(tokenNumber, err)
			continue
		}
		result.Ok(tokenNumber)
	}
	return result
}
