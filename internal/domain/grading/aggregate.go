package grading

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// AverageScore returns sum(score)/count over the results, rounded once to
// the nearest float64. The sum is exact, so large scores cannot overflow.
// Returns ErrNoResults for an empty slice.
func AverageScore(results []Result) (float64, error) {
	if len(results) == 0 {
		return 0, ErrNoResults
	}

	total := new(big.Int)
	for _, r := range results {
		total.Add(total, big.NewInt(int64(r.Score)))
	}

	avg, _ := new(big.Rat).SetFrac(total, big.NewInt(int64(len(results)))).Float64()
	return avg, nil
}

// HighestScorer scans the results in order and keeps the first one that is
// strictly greater than every score seen before it, starting from a threshold
// of 0. Ties therefore go to the earliest result, and scores <= 0 never win.
// Returns ErrNoScorer when nothing beats the threshold.
func HighestScorer(results []ScoredResult) (ScoredResult, error) {
	highest := 0
	found := -1

	for i, r := range results {
		if r.Result.Score > highest {
			highest = r.Result.Score
			found = i
		}
	}

	if found < 0 {
		return ScoredResult{}, ErrNoScorer
	}
	return results[found], nil
}

// AverageMessage renders the outcome of AverageScore for a test.
func AverageMessage(testID int64, avg float64) string {
	return fmt.Sprintf("Average score for test ID %d is %s", testID, FormatScore(avg))
}

// FormatScore renders a float with the shortest digits that round-trip.
// Decimal exponents from -4 to 15 use positional notation and always keep a
// fractional part, so 20 renders as "20.0". Anything outside that range uses
// exponent notation such as "1e+16" or "1e-05".
func FormatScore(v float64) string {
	e := strconv.FormatFloat(v, 'e', -1, 64)
	if v != 0 {
		exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return e
		}
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
