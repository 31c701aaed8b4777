package runner

import "fmt"

const (
	AGGREGATION_ALL  = "all"
	AGGREGATION_LAST = "last"
)

// Reducer folds the ordered per-scenario verdicts into the suite verdict.
// An empty sweep never passes, for any reducer.
type Reducer func([]Verdict) bool

// All passes only if every scenario passed.
func All(verdicts []Verdict) bool {
	if len(verdicts) == 0 {
		return false
	}
	for _, v := range verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}

// Last passes if the last scenario executed passed, ignoring all
// earlier ones. Kept for compatibility with the older CI driver.
func Last(verdicts []Verdict) bool {
	if len(verdicts) == 0 {
		return false
	}
	return verdicts[len(verdicts)-1].Passed
}

// ReducerFor returns the reducer for an aggregation name.
func ReducerFor(aggregation string) (Reducer, error) {
	switch aggregation {
	case AGGREGATION_ALL, "":
		return All, nil
	case AGGREGATION_LAST:
		return Last, nil
	default:
		return nil, fmt.Errorf("unknown aggregation %q (expected %s or %s)", aggregation, AGGREGATION_ALL, AGGREGATION_LAST)
	}
}
