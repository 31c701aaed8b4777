package runner

import (
	"time"

	"github.com/influxdata/tdigest"
)

// Verdict is the outcome of one scenario.
type Verdict struct {
	Label      string        `json:"label"`
	Alias      string        `json:"alias"`
	NRounds    int           `json:"nrounds"`
	BufSize    int           `json:"bufsize"`
	Passed     bool          `json:"passed"`
	Duration   time.Duration `json:"duration"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

// Report is the outcome of a whole sweep.
type Report struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Aggregation string        `json:"aggregation"`
	Passed      bool          `json:"passed"`
	Verdicts    []Verdict     `json:"verdicts"`
}

// Failed returns the verdicts that did not pass, in order.
func (r *Report) Failed() []Verdict {
	var failed []Verdict
	for _, v := range r.Verdicts {
		if !v.Passed {
			failed = append(failed, v)
		}
	}
	return failed
}

// Summary of the scenario durations in a report.
type Summary struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
}

// Summarize computes duration percentiles across all scenarios.
func (r *Report) Summarize() Summary {
	s := Summary{Count: len(r.Verdicts)}
	if s.Count == 0 {
		return s
	}

	td := tdigest.NewWithCompression(100)
	for i, v := range r.Verdicts {
		if i == 0 || v.Duration < s.Min {
			s.Min = v.Duration
		}
		if v.Duration > s.Max {
			s.Max = v.Duration
		}
		td.Add(float64(v.Duration), 1)
	}

	quantile := func(q float64) time.Duration {
		d := time.Duration(td.Quantile(q))
		// the digest interpolates, keep it within observed bounds
		if d < s.Min {
			return s.Min
		}
		if d > s.Max {
			return s.Max
		}
		return d
	}

	s.P50 = quantile(0.5)
	s.P90 = quantile(0.9)
	s.P99 = quantile(0.99)

	return s
}
