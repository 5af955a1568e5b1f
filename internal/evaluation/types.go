package evaluation

import "github.com/ricesearch/term-eval/internal/candidates"

// DefaultCutoffs are the rank cutoffs reported as precision@C.
var DefaultCutoffs = []int{5, 10, 15, 20, 30, 100, 200, 500, 1000}

// Ranks maps a source term to the ranks of its correct candidates, in
// descending score order. Terms without a correct candidate are absent.
type Ranks map[string][]int

// Judge decides whether a candidate translation is correct.
type Judge interface {
	IsCorrect(source, target string) bool
	Len() int
}

// CandidateSet exposes the candidates emitted for each source term.
type CandidateSet interface {
	Sources() []string
	Candidates(source string) []candidates.Entry
	Len() int
}

// CutoffPrecision is precision at a single rank cutoff.
type CutoffPrecision struct {
	Cutoff int     `json:"cutoff" yaml:"cutoff"`
	Value  float64 `json:"value" yaml:"value"`
}

// Report holds the aggregated metrics of one evaluation run.
// Every fraction uses TotalTerms as its denominator.
type Report struct {
	MAP       float64           `json:"map" yaml:"map"`
	Accuracy  float64           `json:"accuracy" yaml:"accuracy"`
	Precision []CutoffPrecision `json:"precision" yaml:"precision"`
	Coverage  float64           `json:"coverage" yaml:"coverage"`

	TotalTerms          int `json:"total_terms" yaml:"total_terms"`
	TermsWithCandidates int `json:"terms_with_candidates" yaml:"terms_with_candidates"`
	TermsFound          int `json:"terms_found" yaml:"terms_found"`
}

// PrecisionAt returns precision at cutoff c, if it was computed.
func (r *Report) PrecisionAt(c int) (float64, bool) {
	for _, p := range r.Precision {
		if p.Cutoff == c {
			return p.Value, true
		}
	}
	return 0, false
}
