package evaluation

import (
	"fmt"
	"sort"

	apperrors "github.com/ricesearch/term-eval/internal/pkg/errors"
)

// Accuracy is the fraction of gold terms with a correct candidate at rank 1.
func Accuracy(ranks Ranks, totalTerms int) float64 {
	return PrecisionAt(ranks, totalTerms, 1)
}

// PrecisionAt is the fraction of gold terms with a correct candidate at
// rank <= cutoff.
func PrecisionAt(ranks Ranks, totalTerms, cutoff int) float64 {
	if totalTerms == 0 {
		return 0
	}
	hits := 0
	for _, rs := range ranks {
		if b := Best(rs); b > 0 && b <= cutoff {
			hits++
		}
	}
	return float64(hits) / float64(totalTerms)
}

// MaxPrecision averages the reciprocal of each term's best correct rank over
// all gold terms. Terms without a correct candidate contribute 0.
// This is the "MAP" of the report: the best candidate only, not average
// precision over every correct rank.
func MaxPrecision(ranks Ranks, totalTerms int) float64 {
	if totalTerms == 0 {
		return 0
	}

	// Summation order is fixed so repeated runs are bit-identical.
	terms := make([]string, 0, len(ranks))
	for term := range ranks {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	sum := 0.0
	for _, term := range terms {
		if b := Best(ranks[term]); b > 0 {
			sum += 1.0 / float64(b)
		}
	}
	return sum / float64(totalTerms)
}

// Coverage is the fraction of gold terms that received any candidate.
func Coverage(termsWithCandidates, totalTerms int) float64 {
	if totalTerms == 0 {
		return 0
	}
	return float64(termsWithCandidates) / float64(totalTerms)
}

// ValidateCutoffs checks that cutoffs are positive and strictly ascending.
func ValidateCutoffs(cutoffs []int) error {
	if len(cutoffs) == 0 {
		return apperrors.ValidationError("at least one precision cutoff is required")
	}
	for i, c := range cutoffs {
		if c < 1 {
			return apperrors.ValidationError(fmt.Sprintf("cutoff %d must be positive", c))
		}
		if i > 0 && c <= cutoffs[i-1] {
			return apperrors.ValidationError(fmt.Sprintf("cutoffs must be strictly ascending: %d after %d", c, cutoffs[i-1]))
		}
	}
	return nil
}

// Aggregate reduces per-term ranks into a Report. totalTerms is the size of
// the gold standard and must be positive.
func Aggregate(ranks Ranks, totalTerms, termsWithCandidates int, cutoffs []int) (*Report, error) {
	if totalTerms <= 0 {
		return nil, apperrors.EmptyGoldError()
	}
	if err := ValidateCutoffs(cutoffs); err != nil {
		return nil, err
	}

	report := &Report{
		MAP:                 MaxPrecision(ranks, totalTerms),
		Accuracy:            Accuracy(ranks, totalTerms),
		Precision:           make([]CutoffPrecision, 0, len(cutoffs)),
		Coverage:            Coverage(termsWithCandidates, totalTerms),
		TotalTerms:          totalTerms,
		TermsWithCandidates: termsWithCandidates,
		TermsFound:          len(ranks),
	}
	for _, c := range cutoffs {
		report.Precision = append(report.Precision, CutoffPrecision{
			Cutoff: c,
			Value:  PrecisionAt(ranks, totalTerms, c),
		})
	}

	return report, nil
}
