package evaluation

import (
	"sort"

	"github.com/ricesearch/term-eval/internal/candidates"
)

// RankTerm orders entries by descending score and returns the ranks of the
// entries accepted by isCorrect, in that order. Ties share the best rank of
// their group: rank = 1 + number of entries with a strictly higher score.
// Equal scores keep their input order.
func RankTerm(entries []candidates.Entry, isCorrect func(target string) bool) []int {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]candidates.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var ranks []int
	rank := 0
	for i, e := range sorted {
		if i == 0 || e.Score != sorted[i-1].Score {
			rank = i + 1
		}
		if isCorrect(e.Target) {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}

// Rank computes the correct-candidate ranks for every source term in results.
func Rank(results CandidateSet, judge Judge) Ranks {
	out := make(Ranks)
	for _, source := range results.Sources() {
		ranks := RankTerm(results.Candidates(source), func(target string) bool {
			return judge.IsCorrect(source, target)
		})
		if len(ranks) > 0 {
			out[source] = ranks
		}
	}
	return out
}

// Best returns the smallest rank in ranks, or 0 when empty.
func Best(ranks []int) int {
	best := 0
	for _, r := range ranks {
		if best == 0 || r < best {
			best = r
		}
	}
	return best
}
