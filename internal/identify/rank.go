package identify

import (
	"sort"
	"strings"

	"github.com/artseen/artseen/internal/model"
)

// maxRanked is the number of candidates kept after deduplication.
const maxRanked = 3

// RankCandidates scores, sorts, deduplicates and truncates the merged
// candidate set. Input candidates are not mutated; the returned copies carry
// the normalized confidence. The sort is stable so that equal-confidence
// candidates keep their input order.
func RankCandidates(candidates []model.Candidate, queryText, museumText string, rules []BonusRule) []model.Candidate {
	scored := make([]model.Candidate, len(candidates))
	for i, c := range candidates {
		scored[i] = c
		scored[i].Confidence = ConfidenceFromScore(Score(c, queryText, museumText, rules))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})

	seen := make(map[string]bool)
	unique := make([]model.Candidate, 0, maxRanked)
	for _, c := range scored {
		key := dedupKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
		if len(unique) >= maxRanked {
			break
		}
	}
	return unique
}

// dedupKey builds the composite identity of a candidate: same source, same
// case-folded title and artist means the same painting.
func dedupKey(c model.Candidate) string {
	return c.Source + "|" + fold(c.Title) + "|" + fold(c.Artist)
}

func fold(s *string) string {
	return strings.ToLower(strings.TrimSpace(deref(s)))
}
