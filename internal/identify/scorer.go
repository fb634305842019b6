package identify

import (
	"strings"

	"github.com/artseen/artseen/internal/model"
)

// BonusRule awards extra points to candidates from a source when the museum
// text mentions one of the trigger substrings. The seed rules cover the two
// museums whose catalogs are queried; the table is configuration, not code.
type BonusRule struct {
	Source   string   `yaml:"source"`
	Triggers []string `yaml:"triggers"`
	Bonus    int      `yaml:"bonus"`
}

// DefaultBonusRules returns the built-in museum affinity table.
func DefaultBonusRules() []BonusRule {
	return []BonusRule{
		{Source: model.SourceAIC, Triggers: []string{"chicago"}, Bonus: 2},
		{Source: model.SourceMet, Triggers: []string{"met", "metropolitan"}, Bonus: 2},
	}
}

// Score computes the relevance of a candidate against the query and museum
// context. One point per query token (3+ chars, counted per occurrence in the
// token list) found as a substring of the candidate's title/artist/style/medium,
// plus any matching museum affinity bonuses.
func Score(c model.Candidate, queryText, museumText string, rules []BonusRule) int {
	hay := strings.ToLower(strings.Join([]string{
		deref(c.Title), deref(c.Artist), deref(c.Style), deref(c.Medium),
	}, " "))

	score := 0
	for _, token := range strings.Fields(strings.ToLower(queryText)) {
		if len(token) < 3 {
			continue
		}
		if strings.Contains(hay, token) {
			score++
		}
	}

	museum := strings.ToLower(museumText)
	for _, rule := range rules {
		if rule.Source != c.Source {
			continue
		}
		for _, trigger := range rule.Triggers {
			if strings.Contains(museum, trigger) {
				score += rule.Bonus
				break
			}
		}
	}
	return score
}

// ConfidenceFromScore maps a raw score onto [0,1] with a fixed linear
// normalization (score 10 and above saturates at 1).
func ConfidenceFromScore(score int) float64 {
	c := float64(score) / 10
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
