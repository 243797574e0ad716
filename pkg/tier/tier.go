// Package tier defines the closed ranking vocabularies shared by queries and
// stats: the ordered company tier scale, the seniority level order, and the
// canonical sort comparison used everywhere jobs are ranked.
package tier

import (
	"fmt"
	"strings"
)

// Tiers in rank order, most prestigious first.
var Tiers = []string{"S+", "S", "S-", "A++", "A+", "A", "A-", "B+", "B", "B-"}

var tierScores = map[string]int{
	"S+":  100,
	"S":   95,
	"S-":  90,
	"A++": 85,
	"A+":  80,
	"A":   75,
	"A-":  70,
	"B+":  65,
	"B":   60,
	"B-":  55,
}

// FeaturedTiers is the allow-list used by the featured jobs listing.
var FeaturedTiers = []string{"S+", "S", "S-", "A++", "A+"}

// Levels in display order. Not alphabetical: unknown always sorts last.
var Levels = []string{
	"intern", "new_grad", "junior", "mid", "senior",
	"staff", "principal", "director", "vp", "exec", "unknown",
}

// JobTypes is unordered; it only participates in equality filters.
var JobTypes = []string{"swe", "mle", "ds", "quant", "pm", "design", "devops", "security", "research", "other"}

// Score returns the fixed numeric score for a tier label, or 0 for labels
// outside the vocabulary. Callers that omit an explicit tier_score fall back
// to this value.
func Score(tier string) int {
	return tierScores[tier]
}

// Valid reports whether the label belongs to the tier vocabulary.
func Valid(tier string) bool {
	_, ok := tierScores[tier]
	return ok
}

// LevelRank returns the display-order rank of a level, with anything outside
// the vocabulary ranked after unknown.
func LevelRank(level string) int {
	for i, l := range Levels {
		if l == level {
			return i
		}
	}
	return len(Levels)
}

// LevelRankCase builds the SQL CASE expression that orders a level column by
// display rank. The column name is interpolated, so it must be a literal
// identifier, never user input.
func LevelRankCase(column string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", column)
	for i, l := range Levels {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", l, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(Levels))
	return b.String()
}

// Compare is the canonical job ordering: tier_score descending, then
// scraped_at descending, then job_id ascending as a deterministic tiebreak.
// It returns a negative value when a sorts before b.
func Compare(aScore int, aScrapedAt int64, aJobID string, bScore int, bScrapedAt int64, bJobID string) int {
	if aScore != bScore {
		if aScore > bScore {
			return -1
		}
		return 1
	}
	if aScrapedAt != bScrapedAt {
		if aScrapedAt > bScrapedAt {
			return -1
		}
		return 1
	}
	return strings.Compare(aJobID, bJobID)
}
