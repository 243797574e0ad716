package tier_test

import (
	"strings"
	"testing"

	"github.com/jackgladowsky/tierjobs/pkg/tier"
)

func TestScores(t *testing.T) {
	want := map[string]int{
		"S+": 100, "S": 95, "S-": 90, "A++": 85, "A+": 80,
		"A": 75, "A-": 70, "B+": 65, "B": 60, "B-": 55,
	}
	for label, score := range want {
		if got := tier.Score(label); got != score {
			t.Errorf("Score(%q) = %d, want %d", label, got, score)
		}
		if !tier.Valid(label) {
			t.Errorf("Valid(%q) = false", label)
		}
	}
	if tier.Score("C") != 0 {
		t.Errorf("unknown tier should score 0")
	}
	if tier.Valid("C") {
		t.Errorf("Valid(\"C\") = true")
	}
}

func TestTiersOrderedByScore(t *testing.T) {
	for i := 1; i < len(tier.Tiers); i++ {
		if tier.Score(tier.Tiers[i-1]) <= tier.Score(tier.Tiers[i]) {
			t.Errorf("tier order broken at %q >= %q", tier.Tiers[i-1], tier.Tiers[i])
		}
	}
}

func TestLevelRank(t *testing.T) {
	if tier.LevelRank("intern") != 0 {
		t.Errorf("intern should rank first")
	}
	if tier.LevelRank("exec") >= tier.LevelRank("unknown") {
		t.Errorf("unknown should rank after exec")
	}
	if tier.LevelRank("nonsense") <= tier.LevelRank("unknown") {
		t.Errorf("out-of-vocabulary level should rank last")
	}
	// defined order, not alphabetical
	if tier.LevelRank("new_grad") >= tier.LevelRank("junior") {
		t.Errorf("new_grad must sort before junior")
	}
	if tier.LevelRank("staff") <= tier.LevelRank("senior") {
		t.Errorf("staff must sort after senior")
	}
}

func TestLevelRankCase(t *testing.T) {
	expr := tier.LevelRankCase("level")
	if !strings.HasPrefix(expr, "CASE level WHEN 'intern' THEN 0") {
		t.Fatalf("unexpected CASE prefix: %s", expr)
	}
	if !strings.Contains(expr, "WHEN 'unknown' THEN 10") {
		t.Fatalf("unknown missing from CASE: %s", expr)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name                 string
		aScore               int
		aAt                  int64
		aID                  string
		bScore               int
		bAt                  int64
		bID                  string
		wantFirst            bool // a sorts before b
	}{
		{"higher score first", 100, 0, "x", 95, 999, "a", true},
		{"recency breaks score tie", 100, 2000, "x", 100, 1000, "a", true},
		{"job id breaks full tie", 100, 1000, "a", 100, 1000, "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tier.Compare(tt.aScore, tt.aAt, tt.aID, tt.bScore, tt.bAt, tt.bID)
			if (got < 0) != tt.wantFirst {
				t.Errorf("Compare = %d, wantFirst=%v", got, tt.wantFirst)
			}
			// antisymmetry
			rev := tier.Compare(tt.bScore, tt.bAt, tt.bID, tt.aScore, tt.aAt, tt.aID)
			if (got < 0) == (rev < 0) {
				t.Errorf("Compare not antisymmetric: %d vs %d", got, rev)
			}
		})
	}
}
