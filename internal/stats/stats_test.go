package stats_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	dbfs "github.com/jackgladowsky/tierjobs/db"
	"github.com/jackgladowsky/tierjobs/internal/cache"
	dbpkg "github.com/jackgladowsky/tierjobs/internal/db"
	"github.com/jackgladowsky/tierjobs/internal/repository/sqlite"
	"github.com/jackgladowsky/tierjobs/internal/stats"
	"github.com/jackgladowsky/tierjobs/pkg/models"
)

func setup(t *testing.T) (*sqlite.SQLiteRepo, *stats.Aggregator) {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	d.GetConn().SetMaxOpenConns(1)
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := sqlite.New(d)
	return repo, stats.NewAggregator(repo, repo, cache.NewMemory(), time.Hour, nil)
}

func seed(t *testing.T, repo *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()

	companies := []models.Company{
		{Slug: "openai", Name: "OpenAI", Domain: "openai.com", Tier: "S+", TierScore: 100, JobCount: 2},
		{Slug: "acme", Name: "Acme", Domain: "acme.com", Tier: "A", TierScore: 75, JobCount: 1},
	}
	for i := range companies {
		if _, err := repo.InsertCompany(ctx, &companies[i]); err != nil {
			t.Fatalf("insert company: %v", err)
		}
	}

	jobs := []models.Job{
		{JobID: "j1", CompanySlug: "openai", CompanyName: "OpenAI", Tier: "S+", TierScore: 100, Title: "ML Engineer", URL: "u", Level: "senior", JobType: "ml", ScrapedAt: 1000},
		{JobID: "j2", CompanySlug: "openai", CompanyName: "OpenAI", Tier: "S+", TierScore: 100, Title: "Research Engineer", URL: "u", Level: "intern", JobType: "ml", ScrapedAt: 2000},
		{JobID: "j3", CompanySlug: "acme", CompanyName: "Acme", Tier: "A", TierScore: 75, Title: "Backend Engineer", URL: "u", Level: "senior", JobType: "swe", ScrapedAt: 3000},
	}
	for i := range jobs {
		if _, err := repo.InsertJob(ctx, &jobs[i]); err != nil {
			t.Fatalf("insert job: %v", err)
		}
	}
}

func TestOverallStats(t *testing.T) {
	repo, agg := setup(t)
	seed(t, repo)
	ctx := context.Background()

	payload, err := agg.OverallStats(ctx)
	if err != nil {
		t.Fatalf("overall: %v", err)
	}

	var got stats.Overall
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TotalJobs != 3 || got.TotalCompanies != 2 {
		t.Fatalf("totals: %+v", got)
	}
	if got.ByTier["S+"] != 2 || got.ByTier["A"] != 1 {
		t.Fatalf("byTier: %+v", got.ByTier)
	}
	if got.ByLevel["senior"] != 2 || got.ByLevel["intern"] != 1 {
		t.Fatalf("byLevel: %+v", got.ByLevel)
	}
	if len(got.TopCompanies) != 2 || got.TopCompanies[0].Slug != "openai" {
		t.Fatalf("topCompanies: %+v", got.TopCompanies)
	}
	if got.UpdatedAt == 0 {
		t.Fatalf("missing updatedAt")
	}
}

func TestOverallStatsCached(t *testing.T) {
	repo, agg := setup(t)
	seed(t, repo)
	ctx := context.Background()

	first, err := agg.OverallStats(ctx)
	if err != nil {
		t.Fatalf("overall: %v", err)
	}

	// a write inside the TTL window must not change the served payload
	extra := models.Job{JobID: "j4", CompanySlug: "acme", CompanyName: "Acme", Tier: "A", TierScore: 75, Title: "SRE", URL: "u", Level: "mid", JobType: "swe", ScrapedAt: 4000}
	if _, err := repo.InsertJob(ctx, &extra); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second, err := agg.OverallStats(ctx)
	if err != nil {
		t.Fatalf("overall again: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("cached payload changed:\n%s\n%s", first, second)
	}

	refreshed, err := agg.RefreshOverall(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	var got stats.Overall
	if err := json.Unmarshal(refreshed, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TotalJobs != 4 {
		t.Fatalf("refresh did not recompute: %+v", got)
	}
}

func TestTierStats(t *testing.T) {
	repo, agg := setup(t)
	seed(t, repo)
	ctx := context.Background()

	got, err := agg.TierStats(ctx, "S+")
	if err != nil {
		t.Fatalf("tier stats: %v", err)
	}
	if got.Tier != "S+" || got.TotalJobs != 2 {
		t.Fatalf("tier totals: %+v", got)
	}
	if got.ByLevel["senior"] != 1 || got.ByLevel["intern"] != 1 {
		t.Fatalf("tier byLevel: %+v", got.ByLevel)
	}
	if len(got.Companies) != 1 || got.Companies[0].Slug != "openai" {
		t.Fatalf("tier companies: %+v", got.Companies)
	}

	empty, err := agg.TierStats(ctx, "B-")
	if err != nil {
		t.Fatalf("empty tier: %v", err)
	}
	if empty.TotalJobs != 0 || len(empty.Companies) != 0 {
		t.Fatalf("empty tier must be empty: %+v", empty)
	}
}

func TestLevelStats(t *testing.T) {
	repo, agg := setup(t)
	seed(t, repo)
	ctx := context.Background()

	got, err := agg.LevelStats(ctx)
	if err != nil {
		t.Fatalf("level stats: %v", err)
	}
	if got.Total != 3 {
		t.Fatalf("total: %+v", got)
	}
	// progression order: intern before senior
	if len(got.Levels) != 2 || got.Levels[0].Level != "intern" || got.Levels[1].Level != "senior" {
		t.Fatalf("level order: %+v", got.Levels)
	}
}
