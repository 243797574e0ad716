// Package stats aggregates catalog counts for the read-only stats endpoints.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackgladowsky/tierjobs/internal/cache"
	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
)

const (
	overallCacheKey = "stats:overall"
	topCompanyCount = 10
)

// DefaultTTL is how long the overall snapshot stays cached.
const DefaultTTL = time.Hour

// CompanySummary is the trimmed company shape embedded in stats payloads.
type CompanySummary struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	JobCount int64  `json:"job_count"`
}

// Overall is the full-catalog snapshot served by GET /api/stats.
type Overall struct {
	TotalJobs      int64            `json:"totalJobs"`
	TotalCompanies int64            `json:"totalCompanies"`
	ByTier         map[string]int64 `json:"byTier"`
	ByLevel        map[string]int64 `json:"byLevel"`
	TopCompanies   []CompanySummary `json:"topCompanies"`
	UpdatedAt      int64            `json:"updatedAt"`
}

// TierBreakdown is the per-tier drill-down.
type TierBreakdown struct {
	Tier      string           `json:"tier"`
	TotalJobs int64            `json:"totalJobs"`
	ByLevel   map[string]int64 `json:"byLevel"`
	Companies []CompanySummary `json:"companies"`
}

// LevelBreakdown lists job counts per level in career-progression order.
type LevelBreakdown struct {
	Levels []repository.LevelCount `json:"levels"`
	Total  int64                   `json:"total"`
}

// Aggregator computes stats payloads, keeping the overall snapshot behind a
// TTL cache.
type Aggregator struct {
	jobs      repository.JobRepo
	companies repository.CompanyRepo
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

func NewAggregator(jobs repository.JobRepo, companies repository.CompanyRepo, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Aggregator {
	if c == nil {
		c = cache.NewMemory()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{jobs: jobs, companies: companies, cache: c, ttl: ttl, logger: logger}
}

// OverallStats returns the overall snapshot as marshaled JSON. A cache hit
// returns the stored bytes as-is, so the payload stays stable for the whole
// TTL window.
func (a *Aggregator) OverallStats(ctx context.Context) ([]byte, error) {
	cached, err := a.cache.Get(ctx, overallCacheKey)
	if err != nil {
		a.logger.Error("stats cache read", "key", overallCacheKey, "err", err)
	}
	if cached != nil {
		return cached, nil
	}
	return a.RefreshOverall(ctx)
}

// RefreshOverall recomputes the overall snapshot and replaces the cached copy.
func (a *Aggregator) RefreshOverall(ctx context.Context) ([]byte, error) {
	snapshot, err := a.computeOverall(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}

	if err := a.cache.Set(ctx, overallCacheKey, payload, a.ttl); err != nil {
		a.logger.Error("stats cache write", "key", overallCacheKey, "err", err)
	}
	return payload, nil
}

func (a *Aggregator) computeOverall(ctx context.Context) (*Overall, error) {
	totalJobs, err := a.jobs.CountJobs(ctx, repository.JobQuery{})
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	totalCompanies, err := a.companies.CountCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	tierCounts, err := a.jobs.GroupJobsByTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("group by tier: %w", err)
	}
	levelCounts, err := a.jobs.GroupJobsByLevel(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("group by level: %w", err)
	}
	top, err := a.companies.TopCompaniesByJobCount(ctx, topCompanyCount)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}

	byTier := make(map[string]int64, len(tierCounts))
	for _, tc := range tierCounts {
		byTier[tc.Tier] = tc.Count
	}
	byLevel := make(map[string]int64, len(levelCounts))
	for _, lc := range levelCounts {
		byLevel[lc.Level] = lc.Count
	}

	return &Overall{
		TotalJobs:      totalJobs,
		TotalCompanies: totalCompanies,
		ByTier:         byTier,
		ByLevel:        byLevel,
		TopCompanies:   summarize(top),
		UpdatedAt:      time.Now().UnixMilli(),
	}, nil
}

// TierStats drills into a single tier. Not cached.
func (a *Aggregator) TierStats(ctx context.Context, tier string) (*TierBreakdown, error) {
	totalJobs, err := a.jobs.CountJobs(ctx, repository.JobQuery{Tier: tier})
	if err != nil {
		return nil, fmt.Errorf("count tier jobs: %w", err)
	}
	levelCounts, err := a.jobs.GroupJobsByLevel(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("group tier by level: %w", err)
	}
	companies, err := a.companies.ListCompanies(ctx, tier, 0)
	if err != nil {
		return nil, fmt.Errorf("list tier companies: %w", err)
	}

	byLevel := make(map[string]int64, len(levelCounts))
	for _, lc := range levelCounts {
		byLevel[lc.Level] = lc.Count
	}

	return &TierBreakdown{
		Tier:      tier,
		TotalJobs: totalJobs,
		ByLevel:   byLevel,
		Companies: summarize(companies),
	}, nil
}

// LevelStats returns job counts per level, ordered intern through exec with
// unknown last. Not cached.
func (a *Aggregator) LevelStats(ctx context.Context) (*LevelBreakdown, error) {
	levelCounts, err := a.jobs.GroupJobsByLevel(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("group by level: %w", err)
	}

	var total int64
	for _, lc := range levelCounts {
		total += lc.Count
	}
	return &LevelBreakdown{Levels: levelCounts, Total: total}, nil
}

func summarize(companies []models.Company) []CompanySummary {
	out := make([]CompanySummary, 0, len(companies))
	for _, c := range companies {
		out = append(out, CompanySummary{Slug: c.Slug, Name: c.Name, Tier: c.Tier, JobCount: c.JobCount})
	}
	return out
}
