package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
	"github.com/jackgladowsky/tierjobs/pkg/tier"
)

const (
	DefaultJobLimit = 50
	MaxJobLimit     = 100

	DefaultCompanyJobsLimit = 100
	MaxCompanyJobsLimit     = 500

	DefaultFeaturedLimit = 10
	MaxFeaturedLimit     = 50
)

// ErrBadCursor marks an unusable continuation token. Handlers map it to a
// validation error.
var ErrBadCursor = errors.New("invalid cursor")

// JobPage is an offset-paged job listing.
type JobPage struct {
	Jobs       []models.Job      `json:"jobs"`
	Pagination models.Pagination `json:"pagination"`
}

// JobCursorPage is a cursor-paged ("load more") job listing.
type JobCursorPage struct {
	Jobs           []models.Job `json:"jobs"`
	ContinueCursor string       `json:"continueCursor,omitempty"`
	IsDone         bool         `json:"isDone"`
}

// Planner composes store queries from sparse filter sets. A search term
// switches the base collection from a table scan to title-index matches and
// changes the ordering: tier precedence only, no recency key.
type Planner struct {
	jobs  repository.JobRepo
	index TitleIndex
}

func NewPlanner(jobs repository.JobRepo, index TitleIndex) *Planner {
	return &Planner{jobs: jobs, index: index}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// baseQuery folds the present filter fields into a store query. The search
// term is handled separately.
func baseQuery(f models.JobFilters) repository.JobQuery {
	return repository.JobQuery{
		Tier:        f.Tier,
		Level:       f.Level,
		JobType:     f.JobType,
		Remote:      f.Remote,
		CompanySlug: f.Company,
	}
}

// resolveSearch applies the search term to the query, if any. A blank term is
// no search at all, never a match-nothing query.
func (p *Planner) resolveSearch(f models.JobFilters, q *repository.JobQuery) error {
	term := strings.TrimSpace(f.Search)
	if term == "" {
		q.Order = repository.OrderByRank
		return nil
	}

	ids, err := p.index.MatchTitlePrefix(term)
	if err != nil {
		return fmt.Errorf("title search: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	q.JobIDs = ids
	q.Order = repository.OrderByTierScore
	return nil
}

// ListJobs runs a filtered, offset-paginated listing.
func (p *Planner) ListJobs(ctx context.Context, f models.JobFilters, limit, offset int) (*JobPage, error) {
	limit = clampLimit(limit, DefaultJobLimit, MaxJobLimit)
	if offset < 0 {
		offset = 0
	}

	q := baseQuery(f)
	if err := p.resolveSearch(f, &q); err != nil {
		return nil, err
	}

	q.Limit = limit
	q.Offset = offset
	jobs, err := p.jobs.ListJobs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	total, err := p.jobs.CountJobs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	if jobs == nil {
		jobs = []models.Job{}
	}

	return &JobPage{
		Jobs: jobs,
		Pagination: models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	}, nil
}

// ListJobsCursor pages through the default (no-search) ordering with an
// opaque keyset token, never re-returning a seen record. The search path has
// no cursor mode.
func (p *Planner) ListJobsCursor(ctx context.Context, f models.JobFilters, limit int, cursor string) (*JobCursorPage, error) {
	if strings.TrimSpace(f.Search) != "" {
		return nil, fmt.Errorf("%w: cursor paging does not combine with search", ErrBadCursor)
	}
	limit = clampLimit(limit, DefaultJobLimit, MaxJobLimit)

	q := baseQuery(f)
	q.Order = repository.OrderByRank
	q.Limit = limit

	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		q.After = after
	}

	jobs, err := p.jobs.ListJobs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	page := &JobCursorPage{Jobs: jobs, IsDone: len(jobs) < limit}
	if !page.IsDone {
		last := jobs[len(jobs)-1]
		page.ContinueCursor = encodeCursor(&repository.JobCursor{
			TierScore: last.TierScore,
			ScrapedAt: last.ScrapedAt,
			JobID:     last.JobID,
		})
	}

	return page, nil
}

// ByCompany lists all jobs of one company ordered by seniority then title.
// Every row shares the company tier, so tier_score would not discriminate.
func (p *Planner) ByCompany(ctx context.Context, slug string, limit int) ([]models.Job, error) {
	limit = clampLimit(limit, DefaultCompanyJobsLimit, MaxCompanyJobsLimit)

	jobs, err := p.jobs.ListJobs(ctx, repository.JobQuery{
		CompanySlug: slug,
		Order:       repository.OrderByLevelTitle,
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list company jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// Featured lists recent jobs restricted to the top-tier allow-list.
func (p *Planner) Featured(ctx context.Context, limit int) ([]models.Job, error) {
	limit = clampLimit(limit, DefaultFeaturedLimit, MaxFeaturedLimit)

	jobs, err := p.jobs.ListJobs(ctx, repository.JobQuery{
		Tiers: tier.FeaturedTiers,
		Order: repository.OrderByRank,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list featured jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// GetJob resolves a single job by internal id or natural job_id. A miss is a
// nil result, not an error.
func (p *Planner) GetJob(ctx context.Context, key string) (*models.Job, error) {
	return p.jobs.GetJob(ctx, key)
}

func encodeCursor(c *repository.JobCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(token string) (*repository.JobCursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	var c repository.JobCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return &c, nil
}
