package repository

import (
	"context"

	"github.com/jackgladowsky/tierjobs/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// The operations are deliberately narrow (lookup by natural key, conjunctive
// filter scan, paginate, aggregate count) so the storage engine stays an
// implementation detail.

// JobOrder selects one of the fixed orderings a job scan can use.
type JobOrder int

const (
	// OrderByRank is the default listing order: tier_score descending,
	// scraped_at descending, job_id ascending.
	OrderByRank JobOrder = iota
	// OrderByTierScore is the search-path order: tier_score descending,
	// job_id ascending. Recency is intentionally not a key here.
	OrderByTierScore
	// OrderByLevelTitle orders by seniority display rank then title, used for
	// company-scoped listings where every row shares one tier.
	OrderByLevelTitle
)

// JobCursor is a keyset position within the OrderByRank ordering.
type JobCursor struct {
	TierScore int    `json:"ts"`
	ScrapedAt int64  `json:"sa"`
	JobID     string `json:"id"`
}

// JobQuery describes a conjunctive filter scan. Zero-valued fields impose no
// constraint. Remote narrows to remote rows only when true, matching the
// remote=true query parameter semantics.
type JobQuery struct {
	Tier        string
	Tiers       []string // tier allow-list (featured); ignored when empty
	Level       string
	JobType     string
	Remote      bool
	CompanySlug string
	JobIDs      []string // natural-key restriction (search path); nil means unrestricted

	Order  JobOrder
	After  *JobCursor // keyset position, OrderByRank only
	Limit  int
	Offset int
}

type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

type TierCount struct {
	Tier  string `json:"tier"`
	Count int64  `json:"count"`
}

type JobRepo interface {
	// GetJob resolves either the internal row id or the natural job_id.
	GetJob(ctx context.Context, key string) (*models.Job, error)
	GetJobByJobID(ctx context.Context, jobID string) (*models.Job, error)
	InsertJob(ctx context.Context, j *models.Job) (int64, error)
	UpdateJobByJobID(ctx context.Context, j *models.Job) error
	DeleteJobByJobID(ctx context.Context, jobID string) (bool, error)
	ListJobs(ctx context.Context, q JobQuery) ([]models.Job, error)
	CountJobs(ctx context.Context, q JobQuery) (int64, error)
	ListAllJobs(ctx context.Context) ([]models.Job, error)
	GroupJobsByTier(ctx context.Context) ([]TierCount, error)
	GroupJobsByLevel(ctx context.Context, tier string) ([]LevelCount, error)
}

type CompanyRepo interface {
	GetCompanyBySlug(ctx context.Context, slug string) (*models.Company, error)
	InsertCompany(ctx context.Context, c *models.Company) (int64, error)
	UpdateCompanyBySlug(ctx context.Context, c *models.Company) error
	ListCompanies(ctx context.Context, tier string, limit int) ([]models.Company, error)
	TopCompaniesByJobCount(ctx context.Context, limit int) ([]models.Company, error)
	CountCompanies(ctx context.Context) (int64, error)
	RecomputeJobCounts(ctx context.Context) error
	UpdateJobCount(ctx context.Context, slug string, jobCount int64, lastScraped *int64) (bool, error)
}

type ChatRepo interface {
	AppendChatMessage(ctx context.Context, m *models.ChatMessage) (int64, error)
	// ListChatMessages returns the most recent messages of a session in
	// chronological order.
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
}
