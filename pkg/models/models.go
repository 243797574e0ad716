package models

// Domain models matching the database schema in db/migrations/0001_init.sql

type Job struct {
	ID          int64    `json:"id" db:"id"`
	JobID       string   `json:"job_id" db:"job_id"`
	CompanySlug string   `json:"company_slug" db:"company_slug"`
	CompanyName string   `json:"company_name" db:"company_name"`
	Tier        string   `json:"tier" db:"tier"`
	TierScore   int      `json:"tier_score" db:"tier_score"`
	Title       string   `json:"title" db:"title"`
	URL         string   `json:"url" db:"url"`
	Location    *string  `json:"location,omitempty" db:"location"`
	Remote      bool     `json:"remote" db:"remote"`
	Level       string   `json:"level" db:"level"`
	JobType     string   `json:"job_type" db:"job_type"`
	Team        *string  `json:"team,omitempty" db:"team"`
	Description *string  `json:"description,omitempty" db:"description"`
	SalaryMin   *int64   `json:"salary_min,omitempty" db:"salary_min"`
	SalaryMax   *int64   `json:"salary_max,omitempty" db:"salary_max"`
	PostedAt    *int64   `json:"posted_at,omitempty" db:"posted_at"`
	ScrapedAt   int64    `json:"scraped_at" db:"scraped_at"`
	Score       *float64 `json:"score,omitempty" db:"score"`
}

type Company struct {
	ID          int64   `json:"id" db:"id"`
	Slug        string  `json:"slug" db:"slug"`
	Name        string  `json:"name" db:"name"`
	Domain      string  `json:"domain" db:"domain"`
	CareersURL  *string `json:"careers_url,omitempty" db:"careers_url"`
	Tier        string  `json:"tier" db:"tier"`
	TierScore   int     `json:"tier_score" db:"tier_score"`
	JobCount    int64   `json:"job_count" db:"job_count"`
	LastScraped *int64  `json:"last_scraped,omitempty" db:"last_scraped"`
}

type ChatMessage struct {
	ID        int64   `json:"id" db:"id"`
	SessionID string  `json:"session_id" db:"session_id"`
	Role      string  `json:"role" db:"role"`
	Content   string  `json:"content" db:"content"`
	Metadata  *string `json:"metadata,omitempty" db:"metadata"`
	Created   int64   `json:"created" db:"created"`
}

// JobFilters is the sparse filter set accepted by job listing queries. The
// zero value imposes no constraint; absent fields never narrow the result.
type JobFilters struct {
	Tier    string `json:"tier,omitempty"`
	Level   string `json:"level,omitempty"`
	JobType string `json:"jobType,omitempty"`
	Remote  bool   `json:"remote,omitempty"`
	Company string `json:"company,omitempty"`
	Search  string `json:"search,omitempty"`
}

// Pagination is the offset-paging envelope returned alongside job lists.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// UpsertAction reports the outcome of a single reconciled write.
type UpsertAction string

const (
	ActionCreated UpsertAction = "created"
	ActionUpdated UpsertAction = "updated"
)

// BulkResult aggregates a batch of upserts. Failed records count toward
// neither field.
type BulkResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
