package api

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/tier"
)

// Scrapers are written in several languages and send both camelCase and
// snake_case payloads. The input types accept both spellings and normalize
// into the domain model before anything touches storage.

const maxDescriptionLen = 10000

var (
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	slugUnwanted = regexp.MustCompile(`[^a-z0-9]+`)
)

type jobInput struct {
	JobID          string   `json:"job_id"`
	JobIDAlt       string   `json:"jobId"`
	Company        string   `json:"company"`
	CompanyName    string   `json:"company_name"`
	CompanySlug    string   `json:"company_slug"`
	CompanySlugAlt string   `json:"companySlug"`
	Tier           string   `json:"tier"`
	TierScore      int      `json:"tier_score"`
	TierScoreAlt   int      `json:"tierScore"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Location       *string  `json:"location"`
	Remote         bool     `json:"remote"`
	Level          string   `json:"level"`
	JobType        string   `json:"job_type"`
	JobTypeAlt     string   `json:"jobType"`
	Team           *string  `json:"team"`
	Description    *string  `json:"description"`
	SalaryMin      *int64   `json:"salary_min"`
	SalaryMinAlt   *int64   `json:"salaryMin"`
	SalaryMax      *int64   `json:"salary_max"`
	SalaryMaxAlt   *int64   `json:"salaryMax"`
	PostedAt       *int64   `json:"posted_at"`
	PostedAtAlt    *int64   `json:"postedAt"`
	ScrapedAt      int64    `json:"scraped_at"`
	ScrapedAtAlt   int64    `json:"scrapedAt"`
	Score          *float64 `json:"score"`
}

type companyInput struct {
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	Domain         string  `json:"domain"`
	CareersURL     *string `json:"careers_url"`
	CareersURLAlt  *string `json:"careersUrl"`
	Tier           string  `json:"tier"`
	TierScore      int     `json:"tier_score"`
	TierScoreAlt   int     `json:"tierScore"`
	JobCount       int64   `json:"job_count"`
	JobCountAlt    int64   `json:"jobCount"`
	LastScraped    *int64  `json:"last_scraped"`
	LastScrapedAlt *int64  `json:"lastScraped"`
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func coalesceInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func coalesceInt64Ptr(a, b *int64) *int64 {
	if a != nil {
		return a
	}
	return b
}

// slugify turns a display name into a URL-safe slug: "Jane Street" becomes
// "jane-street".
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugUnwanted.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// stripHTML removes markup and caps the text length. Scraped descriptions
// regularly arrive as raw HTML fragments.
func stripHTML(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxDescriptionLen {
		// cut on a rune boundary so the tail stays valid UTF-8
		cut := maxDescriptionLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

func (in *jobInput) normalize() (*models.Job, error) {
	j := &models.Job{
		JobID:       coalesce(in.JobID, in.JobIDAlt),
		CompanyName: coalesce(in.CompanyName, in.Company),
		CompanySlug: coalesce(in.CompanySlug, in.CompanySlugAlt),
		Tier:        in.Tier,
		TierScore:   coalesceInt(in.TierScore, in.TierScoreAlt),
		Title:       strings.TrimSpace(in.Title),
		URL:         in.URL,
		Location:    in.Location,
		Remote:      in.Remote,
		Level:       in.Level,
		JobType:     coalesce(in.JobType, in.JobTypeAlt),
		Team:        in.Team,
		SalaryMin:   coalesceInt64Ptr(in.SalaryMin, in.SalaryMinAlt),
		SalaryMax:   coalesceInt64Ptr(in.SalaryMax, in.SalaryMaxAlt),
		PostedAt:    coalesceInt64Ptr(in.PostedAt, in.PostedAtAlt),
		ScrapedAt:   in.ScrapedAt,
		Score:       in.Score,
	}
	if j.ScrapedAt == 0 {
		j.ScrapedAt = in.ScrapedAtAlt
	}

	if j.JobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}
	if j.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if j.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if j.Tier == "" {
		return nil, fmt.Errorf("tier is required")
	}

	if j.CompanySlug == "" {
		j.CompanySlug = slugify(j.CompanyName)
	}
	if j.CompanySlug == "" {
		return nil, fmt.Errorf("company_slug or company name is required")
	}
	if j.CompanyName == "" {
		j.CompanyName = j.CompanySlug
	}
	if j.TierScore == 0 {
		j.TierScore = tier.Score(j.Tier)
	}
	if j.Level == "" {
		j.Level = "unknown"
	}
	if in.Description != nil {
		clean := stripHTML(*in.Description)
		j.Description = &clean
	}

	return j, nil
}

func (in *companyInput) normalize() (*models.Company, error) {
	c := &models.Company{
		Slug:        in.Slug,
		Name:        strings.TrimSpace(in.Name),
		Domain:      in.Domain,
		CareersURL:  in.CareersURL,
		Tier:        in.Tier,
		TierScore:   coalesceInt(in.TierScore, in.TierScoreAlt),
		JobCount:    in.JobCount,
		LastScraped: coalesceInt64Ptr(in.LastScraped, in.LastScrapedAlt),
	}
	if c.CareersURL == nil {
		c.CareersURL = in.CareersURLAlt
	}
	if c.JobCount == 0 {
		c.JobCount = in.JobCountAlt
	}

	if c.Slug == "" {
		c.Slug = slugify(c.Name)
	}
	if c.Slug == "" {
		return nil, fmt.Errorf("slug or name is required")
	}
	if c.Name == "" {
		c.Name = c.Slug
	}
	if c.Tier == "" {
		return nil, fmt.Errorf("tier is required")
	}
	if c.TierScore == 0 {
		c.TierScore = tier.Score(c.Tier)
	}

	return c, nil
}
