package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackgladowsky/tierjobs/pkg/models"
)

const companyColumns = `id, slug, name, domain, careers_url, tier, tier_score, job_count, last_scraped`

func scanCompany(scan func(dest ...any) error) (*models.Company, error) {
	var c models.Company
	if err := scan(
		&c.ID, &c.Slug, &c.Name, &c.Domain, &c.CareersURL,
		&c.Tier, &c.TierScore, &c.JobCount, &c.LastScraped,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepo) GetCompanyBySlug(ctx context.Context, slug string) (*models.Company, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE slug = ?`, slug)
	c, err := scanCompany(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *SQLiteRepo) InsertCompany(ctx context.Context, c *models.Company) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("company is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO companies (slug, name, domain, careers_url, tier, tier_score, job_count, last_scraped, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Slug, c.Name, c.Domain, c.CareersURL, c.Tier, c.TierScore, c.JobCount, c.LastScraped, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateCompanyBySlug(ctx context.Context, c *models.Company) error {
	if c == nil {
		return fmt.Errorf("company is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE companies SET name = ?, domain = ?, careers_url = ?, tier = ?, tier_score = ?, job_count = ?, last_scraped = ?, updated = ? WHERE slug = ?`,
		c.Name, c.Domain, c.CareersURL, c.Tier, c.TierScore, c.JobCount, c.LastScraped, now(), c.Slug)
	return err
}

// ListCompanies returns companies ordered by tier_score then job_count
// descending, optionally restricted to one tier.
func (r *SQLiteRepo) ListCompanies(ctx context.Context, tier string, limit int) ([]models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
	args := []any{}
	if tier != "" {
		query += ` WHERE tier = ?`
		args = append(args, tier)
	}
	if limit <= 0 {
		limit = -1
	}
	query += ` ORDER BY tier_score DESC, job_count DESC, slug ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Company
	for rows.Next() {
		c, err := scanCompany(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

// TopCompaniesByJobCount ranks by job_count first, tier_score second, slug as
// the deterministic tail.
func (r *SQLiteRepo) TopCompaniesByJobCount(ctx context.Context, limit int) ([]models.Company, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY job_count DESC, tier_score DESC, slug ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Company
	for rows.Next() {
		c, err := scanCompany(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountCompanies(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM companies`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// RecomputeJobCounts sets every company's job_count to the count of job rows
// referencing its slug. Jobs pointing at slugs with no company row are left
// alone; companies with no jobs drop to zero.
func (r *SQLiteRepo) RecomputeJobCounts(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, `UPDATE companies SET job_count = (SELECT COUNT(*) FROM jobs WHERE jobs.company_slug = companies.slug)`)
	return err
}

// UpdateJobCount applies a targeted count update from an external
// scrape-completion signal. Returns false when the slug has no company row.
func (r *SQLiteRepo) UpdateJobCount(ctx context.Context, slug string, jobCount int64, lastScraped *int64) (bool, error) {
	var res sql.Result
	var err error
	if lastScraped != nil {
		res, err = r.conn.Exec(ctx, `UPDATE companies SET job_count = ?, last_scraped = ?, updated = ? WHERE slug = ?`, jobCount, *lastScraped, now(), slug)
	} else {
		res, err = r.conn.Exec(ctx, `UPDATE companies SET job_count = ?, updated = ? WHERE slug = ?`, jobCount, now(), slug)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
