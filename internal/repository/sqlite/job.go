package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
	"github.com/jackgladowsky/tierjobs/pkg/tier"
)

const jobColumns = `id, job_id, company_slug, company_name, tier, tier_score, title, url, location, remote, level, job_type, team, description, salary_min, salary_max, posted_at, scraped_at, score`

func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	var j models.Job
	if err := scan(
		&j.ID, &j.JobID, &j.CompanySlug, &j.CompanyName, &j.Tier, &j.TierScore,
		&j.Title, &j.URL, &j.Location, &j.Remote, &j.Level, &j.JobType,
		&j.Team, &j.Description, &j.SalaryMin, &j.SalaryMax,
		&j.PostedAt, &j.ScrapedAt, &j.Score,
	); err != nil {
		return nil, err
	}
	return &j, nil
}

// GetJob resolves either the internal row id or the natural job_id. Misses
// return (nil, nil).
func (r *SQLiteRepo) GetJob(ctx context.Context, key string) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ? OR job_id = ?`, key, key)
	j, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepo) GetJobByJobID(ctx context.Context, jobID string) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, jobID)
	j, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepo) InsertJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO jobs (job_id, company_slug, company_name, tier, tier_score, title, url, location, remote, level, job_type, team, description, salary_min, salary_max, posted_at, scraped_at, score, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.JobID, j.CompanySlug, j.CompanyName, j.Tier, j.TierScore, j.Title, j.URL,
		j.Location, j.Remote, j.Level, j.JobType, j.Team, j.Description,
		j.SalaryMin, j.SalaryMax, j.PostedAt, j.ScrapedAt, j.Score, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// UpdateJobByJobID replaces the full record identified by the natural key.
// Every column is written; callers must supply complete records.
func (r *SQLiteRepo) UpdateJobByJobID(ctx context.Context, j *models.Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE jobs SET company_slug = ?, company_name = ?, tier = ?, tier_score = ?, title = ?, url = ?, location = ?, remote = ?, level = ?, job_type = ?, team = ?, description = ?, salary_min = ?, salary_max = ?, posted_at = ?, scraped_at = ?, score = ?, updated = ? WHERE job_id = ?`,
		j.CompanySlug, j.CompanyName, j.Tier, j.TierScore, j.Title, j.URL,
		j.Location, j.Remote, j.Level, j.JobType, j.Team, j.Description,
		j.SalaryMin, j.SalaryMax, j.PostedAt, j.ScrapedAt, j.Score, now(), j.JobID)
	return err
}

func (r *SQLiteRepo) DeleteJobByJobID(ctx context.Context, jobID string) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// buildJobWhere folds the present filter fields into a conjunctive predicate
// list. Absent fields contribute nothing.
func buildJobWhere(q repository.JobQuery) (string, []any) {
	conds := []string{}
	args := []any{}

	if q.Tier != "" {
		conds = append(conds, "tier = ?")
		args = append(args, q.Tier)
	}
	if len(q.Tiers) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(q.Tiers)), ",")
		conds = append(conds, "tier IN ("+ph+")")
		for _, t := range q.Tiers {
			args = append(args, t)
		}
	}
	if q.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, q.Level)
	}
	if q.JobType != "" {
		conds = append(conds, "job_type = ?")
		args = append(args, q.JobType)
	}
	if q.Remote {
		conds = append(conds, "remote = 1")
	}
	if q.CompanySlug != "" {
		conds = append(conds, "company_slug = ?")
		args = append(args, q.CompanySlug)
	}
	if q.JobIDs != nil {
		if len(q.JobIDs) == 0 {
			conds = append(conds, "1 = 0")
		} else {
			ph := strings.TrimSuffix(strings.Repeat("?,", len(q.JobIDs)), ",")
			conds = append(conds, "job_id IN ("+ph+")")
			for _, id := range q.JobIDs {
				args = append(args, id)
			}
		}
	}
	if q.After != nil {
		// keyset position within the OrderByRank ordering
		conds = append(conds, "(tier_score < ? OR (tier_score = ? AND scraped_at < ?) OR (tier_score = ? AND scraped_at = ? AND job_id > ?))")
		args = append(args,
			q.After.TierScore,
			q.After.TierScore, q.After.ScrapedAt,
			q.After.TierScore, q.After.ScrapedAt, q.After.JobID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func jobOrderClause(o repository.JobOrder) string {
	switch o {
	case repository.OrderByTierScore:
		return " ORDER BY tier_score DESC, job_id ASC"
	case repository.OrderByLevelTitle:
		return " ORDER BY " + tier.LevelRankCase("level") + ", title ASC"
	default:
		return " ORDER BY tier_score DESC, scraped_at DESC, job_id ASC"
	}
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, q repository.JobQuery) ([]models.Job, error) {
	where, args := buildJobWhere(q)
	query := `SELECT ` + jobColumns + ` FROM jobs` + where + jobOrderClause(q.Order)
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountJobs(ctx context.Context, q repository.JobQuery) (int64, error) {
	// pagination fields do not affect the total
	q.After = nil
	where, args := buildJobWhere(q)

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// ListAllJobs streams the full jobs table, used to rebuild the search index.
func (r *SQLiteRepo) ListAllJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) GroupJobsByTier(ctx context.Context) ([]repository.TierCount, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT tier, COUNT(*) FROM jobs GROUP BY tier ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.TierCount
	for rows.Next() {
		var tc repository.TierCount
		if err := rows.Scan(&tc.Tier, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}

	return out, rows.Err()
}

// GroupJobsByLevel returns level counts in the fixed display order. An empty
// tier scopes over all jobs.
func (r *SQLiteRepo) GroupJobsByLevel(ctx context.Context, tierLabel string) ([]repository.LevelCount, error) {
	query := `SELECT level, COUNT(*) FROM jobs`
	args := []any{}
	if tierLabel != "" {
		query += ` WHERE tier = ?`
		args = append(args, tierLabel)
	}
	query += ` GROUP BY level ORDER BY ` + tier.LevelRankCase("level")

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.LevelCount
	for rows.Next() {
		var lc repository.LevelCount
		if err := rows.Scan(&lc.Level, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}

	return out, rows.Err()
}
