// Package catalog holds the core of the job board: the upsert reconciler for
// scraped records, the job-count aggregate maintainer, and the query planner
// that turns sparse filter sets into store queries.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
)

// TitleIndex is the slice of the search index the catalog needs: keeping job
// titles in step with the store and resolving prefix matches.
type TitleIndex interface {
	IndexJob(jobID, title string) error
	Delete(jobID string) error
	MatchTitlePrefix(term string) ([]string, error)
}

// UpsertResult reports a single reconciled write.
type UpsertResult struct {
	ID     int64               `json:"id"`
	Action models.UpsertAction `json:"action"`
}

// Reconciler decides create vs. update per natural key and applies the write.
// Batches are processed record by record; one bad record never rolls back the
// ones applied before it.
type Reconciler struct {
	jobs       repository.JobRepo
	companies  repository.CompanyRepo
	index      TitleIndex
	maintainer *Maintainer
	logger     *slog.Logger
}

func NewReconciler(jobs repository.JobRepo, companies repository.CompanyRepo, index TitleIndex, maintainer *Maintainer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{jobs: jobs, companies: companies, index: index, maintainer: maintainer, logger: logger}
}

// applyJob upserts one record by natural key without touching aggregates.
func (r *Reconciler) applyJob(ctx context.Context, j *models.Job) (*UpsertResult, error) {
	if j == nil {
		return nil, fmt.Errorf("job is nil")
	}
	if j.JobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}

	existing, err := r.jobs.GetJobByJobID(ctx, j.JobID)
	if err != nil {
		return nil, fmt.Errorf("lookup job %s: %w", j.JobID, err)
	}

	var res *UpsertResult
	if existing != nil {
		if err := r.jobs.UpdateJobByJobID(ctx, j); err != nil {
			return nil, fmt.Errorf("update job %s: %w", j.JobID, err)
		}
		res = &UpsertResult{ID: existing.ID, Action: models.ActionUpdated}
	} else {
		id, err := r.jobs.InsertJob(ctx, j)
		if err != nil {
			return nil, fmt.Errorf("insert job %s: %w", j.JobID, err)
		}
		res = &UpsertResult{ID: id, Action: models.ActionCreated}
	}

	// the index is derived state, rebuildable on startup; a failed index
	// write must not fail the upsert
	if err := r.index.IndexJob(j.JobID, j.Title); err != nil {
		r.logger.Error("index job title", "job_id", j.JobID, "err", err)
	}

	return res, nil
}

// UpsertJob applies one record and brings company job counts up to date
// before returning.
func (r *Reconciler) UpsertJob(ctx context.Context, j *models.Job) (*UpsertResult, error) {
	res, err := r.applyJob(ctx, j)
	if err != nil {
		return nil, err
	}
	if err := r.maintainer.RecomputeJobCounts(ctx); err != nil {
		return nil, fmt.Errorf("recompute job counts: %w", err)
	}
	return res, nil
}

// BulkUpsertJobs applies records independently and in order. Failing records
// are skipped and logged; the result counts only successes. Duplicate natural
// keys within one batch resolve to last-write-wins. Job counts are recomputed
// before returning.
func (r *Reconciler) BulkUpsertJobs(ctx context.Context, jobs []models.Job) (*models.BulkResult, error) {
	res := &models.BulkResult{}
	for i := range jobs {
		out, err := r.applyJob(ctx, &jobs[i])
		if err != nil {
			r.logger.Error("bulk upsert job failed", "job_id", jobs[i].JobID, "err", err)
			continue
		}
		if out.Action == models.ActionCreated {
			res.Created++
		} else {
			res.Updated++
		}
	}

	if err := r.maintainer.RecomputeJobCounts(ctx); err != nil {
		return nil, fmt.Errorf("recompute job counts: %w", err)
	}

	return res, nil
}

// DeleteJob removes a job by natural key and recounts. Deleting a missing key
// reports false without error.
func (r *Reconciler) DeleteJob(ctx context.Context, jobID string) (bool, error) {
	deleted, err := r.jobs.DeleteJobByJobID(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("delete job %s: %w", jobID, err)
	}
	if !deleted {
		return false, nil
	}

	if err := r.index.Delete(jobID); err != nil {
		r.logger.Error("remove job from index", "job_id", jobID, "err", err)
	}
	if err := r.maintainer.RecomputeJobCounts(ctx); err != nil {
		return true, fmt.Errorf("recompute job counts: %w", err)
	}

	return true, nil
}

// UpsertCompany reconciles one company record by slug.
func (r *Reconciler) UpsertCompany(ctx context.Context, c *models.Company) (*UpsertResult, error) {
	if c == nil {
		return nil, fmt.Errorf("company is nil")
	}
	if c.Slug == "" {
		return nil, fmt.Errorf("slug is required")
	}

	existing, err := r.companies.GetCompanyBySlug(ctx, c.Slug)
	if err != nil {
		return nil, fmt.Errorf("lookup company %s: %w", c.Slug, err)
	}

	if existing != nil {
		if err := r.companies.UpdateCompanyBySlug(ctx, c); err != nil {
			return nil, fmt.Errorf("update company %s: %w", c.Slug, err)
		}
		return &UpsertResult{ID: existing.ID, Action: models.ActionUpdated}, nil
	}

	id, err := r.companies.InsertCompany(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("insert company %s: %w", c.Slug, err)
	}
	return &UpsertResult{ID: id, Action: models.ActionCreated}, nil
}

// BulkUpsertCompanies mirrors BulkUpsertJobs for company records. Company
// writes do not touch job rows, so no recount happens here.
func (r *Reconciler) BulkUpsertCompanies(ctx context.Context, companies []models.Company) (*models.BulkResult, error) {
	res := &models.BulkResult{}
	for i := range companies {
		out, err := r.UpsertCompany(ctx, &companies[i])
		if err != nil {
			r.logger.Error("bulk upsert company failed", "slug", companies[i].Slug, "err", err)
			continue
		}
		if out.Action == models.ActionCreated {
			res.Created++
		} else {
			res.Updated++
		}
	}

	return res, nil
}
