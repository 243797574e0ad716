package catalog

import (
	"context"
	"fmt"

	"github.com/jackgladowsky/tierjobs/pkg/repository"
)

// Maintainer keeps the derived job_count column on companies consistent with
// the jobs table. The recompute is a full pass rather than an incremental
// counter so it self-corrects after messy ingests (jobs referencing companies
// added in the same batch, slug typos).
type Maintainer struct {
	companies repository.CompanyRepo
}

func NewMaintainer(companies repository.CompanyRepo) *Maintainer {
	return &Maintainer{companies: companies}
}

// RecomputeJobCounts sets job_count for every company to the count of job
// rows sharing its slug. Slugs with no company row are skipped silently;
// orphaned jobs are tolerated, not repaired.
func (m *Maintainer) RecomputeJobCounts(ctx context.Context) error {
	if err := m.companies.RecomputeJobCounts(ctx); err != nil {
		return fmt.Errorf("recompute job counts: %w", err)
	}
	return nil
}

// UpdateJobCount applies a targeted per-company update coming from an
// external scrape-completion signal. Returns false when no company row
// matches the slug.
func (m *Maintainer) UpdateJobCount(ctx context.Context, slug string, jobCount int64, lastScraped *int64) (bool, error) {
	if slug == "" {
		return false, fmt.Errorf("slug is required")
	}
	updated, err := m.companies.UpdateJobCount(ctx, slug, jobCount, lastScraped)
	if err != nil {
		return false, fmt.Errorf("update job count for %s: %w", slug, err)
	}
	return updated, nil
}
