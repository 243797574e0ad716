package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/pkg/models"
)

type JobsHandler struct {
	planner    *catalog.Planner
	reconciler *catalog.Reconciler
}

func NewJobsHandler(planner *catalog.Planner, reconciler *catalog.Reconciler) *JobsHandler {
	return &JobsHandler{planner: planner, reconciler: reconciler}
}

func queryInt(r *http.Request, key string) int {
	if s := r.URL.Query().Get(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

func filtersFromQuery(r *http.Request) models.JobFilters {
	q := r.URL.Query()
	return models.JobFilters{
		Tier:    q.Get("tier"),
		Level:   q.Get("level"),
		JobType: q.Get("jobType"),
		Remote:  q.Get("remote") == "true",
		Company: q.Get("company"),
		Search:  q.Get("search"),
	}
}

// ListJobs serves GET /api/jobs. With a cursor parameter it pages by keyset;
// otherwise by limit/offset.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	limit := queryInt(r, "limit")

	if cursor, hasCursor := r.URL.Query()["cursor"]; hasCursor {
		token := ""
		if len(cursor) > 0 {
			token = cursor[0]
		}
		page, err := h.planner.ListJobsCursor(r.Context(), filters, limit, token)
		if err != nil {
			if errors.Is(err, catalog.ErrBadCursor) {
				writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error("list jobs by cursor", "err", err)
			writeError(w, "failed to list jobs", http.StatusInternalServerError)
			return
		}
		writeJSON(w, page, http.StatusOK)
		return
	}

	page, err := h.planner.ListJobs(r.Context(), filters, limit, queryInt(r, "offset"))
	if err != nil {
		logger.Error("list jobs", "err", err)
		writeError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// GetJob serves GET /api/jobs/{id}, accepting either the internal row id or
// the scraper-assigned job_id.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]

	job, err := h.planner.GetJob(r.Context(), key)
	if err != nil {
		logger.Error("get job", "key", key, "err", err)
		writeError(w, "failed to get job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		writeError(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

// CompanyJobs serves GET /api/jobs/company/{slug}, ordered by seniority then
// title.
func (h *JobsHandler) CompanyJobs(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	jobs, err := h.planner.ByCompany(r.Context(), slug, queryInt(r, "limit"))
	if err != nil {
		logger.Error("list company jobs", "slug", slug, "err", err)
		writeError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, map[string]any{"jobs": jobs}, http.StatusOK)
}

// FeaturedJobs serves GET /api/jobs/featured/list: recent postings from the
// top tiers only.
func (h *JobsHandler) FeaturedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.planner.Featured(r.Context(), queryInt(r, "limit"))
	if err != nil {
		logger.Error("list featured jobs", "err", err)
		writeError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, map[string]any{"jobs": jobs}, http.StatusOK)
}

// UpsertJob serves POST /api/jobs: one record, reconciled by job_id.
func (h *JobsHandler) UpsertJob(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	job, err := in.normalize()
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.reconciler.UpsertJob(r.Context(), job)
	if err != nil {
		logger.Error("upsert job", "job_id", job.JobID, "err", err)
		writeError(w, "failed to upsert job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

// BulkUpsertJobs serves POST /api/jobs/bulk, the scraper ingestion endpoint.
func (h *JobsHandler) BulkUpsertJobs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Jobs []jobInput `json:"jobs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Jobs == nil {
		writeError(w, "jobs array is required", http.StatusBadRequest)
		return
	}

	jobs := make([]models.Job, 0, len(req.Jobs))
	for i := range req.Jobs {
		j, err := req.Jobs[i].normalize()
		if err != nil {
			// malformed records are skipped, not fatal to the batch
			logger.Warn("skipping malformed job record", "index", i, "err", err)
			continue
		}
		jobs = append(jobs, *j)
	}

	res, err := h.reconciler.BulkUpsertJobs(r.Context(), jobs)
	if err != nil {
		logger.Error("bulk upsert jobs", "err", err)
		writeError(w, "failed to upsert jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"created": res.Created,
		"updated": res.Updated,
		"total":   len(req.Jobs),
	}, http.StatusOK)
}

// DeleteJob serves DELETE /api/jobs/{id} by job_id.
func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	deleted, err := h.reconciler.DeleteJob(r.Context(), jobID)
	if err != nil {
		logger.Error("delete job", "job_id", jobID, "err", err)
		writeError(w, "failed to delete job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"deleted": deleted}, http.StatusOK)
}
