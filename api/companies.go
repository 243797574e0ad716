package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
)

const (
	defaultCompanyLimit = 100
	maxCompanyLimit     = 500

	defaultTopCompanyLimit = 20
	maxTopCompanyLimit     = 100
)

type CompaniesHandler struct {
	companies  repository.CompanyRepo
	reconciler *catalog.Reconciler
	maintainer *catalog.Maintainer
}

func NewCompaniesHandler(companies repository.CompanyRepo, reconciler *catalog.Reconciler, maintainer *catalog.Maintainer) *CompaniesHandler {
	return &CompaniesHandler{companies: companies, reconciler: reconciler, maintainer: maintainer}
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// ListCompanies serves GET /api/companies with an optional tier filter.
func (h *CompaniesHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("tier")
	limit := clamp(queryInt(r, "limit"), defaultCompanyLimit, maxCompanyLimit)

	companies, err := h.companies.ListCompanies(r.Context(), tier, limit)
	if err != nil {
		logger.Error("list companies", "err", err)
		writeError(w, "failed to list companies", http.StatusInternalServerError)
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}
	writeJSON(w, map[string]any{"companies": companies}, http.StatusOK)
}

// GetCompany serves GET /api/companies/{slug}.
func (h *CompaniesHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	company, err := h.companies.GetCompanyBySlug(r.Context(), slug)
	if err != nil {
		logger.Error("get company", "slug", slug, "err", err)
		writeError(w, "failed to get company", http.StatusInternalServerError)
		return
	}
	if company == nil {
		writeError(w, "Company not found", http.StatusNotFound)
		return
	}
	writeJSON(w, company, http.StatusOK)
}

// TopCompanies serves GET /api/companies/top/list, ranked by prestige.
func (h *CompaniesHandler) TopCompanies(w http.ResponseWriter, r *http.Request) {
	limit := clamp(queryInt(r, "limit"), defaultTopCompanyLimit, maxTopCompanyLimit)

	companies, err := h.companies.ListCompanies(r.Context(), "", limit)
	if err != nil {
		logger.Error("list top companies", "err", err)
		writeError(w, "failed to list companies", http.StatusInternalServerError)
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}
	writeJSON(w, map[string]any{"companies": companies}, http.StatusOK)
}

// BulkUpsertCompanies serves POST /api/companies/bulk.
func (h *CompaniesHandler) BulkUpsertCompanies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Companies []companyInput `json:"companies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Companies == nil {
		writeError(w, "companies array is required", http.StatusBadRequest)
		return
	}

	companies := make([]models.Company, 0, len(req.Companies))
	for i := range req.Companies {
		c, err := req.Companies[i].normalize()
		if err != nil {
			logger.Warn("skipping malformed company record", "index", i, "err", err)
			continue
		}
		companies = append(companies, *c)
	}

	res, err := h.reconciler.BulkUpsertCompanies(r.Context(), companies)
	if err != nil {
		logger.Error("bulk upsert companies", "err", err)
		writeError(w, "failed to upsert companies", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"created": res.Created,
		"updated": res.Updated,
		"total":   len(req.Companies),
	}, http.StatusOK)
}

// UpdateJobCount serves PUT /api/companies/{slug}/job-count, the scrape
// completion signal. A missing slug reports updated=false instead of failing
// so scrapers can fire and forget.
func (h *CompaniesHandler) UpdateJobCount(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req struct {
		JobCount    *int64 `json:"job_count"`
		JobCountAlt *int64 `json:"jobCount"`
		LastScraped *int64 `json:"last_scraped"`
		LastScrpAlt *int64 `json:"lastScraped"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	jobCount := req.JobCount
	if jobCount == nil {
		jobCount = req.JobCountAlt
	}
	if jobCount == nil {
		writeError(w, "job_count is required", http.StatusBadRequest)
		return
	}
	lastScraped := req.LastScraped
	if lastScraped == nil {
		lastScraped = req.LastScrpAlt
	}

	updated, err := h.maintainer.UpdateJobCount(r.Context(), slug, *jobCount, lastScraped)
	if err != nil {
		logger.Error("update job count", "slug", slug, "err", err)
		writeError(w, "failed to update job count", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"updated": updated}, http.StatusOK)
}
