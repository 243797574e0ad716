package api

import (
	"github.com/gorilla/mux"

	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/internal/chat"
	"github.com/jackgladowsky/tierjobs/internal/stats"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
)

// Services bundles everything the HTTP layer needs.
type Services struct {
	Planner    *catalog.Planner
	Reconciler *catalog.Reconciler
	Maintainer *catalog.Maintainer
	Companies  repository.CompanyRepo
	Stats      *stats.Aggregator
	Chat       *chat.Service
}

func SetupRoutes(svc *Services, version, buildTime string) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	jobsHandler := NewJobsHandler(svc.Planner, svc.Reconciler)
	companiesHandler := NewCompaniesHandler(svc.Companies, svc.Reconciler, svc.Maintainer)
	statsHandler := NewStatsHandler(svc.Stats)
	chatHandler := NewChatHandler(svc.Chat)

	// System endpoints
	r.HandleFunc("/", systemHandler.RootHandler).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Jobs endpoints. Fixed paths register before the {id} catch-all.
	api.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs", jobsHandler.UpsertJob).Methods("POST")
	api.HandleFunc("/jobs/bulk", jobsHandler.BulkUpsertJobs).Methods("POST")
	api.HandleFunc("/jobs/featured/list", jobsHandler.FeaturedJobs).Methods("GET")
	api.HandleFunc("/jobs/company/{slug}", jobsHandler.CompanyJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobsHandler.DeleteJob).Methods("DELETE")

	// Companies endpoints
	api.HandleFunc("/companies", companiesHandler.ListCompanies).Methods("GET")
	api.HandleFunc("/companies/bulk", companiesHandler.BulkUpsertCompanies).Methods("POST")
	api.HandleFunc("/companies/top/list", companiesHandler.TopCompanies).Methods("GET")
	api.HandleFunc("/companies/{slug}", companiesHandler.GetCompany).Methods("GET")
	api.HandleFunc("/companies/{slug}/job-count", companiesHandler.UpdateJobCount).Methods("PUT")

	// Stats endpoints
	api.HandleFunc("/stats", statsHandler.Overall).Methods("GET")
	api.HandleFunc("/stats/tier/{tier}", statsHandler.Tier).Methods("GET")
	api.HandleFunc("/stats/levels", statsHandler.Levels).Methods("GET")

	// Chat endpoints
	api.HandleFunc("/chat", chatHandler.Post).Methods("POST")
	api.HandleFunc("/chat/history/{sessionId}", chatHandler.History).Methods("GET")
	api.HandleFunc("/chat/suggestions", chatHandler.Suggestions).Methods("GET")

	return r
}
