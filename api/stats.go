package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jackgladowsky/tierjobs/internal/stats"
)

type StatsHandler struct {
	aggregator *stats.Aggregator
}

func NewStatsHandler(aggregator *stats.Aggregator) *StatsHandler {
	return &StatsHandler{aggregator: aggregator}
}

// Overall serves GET /api/stats from the TTL cache.
func (h *StatsHandler) Overall(w http.ResponseWriter, r *http.Request) {
	payload, err := h.aggregator.OverallStats(r.Context())
	if err != nil {
		logger.Error("overall stats", "err", err)
		writeError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeRawJSON(w, payload, http.StatusOK)
}

// Tier serves GET /api/stats/tier/{tier}.
func (h *StatsHandler) Tier(w http.ResponseWriter, r *http.Request) {
	tier := mux.Vars(r)["tier"]

	breakdown, err := h.aggregator.TierStats(r.Context(), tier)
	if err != nil {
		logger.Error("tier stats", "tier", tier, "err", err)
		writeError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, breakdown, http.StatusOK)
}

// Levels serves GET /api/stats/levels.
func (h *StatsHandler) Levels(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.aggregator.LevelStats(r.Context())
	if err != nil {
		logger.Error("level stats", "err", err)
		writeError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, breakdown, http.StatusOK)
}
