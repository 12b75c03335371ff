// Package handlers implements the read-side HTTP endpoints over the
// persisted weekly pipeline output: recommendations, setups, and the
// most recent regime call.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/nseweekly/engine/internal/persistence"
)

// Handlers serves the repository's weekly pipeline output over HTTP.
type Handlers struct {
	repo *persistence.Repository
}

// NewHandlers builds the read-side handler set over the given repository.
func NewHandlers(repo *persistence.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// currentWeek returns the Monday of the current ISO week, the key the
// pipeline stamps on every record it produces.
func currentWeek(now time.Time) string {
	wd := int(now.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := now.AddDate(0, 0, -(wd - 1))
	return monday.Format("2006-01-02")
}

func weekParam(r *http.Request) string {
	if w := r.URL.Query().Get("week"); w != "" {
		return w
	}
	return currentWeek(time.Now().UTC())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Recommendations serves the assembled weekly recommendation card set.
// GET /recommendations?week=2026-01-05
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	week := weekParam(r)
	rec, err := h.repo.Recommendations.GetByWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no recommendation for week "+week)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RecentRecommendations serves the N most recently produced weekly cards.
// GET /recommendations/recent?limit=8
func (h *Handlers) RecentRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := 8
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := h.repo.Recommendations.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Explain serves the full score/setup lineage behind one symbol's card
// for a given week, so a trader can see why it was or wasn't selected.
// GET /explain/{symbol}?week=2026-01-05
func (h *Handlers) Explain(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	week := weekParam(r)

	score, err := h.repo.Scores.GetByWeek(r.Context(), symbol, week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	setups, err := h.repo.Setups.ListByWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var setup *persistence.SetupRecord
	for i := range setups {
		if setups[i].Symbol == symbol {
			setup = &setups[i]
			break
		}
	}

	if score == nil && setup == nil {
		writeError(w, http.StatusNotFound, "no record for "+symbol+" in week "+week)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"week":   week,
		"score":  score,
		"setup":  setup,
	})
}

// Setups serves every setup detected for a given week, qualified or not.
// GET /setups?week=2026-01-05
func (h *Handlers) Setups(w http.ResponseWriter, r *http.Request) {
	week := weekParam(r)
	setups, err := h.repo.Setups.ListByWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, setups)
}

// Portfolio serves the realized portfolio construction for a given week.
// GET /portfolio?week=2026-01-05
func (h *Handlers) Portfolio(w http.ResponseWriter, r *http.Request) {
	week := weekParam(r)
	pf, err := h.repo.Portfolios.GetByWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pf == nil {
		writeError(w, http.StatusNotFound, "no portfolio for week "+week)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

// Regime serves the market regime call carried on the most recent
// recommendation card set; the pipeline has no standalone regime table
// since the call only ever matters alongside the cards it shaped.
// GET /regime
func (h *Handlers) Regime(w http.ResponseWriter, r *http.Request) {
	week := weekParam(r)
	rec, err := h.repo.Recommendations.GetByWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		recent, err := h.repo.Recommendations.ListRecent(r.Context(), 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(recent) == 0 {
			writeError(w, http.StatusNotFound, "no regime call on record")
			return
		}
		rec = &recent[0]
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"week":   rec.Week,
		"regime": rec.MarketRegime,
	})
}

// NotFound is the fallback handler for unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found: "+r.URL.Path)
}
