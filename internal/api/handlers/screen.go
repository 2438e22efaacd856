// Package handlers implements the HTTP endpoints of the screener API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/report"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/logger"
)

// PickSource reads persisted pick reports. Absent when the database is
// disabled.
type PickSource interface {
	GetByDate(ctx context.Context, date time.Time) ([]selector.Report, error)
	Get(ctx context.Context, date time.Time, alias string) (*selector.Report, error)
}

// ScreenHandler serves selector metadata and on-demand screening runs.
type ScreenHandler struct {
	bars       *market.Store
	runner     *selector.Runner
	reporter   *report.Reporter
	picks      PickSource
	configPath string
	log        *logger.Logger
}

func NewScreenHandler(
	bars *market.Store,
	runner *selector.Runner,
	reporter *report.Reporter,
	picks PickSource,
	configPath string,
	log *logger.Logger,
) *ScreenHandler {
	return &ScreenHandler{
		bars:       bars,
		runner:     runner,
		reporter:   reporter,
		picks:      picks,
		configPath: configPath,
		log:        log,
	}
}

// ListSelectors returns the registered strategy names and the entries of
// the active configuration file.
func (h *ScreenHandler) ListSelectors(w http.ResponseWriter, r *http.Request) {
	configured, err := strategyconfig.Load(h.configPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "selector config unreadable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"registered": selector.Names(),
		"configured": configured,
	})
}

// Run executes the configured selectors against the local bar store for
// the requested trade date (query param `date`, default today) and returns
// the enriched reports.
func (h *ScreenHandler) Run(w http.ResponseWriter, r *http.Request) {
	tradeDate := market.Day(time.Now().UTC())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		tradeDate = market.Day(parsed)
	}

	selectors, err := strategyconfig.Load(h.configPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "selector config unreadable")
		return
	}

	codes, err := h.bars.Codes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bar store unreadable")
		return
	}
	universe, err := h.bars.LoadUniverse(codes)
	if err != nil {
		h.log.WithError(err).Error("Universe load failed")
		writeError(w, http.StatusInternalServerError, "bar data invalid")
		return
	}

	reports, err := h.runner.Run(r.Context(), selectors, tradeDate, universe)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "screening aborted")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"reports":    h.reporter.Enrich(r.Context(), reports),
	})
}

// GetPicks returns persisted reports for a trade date.
func (h *ScreenHandler) GetPicks(w http.ResponseWriter, r *http.Request) {
	if h.picks == nil {
		writeError(w, http.StatusServiceUnavailable, "pick persistence disabled")
		return
	}

	raw := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if alias := r.URL.Query().Get("alias"); alias != "" {
		rep, err := h.picks.Get(r.Context(), market.Day(date), alias)
		if err != nil {
			writeError(w, http.StatusNotFound, "no report for that date and alias")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"reports": []selector.Report{*rep}})
		return
	}

	reports, err := h.picks.GetByDate(r.Context(), market.Day(date))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pick lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
