// Package report turns runner output into the console report and enriches
// picks with issuer profiles.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/pkg/logger"
	"github.com/tradebyz/screener/pkg/redis"
)

// ProfileProvider is the slice of the quote client enrichment needs.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, code string) (*quotes.Profile, error)
}

// Pick is one selected instrument with its enrichment, when available.
type Pick struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Enriched is a selector report with profiled picks.
type Enriched struct {
	Alias     string `json:"alias"`
	Strategy  string `json:"strategy"`
	TradeDate string `json:"trade_date"`
	Picks     []Pick `json:"picks"`
}

// Reporter formats and enriches pick reports.
type Reporter struct {
	provider ProfileProvider
	cache    *redis.Cache
	log      *logger.Logger
}

// New creates a reporter. provider may be nil, in which case picks are
// reported bare.
func New(provider ProfileProvider, cache *redis.Cache, log *logger.Logger) *Reporter {
	return &Reporter{provider: provider, cache: cache, log: log}
}

// Enrich looks up issuer profiles for every pick. Profiles are cached a
// day; a failed lookup leaves that pick bare and is not an error.
func (r *Reporter) Enrich(ctx context.Context, reports []selector.Report) []Enriched {
	out := make([]Enriched, 0, len(reports))
	for _, rep := range reports {
		enriched := Enriched{
			Alias:     rep.Alias,
			Strategy:  rep.Strategy,
			TradeDate: rep.TradeDate.Format("2006-01-02"),
			Picks:     make([]Pick, 0, len(rep.Picks)),
		}
		for _, code := range rep.Picks {
			enriched.Picks = append(enriched.Picks, r.lookup(ctx, code))
		}
		out = append(out, enriched)
	}
	return out
}

func (r *Reporter) lookup(ctx context.Context, code string) Pick {
	pick := Pick{Code: code}
	if r.provider == nil {
		return pick
	}

	var profile quotes.Profile
	var err error
	if r.cache != nil {
		err = r.cache.GetOrSet(ctx, redis.ProfileKey(code), &profile, redis.TTLDaily, func() (interface{}, error) {
			return r.provider.FetchProfile(ctx, code)
		})
	} else {
		var p *quotes.Profile
		if p, err = r.provider.FetchProfile(ctx, code); err == nil {
			profile = *p
		}
	}
	if err != nil {
		r.log.WithError(err).WithField("code", code).Warn("Profile lookup failed")
		return pick
	}

	pick.Name = profile.Name
	pick.Industry = profile.Industry
	return pick
}

// Format renders one enriched report as the console block the select
// command prints.
func Format(e Enriched) string {
	var b strings.Builder
	fmt.Fprintf(&b, "============== %s [%s] ==============\n", e.Alias, e.TradeDate)
	fmt.Fprintf(&b, "strategy: %s\n", e.Strategy)
	if len(e.Picks) == 0 {
		b.WriteString("no picks\n")
		return b.String()
	}
	fmt.Fprintf(&b, "picks (%d):\n", len(e.Picks))
	for _, p := range e.Picks {
		line := "  " + p.Code
		if p.Name != "" {
			line += "  " + p.Name
		}
		if p.Industry != "" {
			line += "  (" + p.Industry + ")"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Log writes every report through the structured logger and returns the
// formatted blocks for console output.
func (r *Reporter) Log(reports []Enriched) []string {
	blocks := make([]string, 0, len(reports))
	for _, rep := range reports {
		codes := make([]string, 0, len(rep.Picks))
		for _, p := range rep.Picks {
			codes = append(codes, p.Code)
		}
		r.log.WithFields(map[string]interface{}{
			"alias":      rep.Alias,
			"trade_date": rep.TradeDate,
			"picks":      strings.Join(codes, ","),
		}).Info("Selection result")
		blocks = append(blocks, Format(rep))
	}
	return blocks
}
