package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebyz/screener/internal/external/quotes"
	"github.com/tradebyz/screener/internal/selector"
	"github.com/tradebyz/screener/pkg/logger"
)

type fakeProfiles struct {
	profiles map[string]*quotes.Profile
	calls    int
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, code string) (*quotes.Profile, error) {
	f.calls++
	p, ok := f.profiles[code]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

func sampleReports() []selector.Report {
	return []selector.Report{{
		Alias:     "pullback",
		Strategy:  "BBIKDJSelector",
		TradeDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Picks:     []string{"600001", "600002"},
	}}
}

func TestEnrichFillsProfiles(t *testing.T) {
	provider := &fakeProfiles{profiles: map[string]*quotes.Profile{
		"600001": {Code: "600001", Name: "Alpha Steel", Industry: "Steel"},
	}}
	r := New(provider, nil, logger.NewNop())

	enriched := r.Enrich(context.Background(), sampleReports())
	require.Len(t, enriched, 1)
	require.Len(t, enriched[0].Picks, 2)

	assert.Equal(t, "2024-06-03", enriched[0].TradeDate)
	assert.Equal(t, Pick{Code: "600001", Name: "Alpha Steel", Industry: "Steel"}, enriched[0].Picks[0])
	// Lookup failure leaves the pick bare instead of failing the report.
	assert.Equal(t, Pick{Code: "600002"}, enriched[0].Picks[1])
}

func TestEnrichWithoutProviderKeepsCodes(t *testing.T) {
	r := New(nil, nil, logger.NewNop())

	enriched := r.Enrich(context.Background(), sampleReports())
	require.Len(t, enriched, 1)
	assert.Equal(t, []Pick{{Code: "600001"}, {Code: "600002"}}, enriched[0].Picks)
}

func TestFormat(t *testing.T) {
	block := Format(Enriched{
		Alias:     "pullback",
		Strategy:  "BBIKDJSelector",
		TradeDate: "2024-06-03",
		Picks:     []Pick{{Code: "600001", Name: "Alpha Steel", Industry: "Steel"}, {Code: "600002"}},
	})

	assert.Contains(t, block, "pullback [2024-06-03]")
	assert.Contains(t, block, "picks (2):")
	assert.Contains(t, block, "600001  Alpha Steel  (Steel)")
	assert.True(t, strings.Contains(block, "600002"))

	empty := Format(Enriched{Alias: "quiet", TradeDate: "2024-06-03"})
	assert.Contains(t, empty, "no picks")
}
