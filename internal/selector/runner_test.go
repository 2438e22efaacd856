package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebyz/screener/internal/market"
	"github.com/tradebyz/screener/internal/strategyconfig"
	"github.com/tradebyz/screener/pkg/logger"
)

func boolPtr(b bool) *bool { return &b }

func testRunner() *Runner {
	return NewRunner(logger.NewNop(), 4)
}

func TestRunnerSelectsAndOrdersPicks(t *testing.T) {
	universe := market.Universe{
		"600001": uptrendPullbackSeries(t, "600001"),
		"600008": flatSeries(t, "600008", 181, 5),
		"600000": uptrendPullbackSeries(t, "600000"),
	}

	cfgs := []strategyconfig.Selector{
		{Strategy: NameBBIKDJ, Alias: "pullback"},
	}

	reports, err := testRunner().Run(context.Background(), cfgs, day(180), universe)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, "pullback", reports[0].Alias)
	assert.Equal(t, NameBBIKDJ, reports[0].Strategy)
	assert.Equal(t, day(180), reports[0].TradeDate)
	assert.Equal(t, []string{"600000", "600001"}, reports[0].Picks)
}

func TestRunnerIsDeterministic(t *testing.T) {
	universe := market.Universe{
		"600001": uptrendPullbackSeries(t, "600001"),
		"600002": goldenCrossSeries(t, "600002"),
		"600008": flatSeries(t, "600008", 181, 5),
	}

	cfgs := []strategyconfig.Selector{
		{Strategy: NameBBIKDJ},
		{Strategy: NamePeak},
	}

	first, err := testRunner().Run(context.Background(), cfgs, day(180), universe)
	require.NoError(t, err)
	second, err := testRunner().Run(context.Background(), cfgs, day(180), universe)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunnerSkipsBrokenEntriesAndContinues(t *testing.T) {
	universe := market.Universe{
		"600001": uptrendPullbackSeries(t, "600001"),
	}

	cfgs := []strategyconfig.Selector{
		{Strategy: "NoSuchSelector"},
		{Strategy: NameBBIKDJ, Params: map[string]any{"max_window": "sixty"}},
		{Strategy: NameBBIKDJ, Alias: "deactivated", Activate: boolPtr(false)},
		{Strategy: NameBBIKDJ, Alias: "survivor"},
	}

	reports, err := testRunner().Run(context.Background(), cfgs, day(180), universe)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "survivor", reports[0].Alias)
	assert.Equal(t, []string{"600001"}, reports[0].Picks)
}

func TestRunnerSkipsShortHistoriesSilently(t *testing.T) {
	// 59 bars is one short of the default max_window.
	universe := market.Universe{
		"600009": risingSeries(t, "600009", 59),
	}

	cfgs := []strategyconfig.Selector{{Strategy: NameBBIKDJ}}

	reports, err := testRunner().Run(context.Background(), cfgs, day(58), universe)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Picks)
}

func TestRunnerNoDataBeforeTradeDate(t *testing.T) {
	universe := market.Universe{
		"600001": uptrendPullbackSeries(t, "600001"),
	}

	cfgs := []strategyconfig.Selector{{Strategy: NameBBIKDJ}}

	// Every bar is after the requested date, so nothing qualifies and the
	// requested date is reported back unchanged.
	requested := day(0).AddDate(-1, 0, 0)
	reports, err := testRunner().Run(context.Background(), cfgs, requested, universe)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Picks)
	assert.Equal(t, requested, reports[0].TradeDate)
}

func TestRunnerResolvesHolidayToLastBar(t *testing.T) {
	universe := market.Universe{
		"600001": uptrendPullbackSeries(t, "600001"),
	}

	cfgs := []strategyconfig.Selector{{Strategy: NameBBIKDJ}}

	// Requesting a date past the final bar evaluates at the final bar.
	reports, err := testRunner().Run(context.Background(), cfgs, day(183), universe)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, day(180), reports[0].TradeDate)
	assert.Equal(t, []string{"600001"}, reports[0].Picks)
}

func TestRegistry(t *testing.T) {
	_, err := New("NoSuchSelector", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "NoSuchSelector")

	assert.Equal(t, []string{NameBBIKDJ, NameShortLong, NameBreakout, NamePeak}, Names())
}
