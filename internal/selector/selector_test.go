package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebyz/screener/internal/market"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func newSeries(t *testing.T, code string, bars []market.Bar) *market.Series {
	t.Helper()
	s := &market.Series{Code: code, Bars: bars}
	require.NoError(t, s.Validate())
	return s
}

// flatSeries has open=high=low=close on every bar, so every rolling
// high/low range is zero.
func flatSeries(t *testing.T, code string, n int, price float64) *market.Series {
	bars := make([]market.Bar, n)
	for i := range bars {
		bars[i] = market.Bar{Date: day(i), Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return newSeries(t, code, bars)
}

// uptrendPullbackSeries rises linearly from 10 to 15 over 181 bars. High
// spikes on bars 166-178 crush RSV, dragging J deep negative; the last two
// bars carry lowered lows so J recovers to a small positive value while
// BBI keeps climbing and DIF stays positive.
func uptrendPullbackSeries(t *testing.T, code string) *market.Series {
	bars := make([]market.Bar, 181)
	for i := range bars {
		c := 10 + 5*float64(i)/180
		b := market.Bar{Date: day(i), Open: c - 0.05, High: c + 0.1, Low: c - 0.1, Close: c, Volume: 1000}
		switch {
		case i >= 166 && i <= 178:
			b.High = c + 12
		case i >= 179:
			b.Low = c - 1.1
		}
		bars[i] = b
	}
	return newSeries(t, code, bars)
}

// goldenCrossSeries declines from 30, then prints a two-bar bump at 77-78
// that lifts SMA(3) above SMA(21) exactly at bar 78, and fades again so
// BBI is still falling into the final bar.
func goldenCrossSeries(t *testing.T, code string) *market.Series {
	closes := make([]float64, 81)
	for i := range closes {
		closes[i] = 30 - 0.1*float64(i)
	}
	closes[77] = 23.8
	closes[78] = 25.2
	closes[79] = 22.1
	closes[80] = 22.0

	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Date: day(i), Open: c, High: c + 0.3, Low: c - 0.3, Close: c, Volume: 1000}
	}
	return newSeries(t, code, bars)
}

func risingSeries(t *testing.T, code string, n int) *market.Series {
	bars := make([]market.Bar, n)
	for i := range bars {
		c := 10 + 0.05*float64(i)
		bars[i] = market.Bar{Date: day(i), Open: c, High: c + 0.1, Low: c - 0.1, Close: c, Volume: 1000}
	}
	return newSeries(t, code, bars)
}

// breakoutSeries is flat at 10 for 55 bars and then climbs to 10.8 over
// the last 15, an 8% move over the default offset on steady volume.
func breakoutSeries(t *testing.T, code string, refVolume, lastVolume float64) *market.Series {
	bars := make([]market.Bar, 70)
	for i := range bars {
		c := 10.0
		if i > 54 {
			c = 10 + 0.8*float64(i-54)/15
		}
		v := 1000.0
		if i == 54 {
			v = refVolume
		}
		if i == 69 {
			v = lastVolume
		}
		bars[i] = market.Bar{Date: day(i), Open: c, High: c, Low: c, Close: c, Volume: v}
	}
	return newSeries(t, code, bars)
}

// gapSeries is flat at 10 for 100 bars, then gaps up 25% on a wide final
// bar.
func gapSeries(t *testing.T, code string) *market.Series {
	bars := make([]market.Bar, 101)
	for i := range bars {
		bars[i] = market.Bar{Date: day(i), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1000}
	}
	bars[100] = market.Bar{Date: day(100), Open: 12.6, High: 13.5, Low: 12.5, Close: 13.4, Volume: 5000}
	return newSeries(t, code, bars)
}

func matchAt(t *testing.T, strat Strategy, s *market.Series, date time.Time) bool {
	t.Helper()
	idx, ok := s.IndexAtOrBefore(date)
	require.True(t, ok, "no bar at or before %s", date)
	require.GreaterOrEqual(t, idx+1, strat.MinBars(), "fixture shorter than strategy history requirement")
	return strat.Match(s, idx, ComputeIndicators(s))
}

func TestBBIKDJSelectsUptrendPullback(t *testing.T) {
	strat, err := NewBBIKDJ(nil)
	require.NoError(t, err)

	s := uptrendPullbackSeries(t, "600001")
	assert.True(t, matchAt(t, strat, s, day(180)))
}

func TestBBIKDJThresholdIsMonotoneFilter(t *testing.T) {
	s := uptrendPullbackSeries(t, "600001")

	loose, err := NewBBIKDJ(map[string]any{"j_threshold": 1.0})
	require.NoError(t, err)
	tight, err := NewBBIKDJ(map[string]any{"j_threshold": 10.0})
	require.NoError(t, err)

	assert.True(t, matchAt(t, loose, s, day(180)))
	assert.False(t, matchAt(t, tight, s, day(180)))
}

func TestShortLongSelectsFreshGoldenCross(t *testing.T) {
	strat, err := NewShortLong(nil)
	require.NoError(t, err)

	crossed := goldenCrossSeries(t, "600002")
	rising := risingSeries(t, "600003", 81)

	assert.True(t, matchAt(t, strat, crossed, day(80)))
	assert.False(t, matchAt(t, strat, rising, day(80)))
}

func TestBreakoutRequiresVolumeExpansion(t *testing.T) {
	strat, err := NewBreakout(nil)
	require.NoError(t, err)

	onVolume := breakoutSeries(t, "600004", 1000, 1000)
	dryingUp := breakoutSeries(t, "600005", 3000, 1000)

	assert.True(t, matchAt(t, strat, onVolume, day(69)))
	assert.False(t, matchAt(t, strat, dryingUp, day(69)))
}

func TestPeakSelectsGapUp(t *testing.T) {
	strat, err := NewPeak(nil)
	require.NoError(t, err)

	gapped := gapSeries(t, "600006")
	assert.True(t, matchAt(t, strat, gapped, day(100)))

	flat := flatSeries(t, "600007", 101, 10)
	assert.False(t, matchAt(t, strat, flat, day(100)))
}

// A perfectly flat series must fail every strategy: the rolling high/low
// range is zero, so J stays pinned at the neutral seed and every strict
// comparison is false.
func TestFlatSeriesMatchesNothing(t *testing.T) {
	flat := flatSeries(t, "600008", 120, 5)

	for _, name := range Names() {
		strat, err := New(name, nil)
		require.NoError(t, err)

		idx, ok := flat.IndexAtOrBefore(day(119))
		require.True(t, ok)
		if idx+1 < strat.MinBars() {
			continue
		}
		assert.False(t, strat.Match(flat, idx, ComputeIndicators(flat)), "strategy %s matched a flat series", name)
	}
}

func TestParamsDecoding(t *testing.T) {
	strat, err := NewBBIKDJ(map[string]any{
		"max_window": 30,
		"j_q_threshold": 0.25,
		"future_knob": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, strat.MinBars())

	_, err = NewBBIKDJ(map[string]any{"max_window": "sixty"})
	assert.Error(t, err)

	_, err = NewBBIKDJ(map[string]any{"max_window": -1})
	assert.Error(t, err)

	_, err = NewBreakout(map[string]any{"offset": 0})
	assert.Error(t, err)
}

func TestMinBarsCoversLookbacks(t *testing.T) {
	shortLong, err := NewShortLong(map[string]any{"n_long": 80, "m": 5, "max_window": 60})
	require.NoError(t, err)
	assert.Equal(t, 86, shortLong.MinBars())

	breakout, err := NewBreakout(map[string]any{"offset": 90, "max_window": 60})
	require.NoError(t, err)
	assert.Equal(t, 91, breakout.MinBars())

	peak, err := NewPeak(nil)
	require.NoError(t, err)
	assert.Equal(t, 100, peak.MinBars())
}
