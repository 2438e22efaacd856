package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrMalformedSeries marks structurally invalid OHLCV input. Unlike a
// missing instrument or short history, this aborts the run.
var ErrMalformedSeries = errors.New("malformed price series")

// Bar is one day's open/high/low/close/volume record for an instrument.
// Date carries no time-of-day component.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is the ordered daily history of one instrument. Dates are
// strictly increasing and unique. A Series is read-only once loaded.
type Series struct {
	Code string
	Bars []Bar
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.Bars)
}

// Closes returns the close column aligned 1:1 with Bars.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column aligned 1:1 with Bars.
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column aligned 1:1 with Bars.
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column aligned 1:1 with Bars.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// IndexAtOrBefore returns the index of the latest bar dated at or before
// date. ok is false when no such bar exists.
func (s *Series) IndexAtOrBefore(date time.Time) (int, bool) {
	// First bar strictly after date
	n := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Date.After(date)
	})
	if n == 0 {
		return 0, false
	}
	return n - 1, true
}

// LastDate returns the date of the final bar, or the zero time for an
// empty series.
func (s *Series) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// Validate checks the structural invariants of the series: all fields
// finite, volume non-negative, high/low bracketing open and close, and
// dates strictly increasing.
func (s *Series) Validate() error {
	var prev time.Time
	for i, b := range s.Bars {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s bar %d has non-finite field", ErrMalformedSeries, s.Code, i)
			}
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: %s bar %d has negative volume", ErrMalformedSeries, s.Code, i)
		}
		if b.High < b.Open || b.High < b.Close || b.High < b.Low {
			return fmt.Errorf("%w: %s bar %d high below open/close/low", ErrMalformedSeries, s.Code, i)
		}
		if b.Low > b.Open || b.Low > b.Close {
			return fmt.Errorf("%w: %s bar %d low above open/close", ErrMalformedSeries, s.Code, i)
		}
		if i > 0 && !b.Date.After(prev) {
			return fmt.Errorf("%w: %s bar %d date not increasing", ErrMalformedSeries, s.Code, i)
		}
		prev = b.Date
	}
	return nil
}

// Universe maps instrument codes to their series.
type Universe map[string]*Series

// Codes returns the instrument codes in sorted order. All iteration over
// a universe goes through this so results never depend on map order.
func (u Universe) Codes() []string {
	codes := make([]string, 0, len(u))
	for code := range u {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LatestDate returns the most recent bar date across the universe.
// ok is false when every series is empty.
func (u Universe) LatestDate() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, s := range u {
		if d := s.LastDate(); !d.IsZero() && d.After(latest) {
			latest = d
			found = true
		}
	}
	return latest, found
}

// Day normalizes t to midnight UTC so bar dates compare by calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
