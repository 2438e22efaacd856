package market

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tradebyz/screener/pkg/logger"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, logger.NewNop())

	s := &Series{Code: "000001", Bars: []Bar{
		{Date: day("2024-01-02"), Open: 10, High: 10.5, Low: 9.9, Close: 10.2, Volume: 12000},
		{Date: day("2024-01-03"), Open: 10.2, High: 10.8, Low: 10.1, Close: 10.7, Volume: 15000},
	}}
	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := st.Load("000001")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d bars, want 2", got.Len())
	}
	if got.Bars[1].Close != 10.7 || got.Bars[1].Volume != 15000 {
		t.Errorf("bar mismatch: %+v", got.Bars[1])
	}
	if !got.Bars[0].Date.Equal(day("2024-01-02")) {
		t.Errorf("date mismatch: %v", got.Bars[0].Date)
	}
}

func TestStoreMergeIncremental(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, logger.NewNop())

	initial := &Series{Code: "600519", Bars: []Bar{
		{Date: day("2024-01-02"), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: day("2024-01-03"), Open: 10.5, High: 11, Low: 10, Close: 10.8, Volume: 90},
	}}
	if err := st.Save(initial); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Overlap on 01-03 (revised close), new bar on 01-04.
	changed, err := st.Merge("600519", []Bar{
		{Date: day("2024-01-03"), Open: 10.5, High: 11, Low: 10, Close: 10.9, Volume: 90},
		{Date: day("2024-01-04"), Open: 10.9, High: 11.2, Low: 10.7, Close: 11.1, Volume: 80},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}

	got, err := st.Load("600519")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("got %d bars, want 3", got.Len())
	}
	if got.Bars[1].Close != 10.9 {
		t.Errorf("revised close not applied: %v", got.Bars[1].Close)
	}
	if !got.Bars[2].Date.Equal(day("2024-01-04")) {
		t.Errorf("merge not sorted: %v", got.Bars[2].Date)
	}

	// Re-merging identical bars changes nothing.
	changed, err = st.Merge("600519", []Bar{got.Bars[2]})
	if err != nil {
		t.Fatalf("second Merge failed: %v", err)
	}
	if changed != 0 {
		t.Errorf("idempotent merge reported %d changes", changed)
	}
}

func TestStoreMergeCreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, logger.NewNop())

	changed, err := st.Merge("000333", []Bar{
		{Date: day("2024-02-01"), Open: 50, High: 51, Low: 49, Close: 50.5, Volume: 10},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}

	codes, err := st.Codes()
	if err != nil {
		t.Fatalf("Codes failed: %v", err)
	}
	if len(codes) != 1 || codes[0] != "000333" {
		t.Errorf("codes = %v", codes)
	}
}

func TestLoadMalformedAborts(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, logger.NewNop())

	path := filepath.Join(dir, "999999.csv")
	content := "date,open,high,low,close,volume\n2024-01-02,10,11,9,10.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := st.Load("999999")
	if err == nil {
		t.Fatal("expected error for row with missing volume")
	}
	if !errors.Is(err, ErrMalformedSeries) {
		t.Errorf("error not wrapping ErrMalformedSeries: %v", err)
	}
}

func TestLoadUniverseSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir, logger.NewNop())

	if err := st.Save(&Series{Code: "000001", Bars: []Bar{
		{Date: day("2024-01-02"), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1},
	}}); err != nil {
		t.Fatal(err)
	}

	u, err := st.LoadUniverse([]string{"000001", "123456"})
	if err != nil {
		t.Fatalf("LoadUniverse failed: %v", err)
	}
	if len(u) != 1 {
		t.Errorf("universe size = %d, want 1", len(u))
	}
	if _, ok := u["000001"]; !ok {
		t.Error("expected 000001 in universe")
	}
}
