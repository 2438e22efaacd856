package market

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tradebyz/screener/pkg/logger"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"date", "open", "high", "low", "close", "volume"}

// Store reads and writes per-instrument CSV history files in a data
// directory, one `<code>.csv` per instrument.
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates a store over dir.
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Dir returns the data directory
func (st *Store) Dir() string {
	return st.dir
}

// Codes lists the instrument codes present in the data directory, sorted.
func (st *Store) Codes() ([]string, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", st.dir, err)
	}

	var codes []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		codes = append(codes, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(codes)
	return codes, nil
}

// Load reads and validates one instrument's history.
func (st *Store) Load(code string) (*Series, error) {
	path := filepath.Join(st.dir, code+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSeries, code, err)
	}
	if len(records) == 0 {
		return &Series{Code: code}, nil
	}

	// Header row is optional; files written by Save carry one.
	start := 0
	if records[0][0] == "date" {
		start = 1
	}

	bars := make([]Bar, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		bar, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedSeries, code, i+1, err)
		}
		bars = append(bars, bar)
	}

	// No re-sort: out-of-order input is a precondition violation.
	s := &Series{Code: code, Bars: bars}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadUniverse loads the requested codes. A missing file is logged and
// skipped; a malformed file aborts.
func (st *Store) LoadUniverse(codes []string) (Universe, error) {
	universe := make(Universe, len(codes))
	for _, code := range codes {
		s, err := st.Load(code)
		if err != nil {
			if os.IsNotExist(err) {
				st.log.WithField("code", code).Warn("history file missing, skipping")
				continue
			}
			return nil, err
		}
		if s.Len() == 0 {
			continue
		}
		universe[code] = s
	}
	return universe, nil
}

// Save writes the full series, replacing any existing file.
func (st *Store) Save(s *Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(st.dir, s.Code+".csv")
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for _, b := range s.Bars {
		row := []string{
			b.Date.Format(dateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Merge folds freshly fetched bars into the stored history: existing
// dates are overwritten, new dates appended, and the union re-sorted.
// Returns the number of bars that were new or changed.
func (st *Store) Merge(code string, bars []Bar) (int, error) {
	existing, err := st.Load(code)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, err
		}
		existing = &Series{Code: code}
	}

	byDate := make(map[time.Time]Bar, existing.Len()+len(bars))
	for _, b := range existing.Bars {
		byDate[Day(b.Date)] = b
	}

	changed := 0
	for _, b := range bars {
		day := Day(b.Date)
		old, ok := byDate[day]
		b.Date = day
		if !ok || old != b {
			changed++
		}
		byDate[day] = b
	}

	merged := make([]Bar, 0, len(byDate))
	for _, b := range byDate {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	if err := st.Save(&Series{Code: code, Bars: merged}); err != nil {
		return 0, err
	}
	return changed, nil
}

func parseRow(record []string) (Bar, error) {
	if len(record) < 6 {
		return Bar{}, fmt.Errorf("expected 6 fields, got %d", len(record))
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
	if err != nil {
		return Bar{}, fmt.Errorf("bad date %q", record[0])
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad %s %q", csvHeader[i+1], record[i+1])
		}
		vals[i] = v
	}

	return Bar{
		Date:   Day(date),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
