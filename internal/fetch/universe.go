// Package fetch builds the instrument universe from the provider's market
// snapshot and keeps the local bar store in sync with it.
package fetch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tradebyz/screener/internal/external/quotes"
)

// UniverseFilter narrows the market snapshot to the instruments worth
// screening.
type UniverseFilter struct {
	MinMarketCap float64
	MaxMarketCap float64 // 0 means unbounded

	// ExcludeBoards drops ChiNext, STAR and NEEQ listings (codes starting
	// 300/301/688/8/4).
	ExcludeBoards bool

	// AppendixFile optionally names a JSON file ({"data": ["600001", ...]})
	// whose codes are always included, ahead of the snapshot's.
	AppendixFile string
}

var excludedPrefixes = []string{"300", "301", "688", "8", "4"}

// Apply filters the snapshot and returns the ordered, de-duplicated code
// list: appendix codes first, then qualifying snapshot codes.
func (f UniverseFilter) Apply(stocks []quotes.Stock) ([]string, error) {
	appendix, err := readAppendix(f.AppendixFile)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(appendix)+len(stocks))
	codes = append(codes, appendix...)

	for _, s := range stocks {
		if s.MarketCap < f.MinMarketCap {
			continue
		}
		if f.MaxMarketCap > 0 && s.MarketCap > f.MaxMarketCap {
			continue
		}
		code := zfill(s.Code, 6)
		if f.ExcludeBoards && hasExcludedPrefix(code) {
			continue
		}
		codes = append(codes, code)
	}

	return dedupe(codes), nil
}

// readAppendix loads the always-include list. A missing file is not an
// error, the appendix is simply empty.
func readAppendix(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read appendix %s: %w", path, err)
	}

	var doc struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse appendix %s: %w", path, err)
	}
	return doc.Data, nil
}

func hasExcludedPrefix(code string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func zfill(code string, width int) string {
	if len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// dedupe drops repeated codes, keeping first occurrence order.
func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
