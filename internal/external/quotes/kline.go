package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tradebyz/screener/internal/market"
)

// klineResponse is the provider's chart payload. Each kline row is a
// comma-joined record: date,open,close,high,low,volume[,...].
type klineResponse struct {
	Data struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchKline fetches forward-adjusted daily bars for a stock within the
// closed date range [from, to], oldest first.
func (c *Client) FetchKline(ctx context.Context, code string, from, to time.Time) ([]market.Bar, error) {
	params := url.Values{}
	params.Set("secid", secID(code))
	params.Set("klt", "101") // daily
	params.Set("fqt", "1")   // forward adjusted
	params.Set("beg", from.Format("20060102"))
	params.Set("end", to.Format("20060102"))
	params.Set("fields1", "f1,f2,f3")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56")

	body, err := c.fetch(ctx, c.baseURL, "/api/qt/stock/kline/get", params)
	if err != nil {
		return nil, fmt.Errorf("fetch kline for %s: %w", code, err)
	}

	bars, err := parseKlines(body)
	if err != nil {
		return nil, fmt.Errorf("parse kline for %s: %w", code, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  code,
		"count": len(bars),
	}).Debug("Fetched kline")
	return bars, nil
}

// parseKlines decodes the chart payload. Rows with an unparsable date are
// dropped; a row with too few columns is a provider contract break.
func parseKlines(body []byte) ([]market.Bar, error) {
	var resp klineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode kline response: %w", err)
	}

	bars := make([]market.Bar, 0, len(resp.Data.Klines))
	for _, row := range resp.Data.Klines {
		fields := strings.Split(row, ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("kline row has %d fields, want at least 6", len(fields))
		}

		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			continue
		}

		open, err1 := strconv.ParseFloat(fields[1], 64)
		closePrice, err2 := strconv.ParseFloat(fields[2], 64)
		high, err3 := strconv.ParseFloat(fields[3], 64)
		low, err4 := strconv.ParseFloat(fields[4], 64)
		volume, err5 := strconv.ParseFloat(fields[5], 64)
		for _, err := range []error{err1, err2, err3, err4, err5} {
			if err != nil {
				return nil, fmt.Errorf("kline row %q: %w", row, err)
			}
		}

		bars = append(bars, market.Bar{
			Date:   date.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return bars, nil
}

// secID maps a bare stock code to the provider's exchange-qualified id.
// Shanghai listings (6xx) are market 1, everything else market 0.
func secID(code string) string {
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}
