package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Stock is one row of the market snapshot.
type Stock struct {
	Code      string
	Name      string
	MarketCap float64 // total market cap, yuan
}

type snapshotResponse struct {
	Data struct {
		Total int `json:"total"`
		Diff  []struct {
			Code      string          `json:"f12"`
			Name      string          `json:"f14"`
			MarketCap json.RawMessage `json:"f20"`
		} `json:"diff"`
	} `json:"data"`
}

const snapshotPageSize = 1000

// FetchSnapshot pages through the provider's realtime snapshot of every
// listed A-share and returns code, name and total market cap. Rows whose
// market cap is suspended ("-") come back with MarketCap 0.
func (c *Client) FetchSnapshot(ctx context.Context) ([]Stock, error) {
	var stocks []Stock

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("pn", strconv.Itoa(page))
		params.Set("pz", strconv.Itoa(snapshotPageSize))
		params.Set("fs", "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23")
		params.Set("fields", "f12,f14,f20")

		body, err := c.fetch(ctx, c.baseURL, "/api/qt/clist/get", params)
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot page %d: %w", page, err)
		}

		batch, total, err := parseSnapshot(body)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot page %d: %w", page, err)
		}
		stocks = append(stocks, batch...)

		if len(batch) < snapshotPageSize || len(stocks) >= total {
			break
		}
	}

	c.logger.WithField("count", len(stocks)).Info("Fetched market snapshot")
	return stocks, nil
}

func parseSnapshot(body []byte) ([]Stock, int, error) {
	var resp snapshotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot response: %w", err)
	}

	stocks := make([]Stock, 0, len(resp.Data.Diff))
	for _, row := range resp.Data.Diff {
		if row.Code == "" {
			continue
		}
		stocks = append(stocks, Stock{
			Code:      row.Code,
			Name:      row.Name,
			MarketCap: toFloat(row.MarketCap),
		})
	}
	return stocks, resp.Data.Total, nil
}

// toFloat tolerates the provider's habit of sending "-" for suspended
// instruments where a number is expected.
func toFloat(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}
