package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Profile is the company background shown alongside picks.
type Profile struct {
	Code     string
	Name     string
	Industry string
	Concepts []string
}

// FetchProfile scrapes the provider's company profile page for one stock.
// Used only to enrich pick reports, so a missing field is tolerated and
// comes back empty.
func (c *Client) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	params := url.Values{}
	params.Set("code", code)

	body, err := c.fetch(ctx, c.profileURL, "/company/profile", params)
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", code, err)
	}

	profile, err := parseProfileHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse profile for %s: %w", code, err)
	}
	profile.Code = code
	return profile, nil
}

// parseProfileHTML pulls name, industry and concept tags out of the
// profile page's summary table.
func parseProfileHTML(body []byte) (*Profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	profile.Name = strings.TrimSpace(doc.Find(".company-name").First().Text())

	doc.Find("table.profile-table tr").Each(func(i int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		switch label {
		case "所属行业", "行业":
			profile.Industry = value
		case "概念板块", "概念":
			for _, tag := range strings.Fields(value) {
				profile.Concepts = append(profile.Concepts, tag)
			}
		}
	})

	return profile, nil
}
