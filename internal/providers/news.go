package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// NewsProvider fetches top headlines from NewsAPI by country
type NewsProvider struct {
	client  *Client
	apiKey  string
	country string
	baseURL string
}

// NewNewsProvider creates a news provider. An empty apiKey disables it.
func NewNewsProvider(client *Client, apiKey, country string) *NewsProvider {
	if country == "" {
		country = "in"
	}
	return &NewsProvider{
		client:  client,
		apiKey:  apiKey,
		country: country,
		baseURL: "https://newsapi.org/v2",
	}
}

// Enabled reports whether a credential is configured
func (p *NewsProvider) Enabled() bool {
	return p.apiKey != ""
}

// TopHeadlines returns up to five article titles. ErrConfigMissing without a
// key; no network call is made in that case.
func (p *NewsProvider) TopHeadlines(ctx context.Context) ([]string, error) {
	if p.apiKey == "" {
		return nil, ErrConfigMissing
	}

	lookupURL := fmt.Sprintf("%s/top-headlines?country=%s&apiKey=%s",
		p.baseURL, url.QueryEscape(p.country), url.QueryEscape(p.apiKey))

	var payload struct {
		Status   string `json:"status"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}

	err := p.client.getJSON(ctx, "news:"+p.country, lookupURL, func(body []byte) error {
		return json.Unmarshal(body, &payload)
	})
	if err != nil {
		return nil, err
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("%w: news API status %q", ErrLookup, payload.Status)
	}

	headlines := make([]string, 0, 5)
	for _, article := range payload.Articles {
		if article.Title == "" {
			continue
		}
		headlines = append(headlines, article.Title)
		if len(headlines) == 5 {
			break
		}
	}
	return headlines, nil
}
