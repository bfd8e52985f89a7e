package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// WikipediaProvider fetches short topic summaries from the Wikipedia REST API
type WikipediaProvider struct {
	client  *Client
	baseURL string
}

// NewWikipediaProvider creates an encyclopedia summary provider
func NewWikipediaProvider(client *Client) *WikipediaProvider {
	return &WikipediaProvider{
		client:  client,
		baseURL: "https://en.wikipedia.org/api/rest_v1",
	}
}

// Summary returns the short-form extract for topic, or ErrLookup when the
// topic has no page or the service is unreachable.
func (p *WikipediaProvider) Summary(ctx context.Context, topic string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	lookupURL := fmt.Sprintf("%s/page/summary/%s", p.baseURL, url.PathEscape(title))

	var payload struct {
		Extract string `json:"extract"`
	}

	err := p.client.getJSON(ctx, "wiki:"+strings.ToLower(title), lookupURL, func(body []byte) error {
		return json.Unmarshal(body, &payload)
	})
	if err != nil {
		return "", err
	}

	if payload.Extract == "" {
		return "", fmt.Errorf("%w: no encyclopedia entry for %q", ErrLookup, topic)
	}
	return payload.Extract, nil
}
