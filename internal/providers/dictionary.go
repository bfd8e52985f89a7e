package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DictionaryProvider fetches definitions from the free dictionaryapi.dev
// service. No credential required.
type DictionaryProvider struct {
	client  *Client
	baseURL string
}

// NewDictionaryProvider creates a dictionary provider
func NewDictionaryProvider(client *Client) *DictionaryProvider {
	return &DictionaryProvider{
		client:  client,
		baseURL: "https://api.dictionaryapi.dev/api/v2",
	}
}

// Define returns the first definition of word, or ErrLookup when the word is
// unknown or the service is unreachable.
func (p *DictionaryProvider) Define(ctx context.Context, word string) (string, error) {
	lookupURL := fmt.Sprintf("%s/entries/en/%s", p.baseURL, url.PathEscape(word))

	var entries []struct {
		Meanings []struct {
			Definitions []struct {
				Definition string `json:"definition"`
			} `json:"definitions"`
		} `json:"meanings"`
	}

	err := p.client.getJSON(ctx, "define:"+strings.ToLower(word), lookupURL, func(body []byte) error {
		// A not-found response is a JSON object, not a list; treat the
		// decode failure as "no definition" below.
		if jsonErr := json.Unmarshal(body, &entries); jsonErr != nil {
			entries = nil
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if def.Definition != "" {
					return def.Definition, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: no definition found for %q", ErrLookup, word)
}
