package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ErrConfigMissing means a provider's required credential is absent. The
// feature is disabled; no network call is made.
var ErrConfigMissing = errors.New("provider not configured")

// ErrLookup means an external collaborator call errored or timed out
var ErrLookup = errors.New("lookup failed")

// Client is the shared HTTP plumbing for all providers: a bounded-latency
// HTTP client, a response cache, and a rate limiter so a chatty user cannot
// hammer the upstream APIs.
type Client struct {
	httpClient *http.Client
	cache      *gocache.Cache
	limiter    *rate.Limiter
}

// NewClient builds the shared provider client. timeout bounds every lookup's
// worst-case latency.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// getJSON fetches url honoring cache and rate limit, unmarshalling into out
// via decode. Cached entries bypass the network entirely.
func (c *Client) getJSON(ctx context.Context, cacheKey, url string, decode func(body []byte) error) error {
	if cacheKey != "" {
		if cached, found := c.cache.Get(cacheKey); found {
			return decode(cached.([]byte))
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Delta/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		// Let providers decode not-found payloads (dictionary, wikipedia)
		return decode(body)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrLookup, resp.StatusCode)
	}

	if err := decode(body); err != nil {
		return err
	}
	if cacheKey != "" {
		c.cache.Set(cacheKey, body, gocache.DefaultExpiration)
	}
	return nil
}
