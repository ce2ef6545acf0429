package blacklist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix    = "blacklist:v1:"
	requestTimeout = 5 * time.Second
)

// Client screens identities against the Karma blacklist API. Lookup failures
// fail open: onboarding is never blocked by an upstream outage. Verdicts are
// cached in Redis to keep repeat lookups off the upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// New constructs a blacklist client. The cache may be nil to disable verdict
// caching.
func New(baseURL, apiKey string, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

type karmaResponse struct {
	Status string `json:"status"`
}

// IsBlacklisted reports whether the identity appears on the blacklist.
// A 404 from the upstream means the identity is clean; any other failure is
// logged and treated as clean.
func (c *Client) IsBlacklisted(ctx context.Context, identity string) (bool, error) {
	if verdict, ok := c.cachedVerdict(ctx, identity); ok {
		return verdict, nil
	}

	listed, err := c.lookup(ctx, identity)
	if err != nil {
		c.logger.Warn("blacklist lookup failed",
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		return false, nil
	}

	c.storeVerdict(ctx, identity, listed)
	return listed, nil
}

func (c *Client) lookup(ctx context.Context, identity string) (bool, error) {
	endpoint := fmt.Sprintf("%s/verification/karma/%s", c.baseURL, url.PathEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("karma lookup returned %d", resp.StatusCode)
	}

	var body karmaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Status == "success", nil
}

func (c *Client) cachedVerdict(ctx context.Context, identity string) (bool, bool) {
	if c.cache == nil {
		return false, false
	}
	v, err := c.cache.Get(ctx, cachePrefix+identity).Result()
	if err != nil {
		return false, false
	}
	return v == "1", true
}

func (c *Client) storeVerdict(ctx context.Context, identity string, listed bool) {
	if c.cache == nil {
		return
	}
	v := "0"
	if listed {
		v = "1"
	}
	if err := c.cache.Set(ctx, cachePrefix+identity, v, c.cacheTTL).Err(); err != nil {
		c.logger.Warn("blacklist verdict cache write failed", slog.Any("error", err))
	}
}
