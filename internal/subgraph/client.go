package subgraph

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dodaa08/uniswap-leaderboard/internal/config"
)

// Client queries a Uniswap v3 subgraph through The Graph's gateway.
type Client struct {
	endpoint   string
	poolID     string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a subgraph client for the configured pool.
func NewClient(cfg config.SubgraphConfig, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: fmt.Sprintf("%s/%s/subgraphs/id/%s", cfg.GatewayURL, cfg.APIKey, cfg.SubgraphID),
		poolID:   cfg.PoolID,
		pageSize: cfg.PageSize,
		maxPages: config.DefaultMaxPages,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:       slog.Default(),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithMaxPages sets the page-count ceiling for a single fetch.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithRetryBackoff sets the base backoff between retries.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryBackoff = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
