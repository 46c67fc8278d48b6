// Package vacdm talks to vACDM: the VDGS endpoint directory, per-airport flight lists and
// the pilot slot servers.
package vacdm

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"

	"github.com/plvacc/vdgs/internal/config"
	"github.com/plvacc/vdgs/internal/httpjson"
)

type Client struct {
	httpClient   httpjson.Doer
	logger       *slog.Logger
	directoryURL string
	servers      []Server
}

type ClientOption func(c *Client)

func WithHttpClient(httpClient httpjson.Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithDirectoryURL(directoryURL string) ClientOption {
	return func(c *Client) {
		c.directoryURL = directoryURL
	}
}

// WithServers replaces the slot servers. They are queried in the given order.
func WithServers(servers []Server) ClientOption {
	return func(c *Client) {
		c.servers = servers
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if len(c.servers) == 0 {
		c.servers = DefaultServers
	}
	c.directoryURL = cmp.Or(c.directoryURL, config.DefaultDiscoveryURL)

	return c
}

// Directory fetches the VDGS endpoint directory.
func (c *Client) Directory(ctx context.Context) (Directory, error) {
	body, err := httpjson.Get(ctx, c.httpClient, c.directoryURL)
	if err != nil {
		return Directory{}, err
	}

	dir, err := parseDirectory(body)
	if err != nil {
		return Directory{}, &httpjson.DecodeError{URL: c.directoryURL, Err: err}
	}

	c.logger.Debug("directory fetched", "url", c.directoryURL, "airports", len(dir.Airports))
	return dir, nil
}

// Flights returns the number of active flights reported by a VDGS endpoint.
func (c *Client) Flights(ctx context.Context, endpoint string) (int, error) {
	body, err := httpjson.Get(ctx, c.httpClient, endpoint)
	if err != nil {
		return 0, err
	}

	n, err := countFlights(body)
	if err != nil {
		return 0, &httpjson.DecodeError{URL: endpoint, Err: err}
	}

	return n, nil
}
