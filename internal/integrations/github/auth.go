// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-14

package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

// WithRateLimit throttles API calls to perSecond requests. Zero or less disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithBaseURL points the REST and GraphQL clients at another API root (GitHub Enterprise, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return
		}
		c.client.BaseURL = u
		c.graphql.endpoint = baseURL + "graphql"
	}
}

// NewClient creates a new GitHub client using the provided token.
// If token is empty, it returns an unauthenticated client.
func NewClient(ctx context.Context, token string, opts ...Option) *Client {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	c := &Client{
		client:  github.NewClient(tc),
		graphql: NewGraphQLClient(tc, token),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
