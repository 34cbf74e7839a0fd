// Package scrape talks to the third-party bulk profile scrape provider.
// Only the interface boundary is modeled; the provider's internals are
// out of scope.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Item is one scraped post from a subject's public profile.
type Item struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Likes     int    `json:"likes"`
}

// Scraper fetches recent public items for a subject handle. A subject
// with no data yields an empty slice, not an error.
type Scraper interface {
	Scrape(ctx context.Context, subject string, maxItems int) ([]Item, error)
}

// Client is the HTTP implementation of Scraper.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a Client for the given provider endpoint.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 2 * time.Minute},
	}
}

type scrapeRequest struct {
	Subject  string `json:"subject"`
	MaxItems int    `json:"max_items"`
}

type scrapeResponse struct {
	Items []Item `json:"items"`
	// Providers signal an empty profile with a no-results marker rather
	// than an error status.
	NoResults bool `json:"no_results"`
}

func (c *Client) Scrape(ctx context.Context, subject string, maxItems int) ([]Item, error) {
	body, err := json.Marshal(scrapeRequest{Subject: subject, MaxItems: maxItems})
	if err != nil {
		return nil, fmt.Errorf("encoding scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("creating scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling scrape provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape provider returned status %d", resp.StatusCode)
	}

	var out scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding scrape response: %w", err)
	}
	if out.NoResults {
		return nil, nil
	}
	return out.Items, nil
}
