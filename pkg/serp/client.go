// Package serp fetches candidate URLs for a query from the SerpAPI
// search-results provider.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"searchrank/models"
)

const defaultBaseURL = "https://serpapi.com/search"

type organicResult struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

// Client talks to the provider. A missing API key or any provider failure
// degrades to zero candidates at the call site; the orchestrator never turns
// provider trouble into a hard search failure.
type Client struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
	log     *slog.Logger
}

func NewClient(apiKey string, limit int, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		limit:   limit,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchCandidates returns the provider's organic results for the query.
func (c *Client) FetchCandidates(ctx context.Context, query string) ([]models.Candidate, error) {
	if c.apiKey == "" {
		c.log.Warn("serpapi key not configured, returning no candidates")
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.limit))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(parsed.OrganicResults))
	for _, result := range parsed.OrganicResults {
		if result.Link == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			URL:     NormalizeURL(result.Link),
			Title:   result.Title,
			Snippet: result.Snippet,
		})
	}

	c.log.Info("fetched candidates from provider", "query", query, "count", len(candidates))
	return candidates, nil
}

// NormalizeURL strips the fragment and any trailing slash so that one page
// maps to one canonical store key.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	normalized := fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, parsed.Path)
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	return strings.TrimRight(normalized, "/")
}
