package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const mostRecentArticlesQuery = `
query mostRecentArticles(
    $with_live_blog: Boolean,
    $num_of_articles: Int,
    $source: String
) {
    mostRecentArticles(
    with_live_blog: $with_live_blog,
    num_of_articles: $num_of_articles,
    source: $source
    ) {
    title
    type
    URL
    date
    section
    source
    }
}
`

const dailySummaryQuery = `
fragment KeyValuePairFragment on KeyValuePair {
    topic
    count
}

query dailySummary($date: String) {
  dailySummary(date: $date) {
    total_articles
    articles_details {
      ...KeyValuePairFragment
    }
  }
}
`

// Article is one entry in the most-recent-articles feed
type Article struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	URL     string `json:"URL"`
	Date    string `json:"date"`
	Section string `json:"section"`
	Source  string `json:"source"`
}

// TopicCount is one topic's article count in a daily summary
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// DailySummary aggregates article counts per topic for one day
type DailySummary struct {
	TotalArticles   int          `json:"total_articles"`
	ArticlesDetails []TopicCount `json:"articles_details"`
}

// Client is an HTTP client for the news side of the trends GraphQL
// endpoint. Failed calls are retried a bounded number of times with
// exponential backoff, then given up on; callers log and render without
// the panel rather than surfacing an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	maxAttempts int
	backoffBase time.Duration
}

// NewClient creates a new news client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log:         log.With().Str("client", "news").Logger(),
		maxAttempts: 3,
		backoffBase: 250 * time.Millisecond,
	}
}

// RecentArticles fetches the latest articles feed. An empty source means
// all sources.
func (c *Client) RecentArticles(ctx context.Context, withLiveBlog bool, numArticles int, source string) ([]Article, error) {
	var out struct {
		Data struct {
			MostRecentArticles []Article `json:"mostRecentArticles"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.queryWithRetry(ctx, mostRecentArticlesQuery, map[string]interface{}{
		"with_live_blog":  withLiveBlog,
		"num_of_articles": numArticles,
		"source":          source,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", out.Errors[0].Message)
	}

	return out.Data.MostRecentArticles, nil
}

// Summary fetches the per-topic article counts for date. An empty date
// defaults to yesterday on the service side.
func (c *Client) Summary(ctx context.Context, date string) (*DailySummary, error) {
	var out struct {
		Data struct {
			DailySummary *DailySummary `json:"dailySummary"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.queryWithRetry(ctx, dailySummaryQuery, map[string]interface{}{
		"date": date,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", out.Errors[0].Message)
	}

	return out.Data.DailySummary, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// queryWithRetry retries transport and server failures up to maxAttempts
// with doubling backoff. Context cancellation cuts the loop short.
func (c *Client) queryWithRetry(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.query(ctx, query, variables, out)
		if lastErr == nil {
			return nil
		}

		c.log.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Msg("News query failed")

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.backoffBase << (attempt - 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return lastErr
}

func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	reqBody, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	url := fmt.Sprintf("%s/graphql", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("graphql request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	return nil
}
