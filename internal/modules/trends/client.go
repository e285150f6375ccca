package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// howsItTrendingQuery matches the deployed news-trends GraphQL schema
const howsItTrendingQuery = `
    query howsItTrending(
        $keyword: String!,
        $startDate: String,
        $endDate: String,
        $comparisonStartDate: String,
        $comparisonEndDate: String
    ) {
        howsItTrending(
        keyword: $keyword,
        startDate: $startDate,
        endDate: $endDate,
        comparisonStartDate: $comparisonStartDate,
        comparisonEndDate: $comparisonEndDate
        ) {
        keyword
        trending_index
        articles_for_target_period
        average_article_count_per_period
        target_period_start_date
        }
    }
`

// TrendPoint is one day's trendiness measurement for a keyword
type TrendPoint struct {
	Keyword                      string  `json:"keyword"`
	TrendingIndex                float64 `json:"trending_index"`
	ArticlesForTargetPeriod      int     `json:"articles_for_target_period"`
	AverageArticleCountPerPeriod float64 `json:"average_article_count_per_period"`
	TargetPeriodStartDate        string  `json:"target_period_start_date"`
}

// Client is an HTTP client for the news-trends GraphQL endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new trends client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log.With().Str("client", "trends").Logger(),
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// HowsItTrending fetches the trend index for keyword over [startDate, endDate].
// Dates must already be in the service's wire format (see FormatQueryDate).
func (c *Client) HowsItTrending(ctx context.Context, keyword, startDate, endDate string) (TrendPoint, error) {
	var out struct {
		Data struct {
			HowsItTrending TrendPoint `json:"howsItTrending"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.query(ctx, howsItTrendingQuery, map[string]interface{}{
		"keyword":   keyword,
		"startDate": startDate,
		"endDate":   endDate,
	}, &out)
	if err != nil {
		return TrendPoint{}, err
	}
	if len(out.Errors) > 0 {
		return TrendPoint{}, fmt.Errorf("graphql error: %s", out.Errors[0].Message)
	}

	return out.Data.HowsItTrending, nil
}

// query posts one GraphQL operation and decodes the response into out
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

// FormatQueryDate renders t in the trends service's date format: YYYY-M-D
// with a ZERO-BASED month (January = 0). The deployed service has only ever
// been queried in this format; do not normalize it here.
func FormatQueryDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month())-1, t.Day())
}

// parsePeriodDate reads target_period_start_date values back, assuming the
// service echoes the zero-based form it was queried with. Used only to
// order points, so a uniformly shifted month is harmless.
func parsePeriodDate(s string) (time.Time, bool) {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err == nil {
		return time.Date(y, time.Month(m+1), d, 0, 0, 0, 0, time.UTC), true
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}

	return time.Time{}, false
}
