package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient(url, zerolog.Nop())
	c.backoffBase = time.Millisecond
	return c
}

func TestRecentArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "mostRecentArticles")
		assert.Equal(t, true, body.Variables["with_live_blog"])
		assert.Equal(t, float64(5), body.Variables["num_of_articles"])

		w.Write([]byte(`{"data": {"mostRecentArticles": [
			{"title": "Markets rally", "type": "article", "URL": "https://example.com/a",
			 "date": "2023-04-03", "section": "business", "source": "guardian"},
			{"title": "Oil dips", "type": "liveblog", "URL": "https://example.com/b",
			 "date": "2023-04-03", "section": "markets", "source": "guardian"}
		]}}`))
	}))
	defer srv.Close()

	articles, err := newTestClient(srv.URL).RecentArticles(context.Background(), true, 5, "")
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "Markets rally", articles[0].Title)
	assert.Equal(t, "https://example.com/b", articles[1].URL)
}

func TestSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"dailySummary": {
			"total_articles": 40,
			"articles_details": [
				{"topic": "economy", "count": 25},
				{"topic": "energy", "count": 15}
			]
		}}}`))
	}))
	defer srv.Close()

	summary, err := newTestClient(srv.URL).Summary(context.Background(), "")
	require.NoError(t, err)

	require.NotNil(t, summary)
	assert.Equal(t, 40, summary.TotalArticles)
	require.Len(t, summary.ArticlesDetails, 2)
	assert.Equal(t, "economy", summary.ArticlesDetails[0].Topic)
	assert.Equal(t, 15, summary.ArticlesDetails[1].Count)
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data": {"mostRecentArticles": []}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).RecentArticles(context.Background(), false, 5, "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryIsBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).RecentArticles(context.Background(), false, 5, "")
	assert.Error(t, err)

	// Bounded at three attempts, never a request storm
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(srv.URL, zerolog.Nop())
	client.backoffBase = time.Second
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.RecentArticles(ctx, false, 5, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGraphQLErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "summary not available"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Summary(context.Background(), "2023-04-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary not available")
}
